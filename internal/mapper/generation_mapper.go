package mapper

import (
	"encoding/json"
	"time"

	"ai-appbuilder-be/internal/entity"
	"ai-appbuilder-be/internal/model"

	"gorm.io/datatypes"
)

type GenerationMapper struct{}

func NewGenerationMapper() *GenerationMapper {
	return &GenerationMapper{}
}

func (m *GenerationMapper) ToEntity(g *model.GenerationRecord) *entity.GenerationRecord {
	if g == nil {
		return nil
	}

	attachments := []entity.GenerationAttachment{}
	if len(g.Attachments) > 0 {
		// Malformed JSON leaves the list empty rather than failing the read.
		_ = json.Unmarshal(g.Attachments, &attachments)
	}

	var updatedAt *time.Time
	if !g.UpdatedAt.IsZero() {
		t := g.UpdatedAt
		updatedAt = &t
	}

	return &entity.GenerationRecord{
		Id:               g.Id,
		Identity:         g.Identity,
		Prompt:           g.Prompt,
		ModelId:          g.ModelId,
		ImageGenerations: g.ImageGenerations,
		Thinking:         g.Thinking,
		Attachments:      attachments,
		IsFreshChat:      g.IsFreshChat,
		ChatId:           g.ChatId,
		ProjectId:        g.ProjectId,
		State:            entity.GenerationState(g.State),
		LatestStatus:     g.LatestStatus,
		DemoUrl:          g.DemoUrl,
		ErrorKind:        g.ErrorKind,
		ErrorMessage:     g.ErrorMessage,
		CreatedAt:        g.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *GenerationMapper) ToModel(g *entity.GenerationRecord) *model.GenerationRecord {
	if g == nil {
		return nil
	}

	var attachments datatypes.JSON
	if len(g.Attachments) > 0 {
		if raw, err := json.Marshal(g.Attachments); err == nil {
			attachments = datatypes.JSON(raw)
		}
	}

	var updatedAt time.Time
	if g.UpdatedAt != nil {
		updatedAt = *g.UpdatedAt
	}

	return &model.GenerationRecord{
		Id:               g.Id,
		Identity:         g.Identity,
		Prompt:           g.Prompt,
		ModelId:          g.ModelId,
		ImageGenerations: g.ImageGenerations,
		Thinking:         g.Thinking,
		Attachments:      attachments,
		IsFreshChat:      g.IsFreshChat,
		ChatId:           g.ChatId,
		ProjectId:        g.ProjectId,
		State:            string(g.State),
		LatestStatus:     g.LatestStatus,
		DemoUrl:          g.DemoUrl,
		ErrorKind:        g.ErrorKind,
		ErrorMessage:     g.ErrorMessage,
		CreatedAt:        g.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *GenerationMapper) ToEntities(records []*model.GenerationRecord) []*entity.GenerationRecord {
	entities := make([]*entity.GenerationRecord, len(records))
	for i, r := range records {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
