package implementation

import (
	"context"
	"errors"
	"fmt"

	"ai-appbuilder-be/internal/entity"
	"ai-appbuilder-be/internal/mapper"
	"ai-appbuilder-be/internal/model"
	"ai-appbuilder-be/internal/repository/contract"
	"ai-appbuilder-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GenerationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GenerationMapper
}

func NewGenerationRepository(db *gorm.DB) contract.GenerationRepository {
	return &GenerationRepositoryImpl{
		db:     db,
		mapper: mapper.NewGenerationMapper(),
	}
}

func (r *GenerationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *GenerationRepositoryImpl) Create(ctx context.Context, record *entity.GenerationRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create generation record: %w", err)
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *GenerationRepositoryImpl) Update(ctx context.Context, record *entity.GenerationRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("update generation record %s: %w", record.Id, err)
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *GenerationRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.GenerationRecord, error) {
	var m model.GenerationRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *GenerationRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.GenerationRecord, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *GenerationRepositoryImpl) FindAllByIdentity(ctx context.Context, identity string, limit, offset int) ([]*entity.GenerationRecord, error) {
	var models []*model.GenerationRecord
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByIdentity{Identity: identity},
		specification.NewestFirst{},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *GenerationRepositoryImpl) UpdateStatusByChatID(ctx context.Context, chatID, status, demoURL string) error {
	updates := map[string]interface{}{"latest_status": status}
	if demoURL != "" {
		updates["demo_url"] = demoURL
	}
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.GenerationRecord{}), specification.ByChatID{ChatID: chatID})
	return query.Updates(updates).Error
}
