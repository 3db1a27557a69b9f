package service

import (
	"context"
	"strings"
	"time"

	"ai-appbuilder-be/internal/dto"
	"ai-appbuilder-be/internal/entity"
	"ai-appbuilder-be/internal/pkg/logger"
	"ai-appbuilder-be/internal/repository/contract"
	"ai-appbuilder-be/internal/tracer"
	"ai-appbuilder-be/pkg/events"
	"ai-appbuilder-be/pkg/retry"
	v0 "ai-appbuilder-be/pkg/v0"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type IGenerationService interface {
	// GenerateApp starts a new chat from the prompt, or continues req.ChatId.
	// Fresh chats without a project end up in the default project.
	GenerateApp(ctx context.Context, identity string, req *dto.GenerateRequest) (*dto.GenerateResponse, error)
	SendMessage(ctx context.Context, identity string, req *dto.SendMessageRequest) (*dto.GenerateResponse, error)
	ListGenerations(ctx context.Context, identity string, query *dto.ListGenerationsQuery) ([]*dto.GenerationHistoryItem, error)
	// GetGeneration returns one of the caller's own generations.
	GetGeneration(ctx context.Context, identity string, id uuid.UUID) (*dto.GenerationHistoryItem, error)
}

type GenerationOptions struct {
	// NewChatName renames fresh chats right after creation. Empty keeps the remote name.
	NewChatName string
}

type generationService struct {
	api            v0.API
	retry          retry.Policy
	generationRepo contract.GenerationRepository
	projectService IProjectService
	ownership      IOwnershipService
	tracker        IStatusTrackerService
	eventPublisher EventPublisher
	opts           GenerationOptions
	logger         logger.ILogger
}

func NewGenerationService(
	api v0.API,
	policy retry.Policy,
	generationRepo contract.GenerationRepository,
	projectService IProjectService,
	ownership IOwnershipService,
	tracker IStatusTrackerService,
	eventPublisher EventPublisher,
	opts GenerationOptions,
	log logger.ILogger,
) IGenerationService {
	return &generationService{
		api:            api,
		retry:          policy,
		generationRepo: generationRepo,
		projectService: projectService,
		ownership:      ownership,
		tracker:        tracker,
		eventPublisher: eventPublisher,
		opts:           opts,
		logger:         log,
	}
}

func (s *generationService) GenerateApp(ctx context.Context, identity string, req *dto.GenerateRequest) (*dto.GenerateResponse, error) {
	ctx, span := tracer.Tracer().Start(ctx, "GenerationService.GenerateApp",
		trace.WithAttributes(attribute.Bool("generation.fresh_chat", req.ChatId == "")),
	)
	defer span.End()

	prompt := strings.TrimSpace(req.Message)
	if prompt == "" {
		err := v0.NewValidationError("Message is required")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	record := &entity.GenerationRecord{
		Id:               uuid.New(),
		Identity:         identity,
		Prompt:           prompt,
		ModelId:          string(v0.ModelForTier(req.ModelId)),
		ImageGenerations: req.ImageGenerations,
		Thinking:         req.Thinking,
		Attachments:      toEntityAttachments(req.Attachments),
		IsFreshChat:      req.ChatId == "",
		ChatId:           req.ChatId,
		ProjectId:        req.ProjectId,
		State:            entity.GenerationIdle,
		CreatedAt:        time.Now(),
	}
	if err := s.generationRepo.Create(ctx, record); err != nil {
		s.logger.Warn("GENERATION", "Failed to store generation record", map[string]interface{}{"error": err.Error()})
	}

	s.advance(ctx, record, entity.GenerationSubmitting)

	span.SetAttributes(
		attribute.String("generation.id", record.Id.String()),
		attribute.String("generation.model", record.ModelId),
	)

	chat, err := s.submit(ctx, identity, record, req)
	if err != nil {
		s.fail(ctx, record, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("v0.chat_id", chat.ID))

	record.ChatId = chat.ID
	if chat.ProjectID != "" {
		record.ProjectId = chat.ProjectID
	}

	if record.IsFreshChat {
		s.ownership.Claim(ctx, entity.ResourceChat, chat.ID, identity)
		s.renameFreshChat(ctx, chat.ID)

		if record.ProjectId == "" {
			s.advance(ctx, record, entity.GenerationAwaitingProjectAssignment)
			record.ProjectId = s.assignDefaultProject(ctx, identity, chat.ID)
		}
	}

	status := chat.Status()
	if status == "" {
		status = v0.StatusPending
	}
	record.LatestStatus = string(status)
	if chat.LatestVersion != nil {
		record.DemoUrl = chat.LatestVersion.DemoURL
	}
	s.advance(ctx, record, entity.GenerationDone)

	if !status.IsTerminal() {
		s.tracker.Track(chat.ID)
	}
	s.emit(ctx, events.GenerationSubmitted, record)

	s.logger.Info("GENERATION", "Generation submitted", map[string]interface{}{
		"generation_id": record.Id,
		"chat_id":       record.ChatId,
		"project_id":    record.ProjectId,
		"fresh":         record.IsFreshChat,
	})

	return &dto.GenerateResponse{
		Id:        record.Id,
		ChatId:    record.ChatId,
		ProjectId: record.ProjectId,
		DemoUrl:   record.DemoUrl,
		Status:    record.LatestStatus,
	}, nil
}

func (s *generationService) SendMessage(ctx context.Context, identity string, req *dto.SendMessageRequest) (*dto.GenerateResponse, error) {
	if req.ChatId == "" {
		return nil, v0.NewValidationError("Chat ID is required")
	}
	return s.GenerateApp(ctx, identity, &dto.GenerateRequest{
		Message:          req.Message,
		ChatId:           req.ChatId,
		ModelId:          req.ModelId,
		ImageGenerations: req.ImageGenerations,
		Thinking:         req.Thinking,
		Attachments:      req.Attachments,
	})
}

func (s *generationService) ListGenerations(ctx context.Context, identity string, query *dto.ListGenerationsQuery) ([]*dto.GenerationHistoryItem, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}

	records, err := s.generationRepo.FindAllByIdentity(ctx, identity, limit, query.Offset)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.GenerationHistoryItem, 0, len(records))
	for _, r := range records {
		items = append(items, toHistoryItem(r))
	}
	return items, nil
}

func (s *generationService) GetGeneration(ctx context.Context, identity string, id uuid.UUID) (*dto.GenerationHistoryItem, error) {
	record, err := s.generationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil || record.Identity != identity {
		return nil, v0.NewNotFoundError("Generation not found")
	}
	return toHistoryItem(record), nil
}

func toHistoryItem(r *entity.GenerationRecord) *dto.GenerationHistoryItem {
	return &dto.GenerationHistoryItem{
		Id:           r.Id,
		Prompt:       r.Prompt,
		ModelId:      r.ModelId,
		ChatId:       r.ChatId,
		ProjectId:    r.ProjectId,
		State:        string(r.State),
		LatestStatus: r.LatestStatus,
		DemoUrl:      r.DemoUrl,
		ErrorKind:    r.ErrorKind,
		ErrorMessage: r.ErrorMessage,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// submit creates the chat or appends the prompt to an existing one.
func (s *generationService) submit(ctx context.Context, identity string, record *entity.GenerationRecord, req *dto.GenerateRequest) (*v0.ChatDetail, error) {
	modelConfig := &v0.ModelConfiguration{
		ModelID:          v0.ModelID(record.ModelId),
		ImageGenerations: &record.ImageGenerations,
		Thinking:         &record.Thinking,
	}
	attachments := toRemoteAttachments(req.Attachments)

	if !record.IsFreshChat {
		if err := s.ownership.Authorize(ctx, entity.ResourceChat, req.ChatId, identity); err != nil {
			return nil, err
		}
		return retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.ChatDetail, error) {
			return s.api.SendMessage(ctx, v0.SendMessageRequest{
				ChatID:             req.ChatId,
				Message:            record.Prompt,
				Attachments:        attachments,
				ModelConfiguration: modelConfig,
			})
		})
	}

	if req.ProjectId != "" {
		if err := s.ownership.Authorize(ctx, entity.ResourceProject, req.ProjectId, identity); err != nil {
			return nil, err
		}
	}
	return retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.ChatDetail, error) {
		return s.api.CreateChat(ctx, v0.CreateChatRequest{
			Message:            record.Prompt,
			Attachments:        attachments,
			ProjectID:          req.ProjectId,
			ModelConfiguration: modelConfig,
		})
	})
}

// assignDefaultProject never fails the generation: the chat already exists.
func (s *generationService) assignDefaultProject(ctx context.Context, identity, chatId string) string {
	project, err := s.projectService.GetOrCreateDefaultProject(ctx, identity)
	if err != nil {
		s.logger.Warn("GENERATION", "Could not resolve default project", map[string]interface{}{
			"chat_id": chatId, "error": err.Error(),
		})
		return ""
	}

	_, err = retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.AssignResult, error) {
		return s.api.AssignChatToProject(ctx, project.ID, chatId)
	})
	if err != nil {
		if v0.IsKind(err, v0.KindNotFound) {
			s.projectService.ForgetDefaultProject(identity)
		}
		s.logger.Warn("GENERATION", "Could not assign chat to default project", map[string]interface{}{
			"chat_id": chatId, "project_id": project.ID, "error": err.Error(),
		})
		return ""
	}
	return project.ID
}

func (s *generationService) renameFreshChat(ctx context.Context, chatId string) {
	if s.opts.NewChatName == "" {
		return
	}
	_, err := s.api.UpdateChat(ctx, v0.UpdateChatRequest{ChatID: chatId, Name: s.opts.NewChatName})
	if err != nil {
		s.logger.Warn("GENERATION", "Failed to rename new chat", map[string]interface{}{"chat_id": chatId, "error": err.Error()})
	}
}

func (s *generationService) advance(ctx context.Context, record *entity.GenerationRecord, to entity.GenerationState) {
	if err := record.Transition(to); err != nil {
		s.logger.Error("GENERATION", err.Error(), map[string]interface{}{"generation_id": record.Id})
		return
	}
	s.save(ctx, record)
}

func (s *generationService) fail(ctx context.Context, record *entity.GenerationRecord, err error) {
	record.ErrorKind = string(v0.KindOf(err))
	record.ErrorMessage = err.Error()
	s.advance(ctx, record, entity.GenerationFailed)
	s.emit(ctx, events.GenerationFailed, record)

	s.logger.Error("GENERATION", "Generation failed", map[string]interface{}{
		"generation_id": record.Id,
		"chat_id":       record.ChatId,
		"kind":          record.ErrorKind,
		"error":         record.ErrorMessage,
	})
}

func (s *generationService) save(ctx context.Context, record *entity.GenerationRecord) {
	if err := s.generationRepo.Update(ctx, record); err != nil {
		s.logger.Warn("GENERATION", "Failed to update generation record", map[string]interface{}{
			"generation_id": record.Id, "error": err.Error(),
		})
	}
}

func (s *generationService) emit(ctx context.Context, eventType string, record *entity.GenerationRecord) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.NewGenerationEvent(eventType, record.Id.String(), record.ChatId, record.Identity, time.Now())
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("GENERATION", "Failed to publish event", map[string]interface{}{"type": eventType, "error": err.Error()})
	}
}

func toEntityAttachments(in []dto.AttachmentRequest) []entity.GenerationAttachment {
	out := make([]entity.GenerationAttachment, 0, len(in))
	for _, a := range in {
		out = append(out, entity.GenerationAttachment{URL: a.URL, Name: a.Name, MimeType: a.ContentType})
	}
	return out
}

func toRemoteAttachments(in []dto.AttachmentRequest) []v0.Attachment {
	if len(in) == 0 {
		return nil
	}
	out := make([]v0.Attachment, 0, len(in))
	for _, a := range in {
		out = append(out, v0.Attachment{URL: a.URL, Name: a.Name, ContentType: a.ContentType})
	}
	return out
}
