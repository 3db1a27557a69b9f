package contract

import (
	"context"

	"ai-appbuilder-be/internal/entity"

	"github.com/google/uuid"
)

type GenerationRepository interface {
	Create(ctx context.Context, record *entity.GenerationRecord) error
	Update(ctx context.Context, record *entity.GenerationRecord) error
	// FindByID returns nil, nil when the record does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.GenerationRecord, error)
	FindAllByIdentity(ctx context.Context, identity string, limit, offset int) ([]*entity.GenerationRecord, error)
	// UpdateStatusByChatID sets the observed version status on every record of the chat.
	UpdateStatusByChatID(ctx context.Context, chatID, status, demoURL string) error
}
