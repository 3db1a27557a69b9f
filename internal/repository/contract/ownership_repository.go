package contract

import (
	"context"

	"ai-appbuilder-be/internal/entity"
)

type OwnershipRepository interface {
	// GetOwner reports the identity owning id. found is false when unclaimed.
	GetOwner(ctx context.Context, kind entity.ResourceKind, id string) (owner string, found bool, err error)
	Associate(ctx context.Context, kind entity.ResourceKind, id, identity string) error
	ListOwned(ctx context.Context, kind entity.ResourceKind, identity string) ([]string, error)
}
