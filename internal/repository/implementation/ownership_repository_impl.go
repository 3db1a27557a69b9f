package implementation

import (
	"context"
	"errors"
	"fmt"

	"ai-appbuilder-be/internal/entity"
	"ai-appbuilder-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

// OwnershipRepositoryImpl stores ownership as <kind>_owner:<id> -> identity
// plus a reverse set user_<kind>s:<identity>.
type OwnershipRepositoryImpl struct {
	rdb *redis.Client
}

func NewOwnershipRepository(rdb *redis.Client) contract.OwnershipRepository {
	return &OwnershipRepositoryImpl{rdb: rdb}
}

func ownerKey(kind entity.ResourceKind, id string) string {
	return fmt.Sprintf("%s_owner:%s", kind, id)
}

func ownedSetKey(kind entity.ResourceKind, identity string) string {
	return fmt.Sprintf("user_%ss:%s", kind, identity)
}

func (r *OwnershipRepositoryImpl) GetOwner(ctx context.Context, kind entity.ResourceKind, id string) (string, bool, error) {
	owner, err := r.rdb.Get(ctx, ownerKey(kind, id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s owner: %w", kind, err)
	}
	return owner, owner != "", nil
}

func (r *OwnershipRepositoryImpl) Associate(ctx context.Context, kind entity.ResourceKind, id, identity string) error {
	pipe := r.rdb.TxPipeline()
	pipe.SAdd(ctx, ownedSetKey(kind, identity), id)
	pipe.Set(ctx, ownerKey(kind, id), identity, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("associate %s %s: %w", kind, id, err)
	}
	return nil
}

func (r *OwnershipRepositoryImpl) ListOwned(ctx context.Context, kind entity.ResourceKind, identity string) ([]string, error) {
	ids, err := r.rdb.SMembers(ctx, ownedSetKey(kind, identity)).Result()
	if err != nil {
		return nil, fmt.Errorf("list %ss for %s: %w", kind, identity, err)
	}
	return ids, nil
}
