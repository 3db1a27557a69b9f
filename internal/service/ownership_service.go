package service

import (
	"context"

	"ai-appbuilder-be/internal/entity"
	"ai-appbuilder-be/internal/pkg/logger"
	"ai-appbuilder-be/internal/repository/contract"
	v0 "ai-appbuilder-be/pkg/v0"
)

// IOwnershipService scopes chats and projects to the caller identity that
// created them. Every method fails open: a store problem never blocks a caller.
type IOwnershipService interface {
	Enabled() bool
	// Authorize returns a NOT_FOUND error when id is owned by someone else.
	// Unclaimed resources are claimed for identity on first access.
	Authorize(ctx context.Context, kind entity.ResourceKind, id, identity string) error
	Claim(ctx context.Context, kind entity.ResourceKind, id, identity string)
	// Owned lists the ids claimed by identity. scoped is false when isolation
	// is off or the store failed, in which case callers must not filter.
	Owned(ctx context.Context, kind entity.ResourceKind, identity string) (ids []string, scoped bool)
}

type ownershipService struct {
	repo    contract.OwnershipRepository
	enabled bool
	logger  logger.ILogger
}

// NewOwnershipService disables isolation when repo is nil.
func NewOwnershipService(repo contract.OwnershipRepository, enabled bool, log logger.ILogger) IOwnershipService {
	return &ownershipService{
		repo:    repo,
		enabled: enabled && repo != nil,
		logger:  log,
	}
}

func (s *ownershipService) Enabled() bool {
	return s.enabled
}

func (s *ownershipService) Authorize(ctx context.Context, kind entity.ResourceKind, id, identity string) error {
	if !s.enabled || id == "" {
		return nil
	}

	owner, found, err := s.repo.GetOwner(ctx, kind, id)
	if err != nil {
		s.logger.Warn("OWNERSHIP", "Owner lookup failed, allowing access", map[string]interface{}{
			"kind": kind, "id": id, "error": err.Error(),
		})
		return nil
	}

	if !found {
		// Resources created before isolation was switched on belong to whoever touches them first.
		if err := s.repo.Associate(ctx, kind, id, identity); err != nil {
			s.logger.Warn("OWNERSHIP", "Claiming legacy resource failed", map[string]interface{}{
				"kind": kind, "id": id, "error": err.Error(),
			})
			return nil
		}
		s.logger.Info("OWNERSHIP", "Claimed legacy resource", map[string]interface{}{
			"kind": kind, "id": id, "identity": identity,
		})

		owner, found, err = s.repo.GetOwner(ctx, kind, id)
		if err != nil || !found {
			return nil
		}
	}

	if owner != identity {
		s.logger.Warn("OWNERSHIP", "Access denied", map[string]interface{}{
			"kind": kind, "id": id, "identity": identity,
		})
		return v0.NewNotFoundError(kind.Label() + " not found")
	}
	return nil
}

func (s *ownershipService) Claim(ctx context.Context, kind entity.ResourceKind, id, identity string) {
	if !s.enabled || id == "" {
		return
	}
	if err := s.repo.Associate(ctx, kind, id, identity); err != nil {
		s.logger.Warn("OWNERSHIP", "Failed to associate resource", map[string]interface{}{
			"kind": kind, "id": id, "error": err.Error(),
		})
	}
}

func (s *ownershipService) Owned(ctx context.Context, kind entity.ResourceKind, identity string) ([]string, bool) {
	if !s.enabled {
		return nil, false
	}
	ids, err := s.repo.ListOwned(ctx, kind, identity)
	if err != nil {
		s.logger.Warn("OWNERSHIP", "Failed to list owned resources", map[string]interface{}{
			"kind": kind, "identity": identity, "error": err.Error(),
		})
		return nil, false
	}
	return ids, true
}

func ownedSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// scopeProjects keeps the projects identity owns when isolation is on.
func scopeProjects(ctx context.Context, ownership IOwnershipService, identity string, projects []v0.ProjectSummary) []v0.ProjectSummary {
	ids, scoped := ownership.Owned(ctx, entity.ResourceProject, identity)
	if !scoped {
		return projects
	}
	set := ownedSet(ids)
	out := make([]v0.ProjectSummary, 0, len(projects))
	for _, p := range projects {
		if _, ok := set[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

func scopeChats(ctx context.Context, ownership IOwnershipService, identity string, chats []v0.ChatSummary) []v0.ChatSummary {
	ids, scoped := ownership.Owned(ctx, entity.ResourceChat, identity)
	if !scoped {
		return chats
	}
	set := ownedSet(ids)
	out := make([]v0.ChatSummary, 0, len(chats))
	for _, c := range chats {
		if _, ok := set[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}
