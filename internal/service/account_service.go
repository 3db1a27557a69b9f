package service

import (
	"context"

	"ai-appbuilder-be/internal/dto"
	"ai-appbuilder-be/pkg/retry"
	v0 "ai-appbuilder-be/pkg/v0"
)

type IAccountService interface {
	// ValidateAPIKey checks the key against the remote account. Only unexpected
	// failures are returned as errors; a missing or rejected key is reported in
	// the response.
	ValidateAPIKey(ctx context.Context) (*dto.ValidateAPIKeyResponse, error)
	GetUser(ctx context.Context) (*v0.UserDetail, error)
	GetUserBilling(ctx context.Context) (*v0.UserBilling, error)
	GetUserPlan(ctx context.Context) (*v0.UserPlan, error)
	GetRateLimits(ctx context.Context) (*v0.RateLimits, error)
}

type accountService struct {
	api       v0.API
	retry     retry.Policy
	keyLoaded bool
}

func NewAccountService(api v0.API, policy retry.Policy, keyLoaded bool) IAccountService {
	return &accountService{
		api:       api,
		retry:     policy,
		keyLoaded: keyLoaded,
	}
}

func (s *accountService) ValidateAPIKey(ctx context.Context) (*dto.ValidateAPIKeyResponse, error) {
	if !s.keyLoaded {
		return &dto.ValidateAPIKeyResponse{Valid: false, Error: dto.APIKeyMissing}, nil
	}

	user, err := s.api.GetUser(ctx)
	if err != nil {
		if v0.IsKind(err, v0.KindAPIKey) {
			return &dto.ValidateAPIKeyResponse{Valid: false, Error: dto.APIKeyInvalid}, nil
		}
		return nil, err
	}
	return &dto.ValidateAPIKeyResponse{Valid: true, User: user}, nil
}

func (s *accountService) GetUser(ctx context.Context) (*v0.UserDetail, error) {
	return retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.UserDetail, error) {
		return s.api.GetUser(ctx)
	})
}

func (s *accountService) GetUserBilling(ctx context.Context) (*v0.UserBilling, error) {
	return retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.UserBilling, error) {
		return s.api.GetUserBilling(ctx)
	})
}

func (s *accountService) GetUserPlan(ctx context.Context) (*v0.UserPlan, error) {
	return retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.UserPlan, error) {
		return s.api.GetUserPlan(ctx)
	})
}

func (s *accountService) GetRateLimits(ctx context.Context) (*v0.RateLimits, error) {
	return retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.RateLimits, error) {
		return s.api.GetRateLimits(ctx)
	})
}
