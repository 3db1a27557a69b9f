package service

import (
	"context"

	"ai-appbuilder-be/internal/dto"
	"ai-appbuilder-be/internal/entity"
	"ai-appbuilder-be/internal/pkg/logger"
	"ai-appbuilder-be/pkg/retry"
	v0 "ai-appbuilder-be/pkg/v0"
)

type IDeploymentService interface {
	CreateDeployment(ctx context.Context, identity string, req *dto.CreateDeploymentRequest) (*v0.DeploymentDetail, error)
	FindDeployments(ctx context.Context, query *dto.ListDeploymentsQuery) ([]v0.DeploymentDetail, error)
	GetDeployment(ctx context.Context, deploymentId string) (*v0.DeploymentDetail, error)
	DeleteDeployment(ctx context.Context, identity string, deploymentId string) (*v0.DeleteResult, error)
	GetDeploymentLogs(ctx context.Context, deploymentId string, since *int64) (*v0.DeploymentLogs, error)
	GetDeploymentErrors(ctx context.Context, deploymentId string) (*v0.DeploymentErrors, error)
}

type deploymentService struct {
	api       v0.API
	retry     retry.Policy
	ownership IOwnershipService
	logger    logger.ILogger
}

func NewDeploymentService(api v0.API, policy retry.Policy, ownership IOwnershipService, log logger.ILogger) IDeploymentService {
	return &deploymentService{
		api:       api,
		retry:     policy,
		ownership: ownership,
		logger:    log,
	}
}

func (s *deploymentService) CreateDeployment(ctx context.Context, identity string, req *dto.CreateDeploymentRequest) (*v0.DeploymentDetail, error) {
	if err := s.ownership.Authorize(ctx, entity.ResourceChat, req.ChatId, identity); err != nil {
		return nil, err
	}

	deployment, err := retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.DeploymentDetail, error) {
		return s.api.CreateDeployment(ctx, v0.CreateDeploymentRequest{
			ProjectID: req.ProjectId,
			ChatID:    req.ChatId,
			VersionID: req.VersionId,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("DEPLOYMENT", "Deployment created", map[string]interface{}{
		"deployment_id": deployment.ID, "chat_id": req.ChatId, "version_id": req.VersionId,
	})
	return deployment, nil
}

func (s *deploymentService) FindDeployments(ctx context.Context, query *dto.ListDeploymentsQuery) ([]v0.DeploymentDetail, error) {
	deployments, err := retry.Do(ctx, s.retry, func(ctx context.Context) ([]v0.DeploymentDetail, error) {
		return s.api.FindDeployments(ctx, v0.FindDeploymentsRequest{
			ProjectID: query.ProjectId,
			ChatID:    query.ChatId,
			VersionID: query.VersionId,
		})
	})
	if err != nil {
		return nil, err
	}
	if deployments == nil {
		deployments = []v0.DeploymentDetail{}
	}
	return deployments, nil
}

func (s *deploymentService) GetDeployment(ctx context.Context, deploymentId string) (*v0.DeploymentDetail, error) {
	return retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.DeploymentDetail, error) {
		return s.api.GetDeployment(ctx, deploymentId)
	})
}

// DeleteDeployment is allowed for whoever owns the deployed chat.
func (s *deploymentService) DeleteDeployment(ctx context.Context, identity string, deploymentId string) (*v0.DeleteResult, error) {
	deployment, err := s.GetDeployment(ctx, deploymentId)
	if err != nil {
		return nil, err
	}
	if err := s.ownership.Authorize(ctx, entity.ResourceChat, deployment.ChatID, identity); err != nil {
		return nil, v0.NewNotFoundError("Deployment not found")
	}

	return retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.DeleteResult, error) {
		return s.api.DeleteDeployment(ctx, deploymentId)
	})
}

func (s *deploymentService) GetDeploymentLogs(ctx context.Context, deploymentId string, since *int64) (*v0.DeploymentLogs, error) {
	return retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.DeploymentLogs, error) {
		return s.api.GetDeploymentLogs(ctx, deploymentId, since)
	})
}

func (s *deploymentService) GetDeploymentErrors(ctx context.Context, deploymentId string) (*v0.DeploymentErrors, error) {
	return retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.DeploymentErrors, error) {
		return s.api.GetDeploymentErrors(ctx, deploymentId)
	})
}
