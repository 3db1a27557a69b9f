package service

import (
	"context"
	"time"

	"ai-appbuilder-be/internal/dto"
	"ai-appbuilder-be/internal/entity"
	"ai-appbuilder-be/internal/pkg/logger"
	"ai-appbuilder-be/pkg/retry"
	v0 "ai-appbuilder-be/pkg/v0"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

const (
	defaultProjectCacheKey = "default_project"
	defaultProjectTTL      = 10 * time.Minute
)

type IProjectService interface {
	// GetProjects lists the caller's projects, or every project when isolation is off.
	GetProjects(ctx context.Context, identity string) ([]v0.ProjectSummary, error)
	GetProject(ctx context.Context, projectId string) (*v0.ProjectDetail, error)
	GetProjectChats(ctx context.Context, projectId string) ([]v0.ChatSummary, error)
	GetChatProject(ctx context.Context, chatId string) (*v0.ProjectDetail, error)
	CreateProject(ctx context.Context, identity string, req *dto.CreateProjectRequest) (*v0.ProjectDetail, error)
	// GetOrCreateDefaultProject finds the project named after the configured
	// default, creating it on first use. The id is memoised for a few minutes.
	// With isolation on every caller gets a default project of their own.
	GetOrCreateDefaultProject(ctx context.Context, identity string) (*v0.ProjectSummary, error)
	ForgetDefaultProject(identity string)
	GetOverview(ctx context.Context, identity string) (*dto.OverviewResponse, error)
}

type projectService struct {
	api         v0.API
	retry       retry.Policy
	ownership   IOwnershipService
	cache       *cache.Cache
	defaultName string
	logger      logger.ILogger
}

func NewProjectService(
	api v0.API,
	policy retry.Policy,
	ownership IOwnershipService,
	defaultName string,
	log logger.ILogger,
) IProjectService {
	return &projectService{
		api:         api,
		retry:       policy,
		ownership:   ownership,
		cache:       cache.New(defaultProjectTTL, 2*defaultProjectTTL),
		defaultName: defaultName,
		logger:      log,
	}
}

func (s *projectService) findProjects(ctx context.Context) ([]v0.ProjectSummary, error) {
	return retry.Do(ctx, s.retry, func(ctx context.Context) ([]v0.ProjectSummary, error) {
		return s.api.FindProjects(ctx)
	})
}

func (s *projectService) GetProjects(ctx context.Context, identity string) ([]v0.ProjectSummary, error) {
	projects, err := s.findProjects(ctx)
	if err != nil {
		return nil, err
	}
	projects = scopeProjects(ctx, s.ownership, identity, projects)
	if projects == nil {
		projects = []v0.ProjectSummary{}
	}
	return projects, nil
}

func (s *projectService) GetProject(ctx context.Context, projectId string) (*v0.ProjectDetail, error) {
	return retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.ProjectDetail, error) {
		return s.api.GetProject(ctx, projectId)
	})
}

func (s *projectService) GetProjectChats(ctx context.Context, projectId string) ([]v0.ChatSummary, error) {
	project, err := s.GetProject(ctx, projectId)
	if err != nil {
		return nil, err
	}
	if project.Chats == nil {
		return []v0.ChatSummary{}, nil
	}
	return project.Chats, nil
}

func (s *projectService) GetChatProject(ctx context.Context, chatId string) (*v0.ProjectDetail, error) {
	return retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.ProjectDetail, error) {
		return s.api.GetProjectByChatID(ctx, chatId)
	})
}

func (s *projectService) CreateProject(ctx context.Context, identity string, req *dto.CreateProjectRequest) (*v0.ProjectDetail, error) {
	project, err := retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.ProjectDetail, error) {
		return s.api.CreateProject(ctx, v0.CreateProjectRequest{
			Name:         req.Name,
			Description:  req.Description,
			Icon:         req.Icon,
			Instructions: req.Instructions,
		})
	})
	if err != nil {
		return nil, err
	}

	s.ownership.Claim(ctx, entity.ResourceProject, project.ID, identity)
	s.logger.Info("PROJECT", "Project created", map[string]interface{}{"project_id": project.ID, "name": project.Name})
	return project, nil
}

func (s *projectService) defaultProjectKey(identity string) string {
	if s.ownership.Enabled() {
		return defaultProjectCacheKey + ":" + identity
	}
	return defaultProjectCacheKey
}

func (s *projectService) GetOrCreateDefaultProject(ctx context.Context, identity string) (*v0.ProjectSummary, error) {
	key := s.defaultProjectKey(identity)
	if cached, ok := s.cache.Get(key); ok {
		project := cached.(v0.ProjectSummary)
		return &project, nil
	}

	projects, err := s.GetProjects(ctx, identity)
	if err != nil {
		return nil, err
	}

	for _, p := range projects {
		if p.Name == s.defaultName {
			s.cache.SetDefault(key, p)
			return &p, nil
		}
	}

	created, err := s.CreateProject(ctx, identity, &dto.CreateProjectRequest{
		Name:        s.defaultName,
		Description: "Default project for generated apps",
	})
	if err != nil {
		return nil, err
	}

	s.cache.SetDefault(key, created.ProjectSummary)
	return &created.ProjectSummary, nil
}

func (s *projectService) ForgetDefaultProject(identity string) {
	s.cache.Delete(s.defaultProjectKey(identity))
}

func (s *projectService) GetOverview(ctx context.Context, identity string) (*dto.OverviewResponse, error) {
	var res dto.OverviewResponse

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		projects, err := s.GetProjects(gctx, identity)
		res.Projects = projects
		return err
	})
	g.Go(func() error {
		chats, err := retry.Do(gctx, s.retry, func(ctx context.Context) ([]v0.ChatSummary, error) {
			return s.api.FindChats(ctx, v0.FindChatsRequest{})
		})
		if err != nil {
			return err
		}
		res.Chats = scopeChats(gctx, s.ownership, identity, chats)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if res.Projects == nil {
		res.Projects = []v0.ProjectSummary{}
	}
	if res.Chats == nil {
		res.Chats = []v0.ChatSummary{}
	}
	return &res, nil
}
