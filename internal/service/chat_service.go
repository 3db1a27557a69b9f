package service

import (
	"context"

	"ai-appbuilder-be/internal/dto"
	"ai-appbuilder-be/internal/entity"
	"ai-appbuilder-be/internal/pkg/logger"
	"ai-appbuilder-be/pkg/retry"
	v0 "ai-appbuilder-be/pkg/v0"
)

type IChatService interface {
	GetChat(ctx context.Context, chatId string) (*v0.ChatDetail, error)
	GetChatStatus(ctx context.Context, chatId string) (*dto.ChatStatusResponse, error)
	// FindChats lists the caller's chats, or every chat when isolation is off.
	FindChats(ctx context.Context, identity string, query *dto.ListChatsQuery) ([]v0.ChatSummary, error)
	RenameChat(ctx context.Context, identity string, req *dto.RenameChatRequest) (*v0.ChatDetail, error)
	// DeleteChat reports remote failures through the deleted flag. Only a
	// denied ownership check or a credential problem is returned as an error.
	DeleteChat(ctx context.Context, identity string, chatId string) (*dto.DeleteChatResponse, error)
	ForkChat(ctx context.Context, identity string, req *dto.ForkChatRequest) (*v0.ChatDetail, error)
	FavoriteChat(ctx context.Context, identity string, req *dto.FavoriteChatRequest) (*v0.FavoriteResult, error)
}

type chatService struct {
	api       v0.API
	retry     retry.Policy
	ownership IOwnershipService
	logger    logger.ILogger
}

func NewChatService(api v0.API, policy retry.Policy, ownership IOwnershipService, log logger.ILogger) IChatService {
	return &chatService{
		api:       api,
		retry:     policy,
		ownership: ownership,
		logger:    log,
	}
}

func (s *chatService) GetChat(ctx context.Context, chatId string) (*v0.ChatDetail, error) {
	return retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.ChatDetail, error) {
		return s.api.GetChat(ctx, chatId)
	})
}

func (s *chatService) GetChatStatus(ctx context.Context, chatId string) (*dto.ChatStatusResponse, error) {
	chat, err := s.GetChat(ctx, chatId)
	if err != nil {
		return nil, err
	}

	res := &dto.ChatStatusResponse{
		ChatId: chat.ID,
		Status: string(v0.StatusPending),
	}
	if v := chat.LatestVersion; v != nil {
		res.Status = string(v.Status)
		res.VersionId = v.ID
		res.DemoUrl = v.DemoURL
		res.Terminal = v.Status.IsTerminal()
	}
	return res, nil
}

func (s *chatService) FindChats(ctx context.Context, identity string, query *dto.ListChatsQuery) ([]v0.ChatSummary, error) {
	chats, err := retry.Do(ctx, s.retry, func(ctx context.Context) ([]v0.ChatSummary, error) {
		return s.api.FindChats(ctx, v0.FindChatsRequest{
			Limit:      query.Limit,
			Offset:     query.Offset,
			IsFavorite: query.IsFavorite,
		})
	})
	if err != nil {
		return nil, err
	}
	chats = scopeChats(ctx, s.ownership, identity, chats)
	if chats == nil {
		chats = []v0.ChatSummary{}
	}
	return chats, nil
}

func (s *chatService) RenameChat(ctx context.Context, identity string, req *dto.RenameChatRequest) (*v0.ChatDetail, error) {
	if err := s.ownership.Authorize(ctx, entity.ResourceChat, req.ChatId, identity); err != nil {
		return nil, err
	}
	return retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.ChatDetail, error) {
		return s.api.UpdateChat(ctx, v0.UpdateChatRequest{ChatID: req.ChatId, Name: req.Name})
	})
}

func (s *chatService) DeleteChat(ctx context.Context, identity string, chatId string) (*dto.DeleteChatResponse, error) {
	if err := s.ownership.Authorize(ctx, entity.ResourceChat, chatId, identity); err != nil {
		return nil, err
	}

	_, err := retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.DeleteResult, error) {
		return s.api.DeleteChat(ctx, chatId)
	})
	if err != nil {
		if v0.IsKind(err, v0.KindAPIKey) {
			return nil, err
		}
		s.logger.Error("CHAT", "Failed to delete chat", map[string]interface{}{"chat_id": chatId, "error": err.Error()})
		return &dto.DeleteChatResponse{ChatId: chatId, Deleted: false}, nil
	}

	return &dto.DeleteChatResponse{ChatId: chatId, Deleted: true}, nil
}

func (s *chatService) ForkChat(ctx context.Context, identity string, req *dto.ForkChatRequest) (*v0.ChatDetail, error) {
	if err := s.ownership.Authorize(ctx, entity.ResourceChat, req.ChatId, identity); err != nil {
		return nil, err
	}
	if req.ProjectId != "" {
		if err := s.ownership.Authorize(ctx, entity.ResourceProject, req.ProjectId, identity); err != nil {
			return nil, err
		}
	}

	forked, err := retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.ChatDetail, error) {
		return s.api.ForkChat(ctx, v0.ForkChatRequest{
			ChatID:    req.ChatId,
			VersionID: req.VersionId,
			ProjectID: req.ProjectId,
		})
	})
	if err != nil {
		return nil, err
	}

	s.ownership.Claim(ctx, entity.ResourceChat, forked.ID, identity)
	return forked, nil
}

func (s *chatService) FavoriteChat(ctx context.Context, identity string, req *dto.FavoriteChatRequest) (*v0.FavoriteResult, error) {
	if err := s.ownership.Authorize(ctx, entity.ResourceChat, req.ChatId, identity); err != nil {
		return nil, err
	}
	return retry.Do(ctx, s.retry, func(ctx context.Context) (*v0.FavoriteResult, error) {
		return s.api.FavoriteChat(ctx, req.ChatId, req.IsFavorite)
	})
}
