package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-appbuilder-be/internal/dto"
	"ai-appbuilder-be/internal/pkg/serverutils"
	v0 "ai-appbuilder-be/pkg/v0"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatService struct {
	owner   string
	renamed string
}

func (f *fakeChatService) deny(identity string) error {
	if identity != f.owner {
		return v0.NewNotFoundError("Chat not found")
	}
	return nil
}

func (f *fakeChatService) GetChat(_ context.Context, chatId string) (*v0.ChatDetail, error) {
	return &v0.ChatDetail{ChatSummary: v0.ChatSummary{ID: chatId}}, nil
}

func (f *fakeChatService) GetChatStatus(_ context.Context, chatId string) (*dto.ChatStatusResponse, error) {
	return &dto.ChatStatusResponse{ChatId: chatId, Status: "completed", Terminal: true}, nil
}

func (f *fakeChatService) FindChats(context.Context, string, *dto.ListChatsQuery) ([]v0.ChatSummary, error) {
	return []v0.ChatSummary{}, nil
}

func (f *fakeChatService) RenameChat(_ context.Context, identity string, req *dto.RenameChatRequest) (*v0.ChatDetail, error) {
	if err := f.deny(identity); err != nil {
		return nil, err
	}
	f.renamed = req.Name
	return &v0.ChatDetail{ChatSummary: v0.ChatSummary{ID: req.ChatId, Name: req.Name}}, nil
}

func (f *fakeChatService) DeleteChat(_ context.Context, identity string, chatId string) (*dto.DeleteChatResponse, error) {
	if err := f.deny(identity); err != nil {
		return nil, err
	}
	return &dto.DeleteChatResponse{ChatId: chatId, Deleted: chatId != "chat_stuck"}, nil
}

func (f *fakeChatService) ForkChat(context.Context, string, *dto.ForkChatRequest) (*v0.ChatDetail, error) {
	return &v0.ChatDetail{ChatSummary: v0.ChatSummary{ID: "chat_fork"}}, nil
}

func (f *fakeChatService) FavoriteChat(_ context.Context, identity string, req *dto.FavoriteChatRequest) (*v0.FavoriteResult, error) {
	if err := f.deny(identity); err != nil {
		return nil, err
	}
	return &v0.FavoriteResult{ID: req.ChatId, Favorited: req.IsFavorite}, nil
}

func doJSON(t *testing.T, app *fiber.App, method, path, body, ip string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", ip)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func newChatApp(svc *fakeChatService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	app.Use(serverutils.IdentityMiddleware)
	NewChatController(svc).RegisterRoutes(app.Group("/api"))
	return app
}

func TestChatController_Rename(t *testing.T) {
	svc := &fakeChatService{owner: "10.0.0.1"}
	app := newChatApp(svc)

	status, env := doJSON(t, app, "PATCH", "/api/chats/chat_1", `{"name":"Storefront"}`, "10.0.0.1")
	assert.Equal(t, 200, status)
	assert.True(t, env.Success)
	assert.Equal(t, "Storefront", svc.renamed)

	status, env = doJSON(t, app, "PATCH", "/api/chats/chat_1", `{"name":"Mine"}`, "10.0.0.2")
	assert.Equal(t, 404, status)
	assert.Equal(t, "Chat not found", env.Message)

	status, _ = doJSON(t, app, "PATCH", "/api/chats/chat_1", `{"name":""}`, "10.0.0.1")
	assert.Equal(t, 400, status)
}

func TestChatController_Delete(t *testing.T) {
	app := newChatApp(&fakeChatService{owner: "10.0.0.1"})

	status, env := doJSON(t, app, "DELETE", "/api/chats/chat_stuck", "", "10.0.0.1")
	require.Equal(t, 200, status)
	var data dto.DeleteChatResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.False(t, data.Deleted)

	status, _ = doJSON(t, app, "DELETE", "/api/chats/chat_1", "", "10.0.0.9")
	assert.Equal(t, 404, status)
}

func TestChatController_ForkRequiresChatId(t *testing.T) {
	app := newChatApp(&fakeChatService{})

	status, env := doJSON(t, app, "POST", "/api/chats/fork", `{}`, "10.0.0.1")
	assert.Equal(t, 400, status)
	assert.Equal(t, "ChatId is required", env.Message)

	status, _ = doJSON(t, app, "POST", "/api/chats/fork", `{"chatId":"chat_1"}`, "10.0.0.1")
	assert.Equal(t, 200, status)
}
