package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"

	"ai-appbuilder-be/internal/dto"
	"ai-appbuilder-be/internal/pkg/logger"
	"ai-appbuilder-be/internal/pkg/serverutils"
	"ai-appbuilder-be/internal/repository/memory"
	"ai-appbuilder-be/internal/service"
	"ai-appbuilder-be/pkg/retry"
	v0 "ai-appbuilder-be/pkg/v0"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completedChats answers CreateChat with an already finished chat.
type completedChats struct {
	v0.API

	mu   sync.Mutex
	seen int
}

func (c *completedChats) CreateChat(_ context.Context, req v0.CreateChatRequest) (*v0.ChatDetail, error) {
	c.mu.Lock()
	c.seen++
	id := fmt.Sprintf("chat_%d", c.seen)
	c.mu.Unlock()
	return &v0.ChatDetail{ChatSummary: v0.ChatSummary{
		ID:            id,
		ProjectID:     req.ProjectID,
		LatestVersion: &v0.Version{ID: "ver_" + id, Status: v0.StatusCompleted},
	}}, nil
}

func newHistoryApp() *fiber.App {
	nop := logger.NewNopLogger()
	generations := service.NewGenerationService(
		&completedChats{},
		retry.Policy{MaxAttempts: 1},
		memory.NewGenerationRepository(),
		nil,
		service.NewOwnershipService(nil, false, nop),
		nil,
		nil,
		service.GenerationOptions{},
		nop,
	)

	// default config: request strings are not immutable here
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	app.Use(serverutils.IdentityMiddleware)
	NewGenerationController(generations, func(c *fiber.Ctx) error { return c.Next() }).RegisterRoutes(app.Group("/api"))
	return app
}

func historyOf(t *testing.T, app *fiber.App, ip string) []dto.GenerationHistoryItem {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/generations", nil)
	req.Header.Set("X-Real-IP", ip)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var env struct {
		Data []dto.GenerationHistoryItem `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env.Data
}

func TestGenerationHistory_IsPerCaller(t *testing.T) {
	app := newHistoryApp()

	// same length addresses share buffer layout between requests
	status, _ := post(t, app, "/api/generate", `{"message":"alpha","projectId":"prj_1"}`, "203.0.113.9")
	require.Equal(t, 200, status)
	status, _ = post(t, app, "/api/generate", `{"message":"beta","projectId":"prj_1"}`, "203.0.113.8")
	require.Equal(t, 200, status)

	first := historyOf(t, app, "203.0.113.9")
	require.Len(t, first, 1)
	assert.Equal(t, "alpha", first[0].Prompt)

	second := historyOf(t, app, "203.0.113.8")
	require.Len(t, second, 1)
	assert.Equal(t, "beta", second[0].Prompt)
}

func TestParam_SurvivesRequest(t *testing.T) {
	var kept []string
	app := fiber.New()
	app.Get("/chats/:chatId", func(c *fiber.Ctx) error {
		kept = append(kept, serverutils.Param(c, "chatId"))
		return c.SendStatus(fiber.StatusNoContent)
	})

	for _, id := range []string{"chat_aaaa", "chat_bbbb"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/chats/"+id, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, []string{"chat_aaaa", "chat_bbbb"}, kept)
}

func TestShowGeneration_OwnOnly(t *testing.T) {
	app := newHistoryApp()
	status, _ := post(t, app, "/api/generate", `{"message":"alpha","projectId":"prj_1"}`, "203.0.113.9")
	require.Equal(t, 200, status)
	id := historyOf(t, app, "203.0.113.9")[0].Id.String()

	show := func(ip, id string) int {
		req := httptest.NewRequest("GET", "/api/generations/"+id, nil)
		req.Header.Set("X-Real-IP", ip)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, 200, show("203.0.113.9", id))
	assert.Equal(t, 404, show("203.0.113.8", id))
	assert.Equal(t, 400, show("203.0.113.9", "not-a-uuid"))
}
