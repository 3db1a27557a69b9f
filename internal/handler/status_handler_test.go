package handler

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"ai-appbuilder-be/internal/pkg/logger"
	"ai-appbuilder-be/internal/pkg/serverutils"
	internalWS "ai-appbuilder-be/internal/websocket"
	v0 "ai-appbuilder-be/pkg/v0"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusHandler_RequiresUpgrade(t *testing.T) {
	hub := internalWS.NewHub(logger.NewNopLogger())
	fetch := func(context.Context, string) (v0.VersionStatus, error) { return v0.StatusPending, nil }

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewStatusHandler(hub, fetch, time.Second, logger.NewNopLogger()).RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/ws/chats/chat_1/status", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
