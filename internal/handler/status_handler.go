package handler

import (
	"time"

	"ai-appbuilder-be/internal/pkg/logger"
	"ai-appbuilder-be/internal/pkg/serverutils"
	internalWS "ai-appbuilder-be/internal/websocket"
	"ai-appbuilder-be/pkg/poller"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// StatusHandler streams the status of one chat over a websocket.
type StatusHandler struct {
	hub      *internalWS.Hub
	fetch    poller.Fetcher
	interval time.Duration
	logger   logger.ILogger
}

func NewStatusHandler(hub *internalWS.Hub, fetch poller.Fetcher, interval time.Duration, log logger.ILogger) *StatusHandler {
	return &StatusHandler{
		hub:      hub,
		fetch:    fetch,
		interval: interval,
		logger:   log,
	}
}

func (h *StatusHandler) ServeWs(c *fiber.Ctx) error {
	chatID := serverutils.Param(c, "chatId")
	if chatID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Chat ID is required"))
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	ip := serverutils.ClientIP(c)
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("StatusHandler", "Starting status stream", map[string]interface{}{"chat_id": chatID, "ip": ip})
		internalWS.ServeWs(h.hub, conn, h.fetch, h.interval, chatID, ip)
		h.logger.Info("StatusHandler", "Status stream ended", map[string]interface{}{"chat_id": chatID, "ip": ip})
	})(c)
}

func (h *StatusHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/chats/:chatId/status", h.ServeWs)
}
