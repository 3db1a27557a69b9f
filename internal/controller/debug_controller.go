package controller

import (
	"ai-appbuilder-be/internal/dto"
	"ai-appbuilder-be/internal/pkg/logger"
	"ai-appbuilder-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IDebugController interface {
	RegisterRoutes(r fiber.Router)
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
}

type debugController struct {
	logger  logger.ILogger
	enabled bool
}

func NewDebugController(log logger.ILogger, enabled bool) IDebugController {
	return &debugController{logger: log, enabled: enabled}
}

func (c *debugController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/debug", c.guard)
	h.Get("/logs", c.GetLogs)
	h.Get("/logs/:id", c.GetLogDetail)
}

func (c *debugController) guard(ctx *fiber.Ctx) error {
	if !c.enabled {
		return fiber.ErrNotFound
	}
	return ctx.Next()
}

func (c *debugController) GetLogs(ctx *fiber.Ctx) error {
	var query dto.LogQuery
	if err := ctx.QueryParser(&query); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid query"))
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}
	if query.Limit == 0 {
		query.Limit = 50
	}

	logs, err := c.logger.GetLogs(logger.LogFilter{Level: query.Level, Module: query.Module}, query.Limit, query.Offset)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", logs))
}

func (c *debugController) GetLogDetail(ctx *fiber.Ctx) error {
	l, err := c.logger.GetLogById(serverutils.Param(ctx, "id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Log not found"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Log detail", l))
}
