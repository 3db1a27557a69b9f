package controller

import (
	"ai-appbuilder-be/internal/dto"
	"ai-appbuilder-be/internal/pkg/serverutils"
	"ai-appbuilder-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IGenerationController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	ListGenerations(ctx *fiber.Ctx) error
	ShowGeneration(ctx *fiber.Ctx) error
}

type generationController struct {
	service   service.IGenerationService
	rateLimit fiber.Handler
}

// NewGenerationController gates only new generations behind rateLimit.
func NewGenerationController(service service.IGenerationService, rateLimit fiber.Handler) IGenerationController {
	return &generationController{service: service, rateLimit: rateLimit}
}

func (c *generationController) RegisterRoutes(r fiber.Router) {
	r.Post("/generate", c.rateLimit, c.Generate)
	r.Post("/chats/:chatId/messages", c.SendMessage)
	r.Get("/generations", c.ListGenerations)
	r.Get("/generations/:id", c.ShowGeneration)
}

func (c *generationController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.GenerateApp(ctx.Context(), serverutils.ClientIP(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Generation started", res))
}

func (c *generationController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	req.ChatId = serverutils.Param(ctx, "chatId")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.Context(), serverutils.ClientIP(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Message sent", res))
}

func (c *generationController) ListGenerations(ctx *fiber.Ctx) error {
	var query dto.ListGenerationsQuery
	if err := ctx.QueryParser(&query); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid query"))
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.service.ListGenerations(ctx.Context(), serverutils.ClientIP(ctx), &query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get generations", res))
}

func (c *generationController) ShowGeneration(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(serverutils.Param(ctx, "id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid generation id"))
	}

	res, err := c.service.GetGeneration(ctx.Context(), serverutils.ClientIP(ctx), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show generation", res))
}
