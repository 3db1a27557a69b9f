package controller

import (
	"ai-appbuilder-be/internal/dto"
	"ai-appbuilder-be/internal/pkg/serverutils"
	"ai-appbuilder-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Rename(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Fork(ctx *fiber.Ctx) error
	Favorite(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chats")
	h.Get("", c.GetAll)
	h.Post("/fork", c.Fork)
	h.Get("/:chatId", c.Show)
	h.Get("/:chatId/status", c.Status)
	h.Patch("/:chatId", c.Rename)
	h.Delete("/:chatId", c.Delete)
	h.Put("/:chatId/favorite", c.Favorite)
}

func (c *chatController) GetAll(ctx *fiber.Ctx) error {
	var query dto.ListChatsQuery
	if err := ctx.QueryParser(&query); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid query"))
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.service.FindChats(ctx.Context(), serverutils.ClientIP(ctx), &query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all chats", res))
}

func (c *chatController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.GetChat(ctx.Context(), serverutils.Param(ctx, "chatId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show chat", res))
}

func (c *chatController) Status(ctx *fiber.Ctx) error {
	res, err := c.service.GetChatStatus(ctx.Context(), serverutils.Param(ctx, "chatId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat status", res))
}

func (c *chatController) Rename(ctx *fiber.Ctx) error {
	var req dto.RenameChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	req.ChatId = serverutils.Param(ctx, "chatId")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.RenameChat(ctx.Context(), serverutils.ClientIP(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Chat renamed", res))
}

func (c *chatController) Delete(ctx *fiber.Ctx) error {
	res, err := c.service.DeleteChat(ctx.Context(), serverutils.ClientIP(ctx), serverutils.Param(ctx, "chatId"))
	if err != nil {
		return err
	}

	msg := "Chat deleted"
	if !res.Deleted {
		msg = "Chat could not be deleted"
	}
	return ctx.JSON(serverutils.SuccessResponse(msg, res))
}

func (c *chatController) Fork(ctx *fiber.Ctx) error {
	var req dto.ForkChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ForkChat(ctx.Context(), serverutils.ClientIP(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Chat forked", res))
}

func (c *chatController) Favorite(ctx *fiber.Ctx) error {
	var req dto.FavoriteChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	req.ChatId = serverutils.Param(ctx, "chatId")

	res, err := c.service.FavoriteChat(ctx.Context(), serverutils.ClientIP(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Favorite updated", res))
}
