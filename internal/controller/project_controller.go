package controller

import (
	"ai-appbuilder-be/internal/dto"
	"ai-appbuilder-be/internal/pkg/serverutils"
	"ai-appbuilder-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IProjectController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Chats(ctx *fiber.Ctx) error
	Overview(ctx *fiber.Ctx) error
	ChatProject(ctx *fiber.Ctx) error
}

type projectController struct {
	service service.IProjectService
}

func NewProjectController(service service.IProjectService) IProjectController {
	return &projectController{service: service}
}

func (c *projectController) RegisterRoutes(r fiber.Router) {
	r.Get("/overview", c.Overview)
	r.Get("/chats/:chatId/project", c.ChatProject)

	h := r.Group("/projects")
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Get("/:projectId", c.Show)
	h.Get("/:projectId/chats", c.Chats)
}

func (c *projectController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.GetProjects(ctx.Context(), serverutils.ClientIP(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all projects", res))
}

func (c *projectController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateProjectRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateProject(ctx.Context(), serverutils.ClientIP(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Project created", res))
}

func (c *projectController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.GetProject(ctx.Context(), serverutils.Param(ctx, "projectId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show project", res))
}

func (c *projectController) Chats(ctx *fiber.Ctx) error {
	res, err := c.service.GetProjectChats(ctx.Context(), serverutils.Param(ctx, "projectId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get project chats", res))
}

func (c *projectController) Overview(ctx *fiber.Ctx) error {
	res, err := c.service.GetOverview(ctx.Context(), serverutils.ClientIP(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get overview", res))
}

func (c *projectController) ChatProject(ctx *fiber.Ctx) error {
	res, err := c.service.GetChatProject(ctx.Context(), serverutils.Param(ctx, "chatId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat project", res))
}
