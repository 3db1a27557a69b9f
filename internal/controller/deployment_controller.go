package controller

import (
	"ai-appbuilder-be/internal/dto"
	"ai-appbuilder-be/internal/pkg/serverutils"
	"ai-appbuilder-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDeploymentController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Logs(ctx *fiber.Ctx) error
	Errors(ctx *fiber.Ctx) error
}

type deploymentController struct {
	service service.IDeploymentService
}

func NewDeploymentController(service service.IDeploymentService) IDeploymentController {
	return &deploymentController{service: service}
}

func (c *deploymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/deployments")
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Get("/:deploymentId", c.Show)
	h.Delete("/:deploymentId", c.Delete)
	h.Get("/:deploymentId/logs", c.Logs)
	h.Get("/:deploymentId/errors", c.Errors)
}

func (c *deploymentController) GetAll(ctx *fiber.Ctx) error {
	var query dto.ListDeploymentsQuery
	if err := ctx.QueryParser(&query); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid query"))
	}

	res, err := c.service.FindDeployments(ctx.Context(), &query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all deployments", res))
}

func (c *deploymentController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateDeploymentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateDeployment(ctx.Context(), serverutils.ClientIP(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Deployment created", res))
}

func (c *deploymentController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.GetDeployment(ctx.Context(), serverutils.Param(ctx, "deploymentId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show deployment", res))
}

func (c *deploymentController) Delete(ctx *fiber.Ctx) error {
	res, err := c.service.DeleteDeployment(ctx.Context(), serverutils.ClientIP(ctx), serverutils.Param(ctx, "deploymentId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Deployment deleted", res))
}

func (c *deploymentController) Logs(ctx *fiber.Ctx) error {
	var query dto.DeploymentLogsQuery
	if err := ctx.QueryParser(&query); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid query"))
	}

	res, err := c.service.GetDeploymentLogs(ctx.Context(), serverutils.Param(ctx, "deploymentId"), query.Since)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get deployment logs", res))
}

func (c *deploymentController) Errors(ctx *fiber.Ctx) error {
	res, err := c.service.GetDeploymentErrors(ctx.Context(), serverutils.Param(ctx, "deploymentId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get deployment errors", res))
}
