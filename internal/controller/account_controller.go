package controller

import (
	"ai-appbuilder-be/internal/pkg/serverutils"
	"ai-appbuilder-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAccountController interface {
	RegisterRoutes(r fiber.Router)
	Validate(ctx *fiber.Ctx) error
	User(ctx *fiber.Ctx) error
	Billing(ctx *fiber.Ctx) error
	Plan(ctx *fiber.Ctx) error
	RateLimits(ctx *fiber.Ctx) error
}

type accountController struct {
	service service.IAccountService
}

func NewAccountController(service service.IAccountService) IAccountController {
	return &accountController{service: service}
}

func (c *accountController) RegisterRoutes(r fiber.Router) {
	r.Get("/validate", c.Validate)
	r.Get("/user", c.User)
	r.Get("/user/billing", c.Billing)
	r.Get("/user/plan", c.Plan)
	r.Get("/rate-limits", c.RateLimits)
}

func (c *accountController) Validate(ctx *fiber.Ctx) error {
	res, err := c.service.ValidateAPIKey(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("API key checked", res))
}

func (c *accountController) User(ctx *fiber.Ctx) error {
	res, err := c.service.GetUser(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get user", res))
}

func (c *accountController) Billing(ctx *fiber.Ctx) error {
	res, err := c.service.GetUserBilling(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get billing", res))
}

func (c *accountController) Plan(ctx *fiber.Ctx) error {
	res, err := c.service.GetUserPlan(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get plan", res))
}

func (c *accountController) RateLimits(ctx *fiber.Ctx) error {
	res, err := c.service.GetRateLimits(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get rate limits", res))
}
