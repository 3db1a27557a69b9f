package serverutils

import (
	"ai-appbuilder-be/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

const clientIPKey = "client_ip"

// IdentityMiddleware resolves the caller address once per request.
func IdentityMiddleware(ctx *fiber.Ctx) error {
	ctx.Locals(clientIPKey, resolveClientIP(ctx))
	return ctx.Next()
}

// ClientIP returns the caller address resolved by IdentityMiddleware.
// The value is a private copy and may outlive the request.
func ClientIP(ctx *fiber.Ctx) string {
	if ip, ok := ctx.Locals(clientIPKey).(string); ok && ip != "" {
		return ip
	}
	return resolveClientIP(ctx)
}

// Param returns a route parameter that is safe to keep after the handler returns.
func Param(ctx *fiber.Ctx, name string) string {
	return utils.CopyString(ctx.Params(name))
}

func resolveClientIP(ctx *fiber.Ctx) string {
	return utils.CopyString(ratelimit.ClientIP(func(name string) string { return ctx.Get(name) }))
}
