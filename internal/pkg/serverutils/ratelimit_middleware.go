package serverutils

import (
	"strconv"

	"ai-appbuilder-be/internal/pkg/logger"
	"ai-appbuilder-be/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
)

type RateLimitInfo struct {
	Success   bool  `json:"success"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
}

// RateLimitMiddleware admits at most the limiter's capacity per caller and window.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		ip := ClientIP(ctx)
		res := limiter.Check(ctx.Context(), ratelimit.Identifier(ip))

		ctx.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		ctx.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		ctx.Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset.UnixMilli(), 10))

		if res.Admitted {
			return ctx.Next()
		}

		log.Warn("RATE_LIMIT", "Generation rejected", map[string]interface{}{
			"ip":    ip,
			"reset": res.Reset,
		})
		body := &BaseResponse[RateLimitInfo]{
			Success: false,
			Code:    fiber.StatusTooManyRequests,
			Message: "Rate limit exceeded. You can generate up to " + strconv.Itoa(res.Limit) + " apps per window.",
			Error:   "RATE_LIMIT_EXCEEDED",
			Data: RateLimitInfo{
				Success:   false,
				Limit:     res.Limit,
				Remaining: res.Remaining,
				Reset:     res.Reset.UnixMilli(),
			},
		}
		return ctx.Status(fiber.StatusTooManyRequests).JSON(body)
	}
}
