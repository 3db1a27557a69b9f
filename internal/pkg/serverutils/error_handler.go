package serverutils

import (
	"errors"

	v0 "ai-appbuilder-be/pkg/v0"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const APIKeyMissingMarker = "API_KEY_MISSING"

// ErrorHandlerMiddleware renders any error returned further down the chain
// as the standard envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, err)
	}
}

func WriteError(ctx *fiber.Ctx, err error) error {
	code, res := MapError(err)
	return ctx.Status(code).JSON(res)
}

// MapError decides status and body for err. Credential failures always get
// 401 plus the API_KEY_MISSING marker.
func MapError(err error) (int, *BaseResponse[any]) {
	var remoteErr *v0.Error
	if errors.As(err, &remoteErr) {
		switch remoteErr.Kind {
		case v0.KindValidation:
			return fiber.StatusBadRequest, MarkedErrorResponse(fiber.StatusBadRequest, string(remoteErr.Kind), remoteErr.Message)
		case v0.KindAPIKey:
			return fiber.StatusUnauthorized, MarkedErrorResponse(fiber.StatusUnauthorized, APIKeyMissingMarker, remoteErr.Message)
		case v0.KindNotFound:
			return fiber.StatusNotFound, MarkedErrorResponse(fiber.StatusNotFound, string(remoteErr.Kind), remoteErr.Message)
		case v0.KindRateLimit:
			return fiber.StatusTooManyRequests, MarkedErrorResponse(fiber.StatusTooManyRequests, string(remoteErr.Kind), remoteErr.Message)
		default:
			return fiber.StatusInternalServerError, MarkedErrorResponse(fiber.StatusInternalServerError, string(remoteErr.Kind), remoteErr.Message)
		}
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return fiber.StatusBadRequest, MarkedErrorResponse(fiber.StatusBadRequest, string(v0.KindValidation), ValidationMessage(validationErrs))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, ErrorResponse(fiberErr.Code, fiberErr.Message)
	}

	return fiber.StatusInternalServerError, ErrorResponse(fiber.StatusInternalServerError, err.Error())
}
