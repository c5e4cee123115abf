package serverutils

import (
	"errors"

	"collectify-be/internal/pkg/apperror"
	"collectify-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const unexpectedErrorPrefix = "An unexpected error occurred: "

var kindStatus = map[apperror.Kind]int{
	apperror.KindBadRequest:   fiber.StatusBadRequest,
	apperror.KindNotFound:     fiber.StatusNotFound,
	apperror.KindForbidden:    fiber.StatusForbidden,
	apperror.KindUnauthorized: fiber.StatusUnauthorized,
}

// StatusAndMessage maps an error to the response the client sees. Unknown
// errors become a 500 that echoes err's text.
func StatusAndMessage(err error) (int, string) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		if status, ok := kindStatus[appErr.Kind]; ok {
			return status, appErr.Message
		}
		return fiber.StatusInternalServerError, unexpectedErrorPrefix + err.Error()
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	if msg, ok := validationMessage(err); ok {
		return fiber.StatusBadRequest, msg
	}

	return fiber.StatusInternalServerError, unexpectedErrorPrefix + err.Error()
}

// NewErrorHandler builds a fiber.ErrorHandler. Server errors are logged.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		status, message := StatusAndMessage(err)
		if status >= fiber.StatusInternalServerError && log != nil {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err.Error(),
			})
		}
		return ctx.Status(status).JSON(ErrorResponse(status, message))
	}
}

// ErrorHandlerMiddleware converts errors returned further down the chain
// into JSON error bodies.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	handle := NewErrorHandler(log)
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return handle(ctx, err)
		}
		return nil
	}
}
