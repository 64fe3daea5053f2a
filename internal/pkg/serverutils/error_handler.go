package serverutils

import (
	"errors"
	"log"

	"mentor-ai-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors returned by handlers into the
// response envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return ErrorHandler(ctx, err)
	}
}

// ErrorHandler is also installed as fiber.Config.ErrorHandler for errors
// raised outside the middleware chain (unknown routes, body limits).
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus()
		message := appErr.Message
		if status == fiber.StatusInternalServerError {
			log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
			message = "internal server error"
		}
		return ctx.Status(status).JSON(BaseResponse[any]{
			Success:   false,
			Code:      status,
			Message:   message,
			Data:      appErr.Data,
			ErrorType: string(appErr.Kind),
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
	}

	log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
}
