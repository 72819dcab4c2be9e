package serverutils

import (
	"errors"

	"ask-engine-be/internal/pkg/errs"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors bubbled up from controllers into
// JSON responses. Caller mistakes map to 400, everything else to 500 with
// the error message preserved in the body.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var clientErr *errs.ClientError
		if errors.As(err, &clientErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": clientErr.Message,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{
				"error": fiberErr.Message,
			})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
