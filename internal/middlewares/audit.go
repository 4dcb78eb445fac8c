package middlewares

import (
	"errors"
	"log/slog"

	"github.com/agicotech/ForumApp/internal/audit"
	"github.com/gofiber/fiber/v2"
)

// RequestAudit appends one audit entry per authenticated state-changing
// request after the handler completes, using the raw "METHOD PATH" as action
// and the final status code as details. GET/HEAD and anonymous requests are
// never logged. The write is best-effort: a failed audit insert must not
// alter the already-computed response.
func RequestAudit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		claims := ClaimsFromCtx(c)
		if claims == nil {
			return err
		}
		method := c.Method()
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodDelete {
			return err
		}

		// The central error handler runs after this middleware returns, so
		// for failed requests the status must come from the error itself.
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
		}

		if recordErr := audit.RecordRequest(c.UserContext(), claims.UserID, method, c.Path(), status); recordErr != nil {
			slog.Warn("Failed to record request audit entry",
				"user", claims.UserID, "method", method, "path", c.Path(), "error", recordErr)
		}
		return err
	}
}
