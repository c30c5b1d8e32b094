package transport

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/kursadbilgin/auth-gate/internal/observability"
)

// CorrelationID copies the request id assigned by the requestid middleware into
// the user context so services and the event publisher can tag their output.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := c.Locals("requestid").(string)
		if strings.TrimSpace(id) == "" {
			id = strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
		}
		if id != "" {
			c.SetUserContext(observability.WithCorrelationID(c.Context(), id))
		}
		return c.Next()
	}
}
