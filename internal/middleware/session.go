package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/saldo-pay/saldo_pay/internal/auth"
)

// SessionGuard requires a valid bearer session token and stores the
// resolved customer id in request locals.
func SessionGuard(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := auth.BearerToken(c)
		if token == "" {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		customerID, err := svc.Verify(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid or expired session")
		}
		c.Locals("customer_id", customerID)
		return c.Next()
	}
}
