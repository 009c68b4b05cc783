package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/saldo-pay/saldo_pay/internal/auth"
)

// RegisterAuthRoutes wires registration and session endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, loginLimiter fiber.Handler) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", loginLimiter, h.Login)
	r.Post("/auth/logout", h.Logout)
}
