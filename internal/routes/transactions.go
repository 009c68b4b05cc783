package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/saldo-pay/saldo_pay/internal/transaction"
)

// RegisterTransactionRoutes wires the posting endpoint.
func RegisterTransactionRoutes(r fiber.Router, h *transaction.Handler) {
	r.Post("/transactions", h.Post)
}
