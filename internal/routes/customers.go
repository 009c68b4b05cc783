package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/saldo-pay/saldo_pay/internal/customer"
	"github.com/saldo-pay/saldo_pay/internal/transaction"
)

// RegisterCustomerRoutes wires customer read endpoints, including the
// per-customer transaction history.
func RegisterCustomerRoutes(r fiber.Router, h *customer.Handler, tx *transaction.Handler) {
	r.Get("/customers/:id", h.Get)
	r.Get("/customers/:id/transactions", tx.ListByCustomer)
}
