package transaction

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

const idempotencyKeyHeader = "Idempotency-Key"

// Handler exposes the posting and ledger-read endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a transaction handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type postRequest struct {
	CustomerID string  `json:"customerId"`
	Amount     float64 `json:"amount"`
	Type       string  `json:"type"`
	Status     string  `json:"status"`
}

// Post accepts a posting request and replies with the engine's payload.
// A replayed request answers 200 with the first call's exact bytes; a
// fresh posting answers 201.
func (h *Handler) Post(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}

	result, err := h.service.Post(c.UserContext(), PostInput{
		IdempotencyKey: c.Get(idempotencyKeyHeader),
		CustomerID:     req.CustomerID,
		Amount:         req.Amount,
		Type:           req.Type,
		Status:         req.Status,
	})
	if err != nil {
		return writeError(c, err)
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(status).Send(result.Payload)
}

// ListByCustomer returns a customer's transactions, newest first.
func (h *Handler) ListByCustomer(c *fiber.Ctx) error {
	transactions, err := h.service.ListByCustomer(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "ok", "data": transactions})
}

func writeError(c *fiber.Ctx, err error) error {
	var status int
	var message string
	switch {
	case errors.Is(err, ErrInvalidRequest):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrUnauthenticated):
		status, message = http.StatusUnauthorized, "Customer id is required"
	case errors.Is(err, ErrInsufficientFunds):
		status, message = http.StatusBadRequest, "Insufficient funds"
	case errors.Is(err, ErrCustomerNotFound):
		status, message = http.StatusNotFound, "Customer not found"
	case errors.Is(err, ErrNoTransactions):
		status, message = http.StatusNotFound, "No transactions found"
	case errors.Is(err, ErrStoreUnavailable):
		status, message = http.StatusServiceUnavailable, "Service temporarily unavailable"
	default:
		status, message = http.StatusInternalServerError, "Failed to create transaction"
	}
	return c.Status(status).JSON(fiber.Map{"status": "error", "message": message})
}
