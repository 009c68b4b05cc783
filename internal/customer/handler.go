package customer

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes customer endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a customer handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	WalletBalance int64  `json:"walletBalance"`
}

// Create registers a customer record.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "name and email are required"})
	}
	if req.WalletBalance < 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "walletBalance must not be negative"})
	}

	cust, err := h.service.Create(c.UserContext(), CreateInput{
		Name:          req.Name,
		Email:         req.Email,
		WalletBalance: req.WalletBalance,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return c.Status(http.StatusConflict).JSON(fiber.Map{"status": "error", "message": "Email already registered"})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to create customer"})
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"status": "ok", "data": cust})
}

// Get fetches a customer by id.
func (h *Handler) Get(c *fiber.Ctx) error {
	cust, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Customer not found"})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch customer"})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "ok", "data": cust})
}
