package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/payroll_escrow/internal/payments"
)

// RegisterPaymentRoutes wires wallet-to-wallet transfers.
func RegisterPaymentRoutes(r fiber.Router, h *payments.Handler) {
	r.Post("/transfers", h.Transfer)
}
