package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/payroll_escrow/internal/funding"
)

// RegisterFundingRoutes wires escrow deposit, cw20 receive and withdrawal endpoints.
func RegisterFundingRoutes(r fiber.Router, h *funding.Handler) {
	r.Post("/wallets/:walletId/deposits", h.Deposit)
	r.Post("/wallets/:walletId/receive", h.Receive)
	r.Post("/wallets/:walletId/withdrawals", h.Withdraw)
}
