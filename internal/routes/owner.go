package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/payroll_escrow/internal/wallet"
)

// RegisterOwnerRoutes exposes the escrow wallet of an employer or employee.
func RegisterOwnerRoutes(r fiber.Router, wallets *wallet.Service) {
	r.Get("/owners/:ownerId/wallet", func(c *fiber.Ctx) error {
		w, err := wallets.GetByOwner(c.UserContext(), c.Params("ownerId"))
		if err != nil {
			if errors.Is(err, wallet.ErrNotFound) {
				return fiber.NewError(http.StatusNotFound, "wallet not found")
			}
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		bal, err := wallets.Balance(c.UserContext(), w.ID)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"id":           w.ID,
			"owner_id":     w.OwnerID,
			"account_code": w.AccountCode,
			"denom":        w.Denom,
			"status":       w.Status,
			"created_at":   w.CreatedAt,
			"balance":      bal.Funds,
			"as_of":        bal.AsOf,
		})
	})
}
