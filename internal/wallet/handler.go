package wallet

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/payroll_escrow/internal/balance"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	OwnerID string        `json:"owner_id"`
	Denom   balance.Denom `json:"denom"`
}

type walletResponse struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"owner_id"`
	AccountCode string        `json:"account_code"`
	Denom       balance.Denom `json:"denom"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Create provisions an escrow wallet.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	wallet, err := h.service.Create(c.UserContext(), CreateInput{OwnerID: req.OwnerID, Denom: req.Denom})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(walletResponse{
		ID:          wallet.ID,
		OwnerID:     wallet.OwnerID,
		AccountCode: wallet.AccountCode,
		Denom:       wallet.Denom,
		Status:      wallet.Status,
		CreatedAt:   wallet.CreatedAt,
	})
}

// Balance returns the wallet balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	walletID := c.Params("walletId")
	bal, err := h.service.Balance(c.UserContext(), walletID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"wallet_id": walletID,
		"balance":   bal.Funds,
		"amount":    bal.Funds.Amount(),
		"timestamp": bal.AsOf,
	})
}
