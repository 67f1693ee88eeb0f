package payments

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/payroll_escrow/internal/balance"
	"github.com/congo-pay/payroll_escrow/internal/ledger"
	"github.com/congo-pay/payroll_escrow/internal/wallet"
)

// Handler exposes payment endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type transferRequest struct {
	FromWalletID string                 `json:"from_wallet_id"`
	ToWalletID   string                 `json:"to_wallet_id"`
	Funds        balance.WrappedBalance `json:"funds"`
	ClientTxID   string                 `json:"client_tx_id"`
	RequestorID  string                 `json:"requestor_id"`
}

// Transfer moves escrowed funds between two wallets.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.Transfer(c.UserContext(), TransferInput{
		FromWalletID:    req.FromWalletID,
		ToWalletID:      req.ToWalletID,
		Funds:           req.Funds,
		ClientTxID:      req.ClientTxID,
		RequestorUserID: req.RequestorID,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrDuplicateTransaction):
			return fiber.NewError(http.StatusConflict, "duplicate transaction")
		case errors.Is(err, ledger.ErrInsufficientFunds), errors.Is(err, ledger.ErrOverflow):
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, ErrNotOwner):
			return fiber.NewError(http.StatusForbidden, "not owner of source wallet")
		case errors.Is(err, wallet.ErrNotFound), errors.Is(err, ledger.ErrAccountNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ledger.ErrDenomMismatch),
			errors.Is(err, balance.ErrVariantMismatch),
			errors.Is(err, balance.ErrInvalidAmount),
			errors.Is(err, ErrSameWallet),
			errors.Is(err, ledger.ErrSameAccount):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"transaction_id": res.TransactionID,
		"from_balance":   res.FromBalance,
		"to_balance":     res.ToBalance,
		"completed_at":   res.CompletedAt,
	})
}
