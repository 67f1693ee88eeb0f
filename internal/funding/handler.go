package funding

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/payroll_escrow/internal/balance"
	"github.com/congo-pay/payroll_escrow/internal/ledger"
	"github.com/congo-pay/payroll_escrow/internal/wallet"
)

// Handler exposes HTTP endpoints for escrow funding flows.
type Handler struct {
	service *Service
}

// NewHandler constructs a funding handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Deposit credits a native coin to the wallet.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	var req DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.FundNative(c.UserContext(), DepositInput{
		WalletID:   c.Params("walletId"),
		ClientTxID: req.ClientTxID,
		Coin:       balance.Coin{Denom: req.Denom, Amount: req.Amount},
	})
	return respond(c, result, err)
}

// Receive accepts a cw20 receive hook for the wallet.
func (h *Handler) Receive(c *fiber.Ctx) error {
	var req ReceiveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Receive(c.UserContext(), ReceiveInput{
		WalletID:   c.Params("walletId"),
		ClientTxID: req.ClientTxID,
		Msg:        req.ReceiveMsg,
	})
	return respond(c, result, err)
}

// Withdraw releases funds to an external recipient.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var req WithdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Withdraw(c.UserContext(), WithdrawInput{
		WalletID:   c.Params("walletId"),
		ClientTxID: req.ClientTxID,
		Recipient:  req.Recipient,
		Funds:      req.Funds,
	})
	return respond(c, result, err)
}

func respond(c *fiber.Ctx, result FundingResult, err error) error {
	if err == nil {
		return c.Status(http.StatusCreated).JSON(toResponse(result))
	}
	switch {
	case errors.Is(err, ledger.ErrDuplicateTransaction):
		return c.Status(http.StatusOK).JSON(toResponse(result))
	case errors.Is(err, wallet.ErrNotFound), errors.Is(err, ledger.ErrAccountNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds), errors.Is(err, ledger.ErrOverflow):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrPayoutFailed):
		return fiber.NewError(http.StatusBadGateway, err.Error())
	case errors.Is(err, ledger.ErrDenomMismatch),
		errors.Is(err, balance.ErrVariantMismatch),
		errors.Is(err, balance.ErrDenomMismatch),
		errors.Is(err, balance.ErrIssuerMismatch),
		errors.Is(err, balance.ErrInvalidAmount),
		errors.Is(err, balance.ErrInvalidDenom),
		errors.Is(err, ErrInvalidSender),
		errors.Is(err, ErrInvalidRecipient):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}

func toResponse(result FundingResult) FundingResponse {
	return FundingResponse{
		TransactionID:   result.TransactionID,
		Status:          result.Status,
		WalletBalance:   result.WalletBalance,
		PayoutReference: result.PayoutReference,
		CompletedAt:     result.CompletedAt,
	}
}
