package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/congo-pay/payroll_escrow/internal/balance"
	"github.com/congo-pay/payroll_escrow/internal/ledger"
	"github.com/congo-pay/payroll_escrow/internal/notification"
	"github.com/congo-pay/payroll_escrow/internal/wallet"
)

var (
	// ErrNotOwner indicates the caller does not own the source wallet.
	ErrNotOwner = errors.New("not owner of source wallet")
	// ErrSameWallet is returned when source and destination coincide.
	ErrSameWallet = errors.New("source and destination wallets must differ")
)

// Service wires ledger postings for wallet-to-wallet escrow transfers.
type Service struct {
	ledger        ledger.Ledger
	walletService *wallet.Service
	notifier      notification.Notifier
}

// NewService constructs a payment service.
func NewService(ledger ledger.Ledger, walletService *wallet.Service, notifier notification.Notifier) *Service {
	return &Service{ledger: ledger, walletService: walletService, notifier: notifier}
}

// TransferInput captures the data needed to move funds between wallets.
type TransferInput struct {
	FromWalletID    string
	ToWalletID      string
	Funds           balance.WrappedBalance
	ClientTxID      string
	RequestorUserID string
}

// TransferResult describes the ledger outcome of a transfer.
type TransferResult struct {
	TransactionID string
	FromBalance   balance.WrappedBalance
	ToBalance     balance.WrappedBalance
	CompletedAt   time.Time
}

// Transfer debits the source wallet and credits the destination in one
// ledger transaction. Both wallets must hold the denomination of funds.
func (s *Service) Transfer(ctx context.Context, input TransferInput) (TransferResult, error) {
	if input.Funds.IsEmpty() {
		return TransferResult{}, balance.ErrInvalidAmount
	}
	if input.FromWalletID == input.ToWalletID {
		return TransferResult{}, ErrSameWallet
	}
	if input.ClientTxID == "" {
		input.ClientTxID = uuid.New().String()
	}

	fromWallet, err := s.walletService.Get(ctx, input.FromWalletID)
	if err != nil {
		return TransferResult{}, err
	}
	if input.RequestorUserID != "" && fromWallet.OwnerID != input.RequestorUserID {
		return TransferResult{}, ErrNotOwner
	}
	toWallet, err := s.walletService.Get(ctx, input.ToWalletID)
	if err != nil {
		return TransferResult{}, err
	}

	res, err := s.ledger.Transfer(ctx, fromWallet.AccountCode, toWallet.AccountCode, input.ClientTxID, input.Funds)
	if err != nil {
		return TransferResult{}, err
	}

	outcome := TransferResult{
		TransactionID: res.TransactionID,
		FromBalance:   res.FromBalance,
		ToBalance:     res.ToBalance,
		CompletedAt:   time.Now().UTC(),
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindTransfer,
			Destination: toWallet.OwnerID,
			Body:        fmt.Sprintf("You received %s from wallet %s", input.Funds, input.FromWalletID),
		})
	}

	return outcome, nil
}
