package funding

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
	// ErrInvalidSender is returned for a receive hook without a token contract.
	ErrInvalidSender = errors.New("receive hook sender is required")
	// ErrInvalidRecipient is returned for a withdrawal without a destination.
	ErrInvalidRecipient = errors.New("withdrawal recipient is required")
	// ErrPayoutFailed wraps connector failures after the debit was reversed.
	ErrPayoutFailed = errors.New("payout failed")
	// ErrWithdrawalReversed is returned when a client transaction id names a
	// withdrawal that was already reversed. Retrying needs a new id.
	ErrWithdrawalReversed = errors.New("withdrawal was reversed after a payout failure")
)

// StatusPayoutSent marks a withdrawal accepted by the payout connector.
const StatusPayoutSent = "payout_sent"

// Service moves funds in and out of escrow wallets.
type Service struct {
	ledger   ledger.Ledger
	wallets  *wallet.Service
	payout   Payout
	notifier notification.Notifier
}

// NewService prepares a funding service. A nil payout falls back to StaticPayout.
func NewService(ledgerBackend ledger.Ledger, wallets *wallet.Service, payout Payout, notifier notification.Notifier) (*Service, error) {
	if wallets == nil {
		return nil, fmt.Errorf("wallet service is required")
	}
	if payout == nil {
		payout = StaticPayout{}
	}
	return &Service{ledger: ledgerBackend, wallets: wallets, payout: payout, notifier: notifier}, nil
}

// DepositInput captures a native coin deposit.
type DepositInput struct {
	WalletID   string
	ClientTxID string
	Coin       balance.Coin
}

// ReceiveInput captures a cw20 receive hook addressed to a wallet.
type ReceiveInput struct {
	WalletID   string
	ClientTxID string
	Msg        balance.ReceiveMsg
}

// WithdrawInput captures funds leaving escrow.
type WithdrawInput struct {
	WalletID   string
	ClientTxID string
	Recipient  string
	Funds      balance.WrappedBalance
}

// FundingResult represents the domain outcome of a funding operation.
type FundingResult struct {
	TransactionID   string
	Status          string
	WalletBalance   balance.WrappedBalance
	PayoutReference string
	CompletedAt     time.Time
}

// FundNative credits a native coin to the wallet.
func (s *Service) FundNative(ctx context.Context, input DepositInput) (FundingResult, error) {
	if input.Coin.Denom == "" {
		return FundingResult{}, balance.ErrInvalidDenom
	}
	return s.deposit(ctx, input.WalletID, input.ClientTxID, balance.NewNativeFromCoin(input.Coin))
}

// Receive credits the tokens announced by a cw20 receive hook. The sender
// is the token contract and becomes the issuer of the credited funds.
func (s *Service) Receive(ctx context.Context, input ReceiveInput) (FundingResult, error) {
	if input.Msg.Sender == "" {
		return FundingResult{}, ErrInvalidSender
	}
	return s.deposit(ctx, input.WalletID, input.ClientTxID, balance.FromReceive(input.Msg))
}

func (s *Service) deposit(ctx context.Context, walletID, clientTxID string, funds balance.WrappedBalance) (FundingResult, error) {
	if funds.IsEmpty() {
		return FundingResult{}, balance.ErrInvalidAmount
	}
	if clientTxID == "" {
		clientTxID = uuid.NewString()
	}

	w, err := s.wallets.Get(ctx, walletID)
	if err != nil {
		return FundingResult{}, err
	}

	posted, err := s.ledger.Deposit(ctx, w.AccountCode, clientTxID, funds)
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateTransaction) {
			return toResult(posted, ""), err
		}
		return FundingResult{}, err
	}

	s.notify(ctx, notification.KindDeposit, w.OwnerID, fmt.Sprintf("Wallet %s received %s", w.ID, funds))
	return toResult(posted, ""), nil
}

// Withdraw debits the wallet and hands the funds to the payout connector.
// A connector failure reverses the debit.
func (s *Service) Withdraw(ctx context.Context, input WithdrawInput) (FundingResult, error) {
	if input.Recipient == "" {
		return FundingResult{}, ErrInvalidRecipient
	}
	if input.Funds.IsEmpty() {
		return FundingResult{}, balance.ErrInvalidAmount
	}
	if input.ClientTxID == "" {
		input.ClientTxID = uuid.NewString()
	}

	w, err := s.wallets.Get(ctx, input.WalletID)
	if err != nil {
		return FundingResult{}, err
	}

	posted, err := s.ledger.Withdraw(ctx, w.AccountCode, input.ClientTxID, input.Funds)
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateTransaction) {
			if posted.Status == ledger.StatusReversed {
				return FundingResult{}, errors.Join(ErrPayoutFailed, ErrWithdrawalReversed)
			}
			return toResult(posted, ""), err
		}
		return FundingResult{}, err
	}

	receipt, err := s.payout.Send(ctx, PayoutOrder{WalletID: w.ID, Recipient: input.Recipient, Funds: input.Funds})
	if err != nil {
		if _, revErr := s.ledger.Reverse(ctx, w.AccountCode, ledger.KindWithdrawal, input.ClientTxID); revErr != nil {
			return FundingResult{}, errors.Join(ErrPayoutFailed, err, fmt.Errorf("reverse debit: %w", revErr))
		}
		return FundingResult{}, errors.Join(ErrPayoutFailed, err)
	}

	res := toResult(posted, receipt.Reference)
	res.Status = StatusPayoutSent
	s.notify(ctx, notification.KindWithdrawal, w.OwnerID, fmt.Sprintf("Wallet %s released %s to %s", w.ID, input.Funds, input.Recipient))
	return res, nil
}

func (s *Service) notify(ctx context.Context, kind, destination, body string) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Send(ctx, notification.Message{Kind: kind, Destination: destination, Body: body})
}

func toResult(posted ledger.PostingResult, reference string) FundingResult {
	return FundingResult{
		TransactionID:   posted.TransactionID,
		Status:          posted.Status,
		WalletBalance:   posted.Balance,
		PayoutReference: reference,
		CompletedAt:     time.Now().UTC(),
	}
}
