package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/congo-pay/payroll_escrow/internal/balance"
	"github.com/congo-pay/payroll_escrow/internal/ledger"
)

const (
	statusActive = "active"
)

// ErrInvalidDenom is returned when a wallet is created without a usable denomination.
var ErrInvalidDenom = errors.New("invalid denomination")

// Service exposes wallet operations backed by the ledger.
type Service struct {
	repo   Repository
	ledger ledger.Ledger
}

// NewService builds a wallet service instance.
func NewService(repo Repository, ledger ledger.Ledger) *Service {
	return &Service{repo: repo, ledger: ledger}
}

// CreateInput captures data required to create a wallet.
type CreateInput struct {
	OwnerID string
	Denom   balance.Denom
}

// Create provisions a wallet and its ledger account.
func (s *Service) Create(ctx context.Context, input CreateInput) (Wallet, error) {
	if _, err := uuid.Parse(input.OwnerID); err != nil {
		return Wallet{}, err
	}
	if input.Denom.ID == "" {
		return Wallet{}, ErrInvalidDenom
	}

	walletID := uuid.New().String()
	accountCode := fmt.Sprintf("escrow:%s", walletID)

	if err := s.ledger.EnsureAccount(ctx, accountCode, input.Denom); err != nil {
		return Wallet{}, err
	}

	wallet := Wallet{
		ID:          walletID,
		OwnerID:     input.OwnerID,
		AccountCode: accountCode,
		Denom:       input.Denom,
		Status:      statusActive,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, wallet); err != nil {
		return Wallet{}, err
	}

	return wallet, nil
}

// Get retrieves wallet metadata.
func (s *Service) Get(ctx context.Context, id string) (Wallet, error) {
	return s.repo.Get(ctx, id)
}

// GetByOwner returns the owner's first wallet.
func (s *Service) GetByOwner(ctx context.Context, ownerID string) (Wallet, error) {
	ws, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return Wallet{}, err
	}
	if len(ws) == 0 {
		return Wallet{}, ErrNotFound
	}
	return ws[0], nil
}

// Balance returns the escrowed funds for the wallet.
func (s *Service) Balance(ctx context.Context, id string) (Balance, error) {
	wallet, err := s.repo.Get(ctx, id)
	if err != nil {
		return Balance{}, err
	}
	funds, err := s.ledger.Balance(ctx, wallet.AccountCode)
	if err != nil {
		return Balance{}, err
	}
	return Balance{WalletID: wallet.ID, Funds: funds, AsOf: time.Now().UTC()}, nil
}
