package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/congo-pay/payroll_escrow/internal/balance"
	"github.com/congo-pay/payroll_escrow/internal/ledger"
)

func TestServiceCreateAndBalance(t *testing.T) {
	repo := NewMemoryRepository()
	led := ledger.NewInMemory()
	svc := NewService(repo, led)

	ctx := context.Background()
	ownerID := uuid.NewString()
	wallet, err := svc.Create(ctx, CreateInput{OwnerID: ownerID, Denom: balance.NativeDenom("uatom")})
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}

	fetched, err := svc.Get(ctx, wallet.ID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if fetched.ID != wallet.ID || fetched.OwnerID != ownerID {
		t.Fatalf("expected wallet ID %s, got %s", wallet.ID, fetched.ID)
	}

	empty, err := svc.Balance(ctx, wallet.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !empty.Funds.IsNative() || !empty.Funds.Amount().IsZero() {
		t.Fatalf("expected empty native balance, got %s", empty.Funds)
	}

	ledger.SeedBalance(led, wallet.AccountCode, balance.NewNative("uatom", balance.NewUint128(2_500)))

	bal, err := svc.Balance(ctx, wallet.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if got := bal.Funds.Amount().Uint64(); got != 2_500 {
		t.Fatalf("expected balance 2500, got %d", got)
	}
}

func TestServiceCreateTokenWallet(t *testing.T) {
	svc := NewService(NewMemoryRepository(), ledger.NewInMemory())
	ctx := context.Background()
	ownerID := uuid.NewString()

	wallet, err := svc.Create(ctx, CreateInput{OwnerID: ownerID, Denom: balance.TokenDenom("juno1tokenaddr")})
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}

	bal, err := svc.Balance(ctx, wallet.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	tok, ok := bal.Funds.Token()
	if !ok || tok.Address != "juno1tokenaddr" || !tok.Amount.IsZero() {
		t.Fatalf("expected empty token balance, got %s", bal.Funds)
	}

	byOwner, err := svc.GetByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("get by owner: %v", err)
	}
	if byOwner.ID != wallet.ID {
		t.Fatalf("expected wallet %s, got %s", wallet.ID, byOwner.ID)
	}
}

func TestServiceCreateRejectsInput(t *testing.T) {
	svc := NewService(NewMemoryRepository(), ledger.NewInMemory())
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{OwnerID: "not-a-uuid", Denom: balance.NativeDenom("uatom")}); err == nil {
		t.Fatal("expected owner validation error")
	}
	if _, err := svc.Create(ctx, CreateInput{OwnerID: uuid.NewString()}); !errors.Is(err, ErrInvalidDenom) {
		t.Fatalf("expected invalid denom, got %v", err)
	}
	if _, err := svc.GetByOwner(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
