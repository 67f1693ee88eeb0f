package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/congo-pay/payroll_escrow/internal/balance"
	"github.com/congo-pay/payroll_escrow/internal/ledger"
	"github.com/congo-pay/payroll_escrow/internal/notification"
	"github.com/congo-pay/payroll_escrow/internal/wallet"
)

var uatom = balance.NativeDenom("uatom")

func atoms(n uint64) balance.WrappedBalance {
	return balance.NewNative("uatom", balance.NewUint128(n))
}

func TestTransferSuccess(t *testing.T) {
	led := ledger.NewInMemory()
	walletSvc := wallet.NewService(wallet.NewMemoryRepository(), led)
	notifier := &notification.Recorder{}
	svc := NewService(led, walletSvc, notifier)

	ctx := context.Background()
	from, _ := walletSvc.Create(ctx, wallet.CreateInput{OwnerID: uuid.NewString(), Denom: uatom})
	to, _ := walletSvc.Create(ctx, wallet.CreateInput{OwnerID: uuid.NewString(), Denom: uatom})

	ledger.SeedBalance(led, from.AccountCode, atoms(10_000))

	res, err := svc.Transfer(ctx, TransferInput{FromWalletID: from.ID, ToWalletID: to.ID, Funds: atoms(2_000), ClientTxID: "abc", RequestorUserID: from.OwnerID})
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	if !res.FromBalance.Equal(atoms(8_000)) || !res.ToBalance.Equal(atoms(2_000)) {
		t.Fatalf("unexpected balances: from=%s to=%s", res.FromBalance, res.ToBalance)
	}

	msg, ok := notifier.Last()
	if !ok || msg.Kind != notification.KindTransfer || msg.Destination != to.OwnerID {
		t.Fatalf("expected notification to be sent, got %+v", msg)
	}

	if _, err := svc.Transfer(ctx, TransferInput{FromWalletID: from.ID, ToWalletID: to.ID, Funds: atoms(2_000), ClientTxID: "abc"}); !errors.Is(err, ledger.ErrDuplicateTransaction) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	led := ledger.NewInMemory()
	walletSvc := wallet.NewService(wallet.NewMemoryRepository(), led)
	svc := NewService(led, walletSvc, nil)

	ctx := context.Background()
	from, _ := walletSvc.Create(ctx, wallet.CreateInput{OwnerID: uuid.NewString(), Denom: uatom})
	to, _ := walletSvc.Create(ctx, wallet.CreateInput{OwnerID: uuid.NewString(), Denom: uatom})

	_, err := svc.Transfer(ctx, TransferInput{FromWalletID: from.ID, ToWalletID: to.ID, Funds: atoms(1_000), ClientTxID: "abc"})
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if !errors.Is(err, balance.ErrEmptyBalance) {
		t.Fatalf("expected empty balance cause, got %v", err)
	}
}

func TestTransferRejects(t *testing.T) {
	led := ledger.NewInMemory()
	walletSvc := wallet.NewService(wallet.NewMemoryRepository(), led)
	svc := NewService(led, walletSvc, nil)

	ctx := context.Background()
	from, _ := walletSvc.Create(ctx, wallet.CreateInput{OwnerID: uuid.NewString(), Denom: uatom})
	tokenWallet, _ := walletSvc.Create(ctx, wallet.CreateInput{OwnerID: uuid.NewString(), Denom: balance.TokenDenom("juno1tokenaddr")})
	ledger.SeedBalance(led, from.AccountCode, atoms(500))

	if _, err := svc.Transfer(ctx, TransferInput{FromWalletID: from.ID, ToWalletID: tokenWallet.ID, Funds: atoms(100)}); !errors.Is(err, ledger.ErrDenomMismatch) {
		t.Fatalf("expected denom mismatch, got %v", err)
	}
	if _, err := svc.Transfer(ctx, TransferInput{FromWalletID: from.ID, ToWalletID: tokenWallet.ID, Funds: atoms(100), RequestorUserID: uuid.NewString()}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected not owner, got %v", err)
	}
	if _, err := svc.Transfer(ctx, TransferInput{FromWalletID: from.ID, ToWalletID: from.ID, Funds: atoms(100)}); !errors.Is(err, ErrSameWallet) {
		t.Fatalf("expected same wallet error, got %v", err)
	}
	if _, err := svc.Transfer(ctx, TransferInput{FromWalletID: from.ID, ToWalletID: tokenWallet.ID}); !errors.Is(err, balance.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}

	funds, err := led.Balance(ctx, from.AccountCode)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !funds.Equal(atoms(500)) {
		t.Fatalf("source balance changed: %s", funds)
	}
}
