package funding

import (
	"context"

	"github.com/google/uuid"

	"github.com/congo-pay/payroll_escrow/internal/balance"
)

// Payout releases escrowed funds to an external recipient once the ledger
// has debited the wallet.
type Payout interface {
	Send(ctx context.Context, order PayoutOrder) (PayoutReceipt, error)
}

// PayoutOrder describes funds leaving escrow.
type PayoutOrder struct {
	WalletID  string
	Recipient string
	Funds     balance.WrappedBalance
}

// PayoutReceipt captures the connector response.
type PayoutReceipt struct {
	Reference string
	Status    string
}

// StaticPayout accepts every order with a synthetic reference.
type StaticPayout struct{}

// Send approves the order.
func (StaticPayout) Send(_ context.Context, _ PayoutOrder) (PayoutReceipt, error) {
	return PayoutReceipt{Reference: uuid.NewString(), Status: "sent"}, nil
}
