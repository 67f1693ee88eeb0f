package wallet

import (
	"time"

	"github.com/congo-pay/payroll_escrow/internal/balance"
)

// Wallet represents an escrow account owned by a party and backed by the ledger.
// A wallet holds exactly one denomination for its whole life.
type Wallet struct {
	ID          string
	OwnerID     string
	AccountCode string
	Denom       balance.Denom
	Status      string
	CreatedAt   time.Time
}

// Balance encapsulates escrowed funds for a wallet.
type Balance struct {
	WalletID string
	Funds    balance.WrappedBalance
	AsOf     time.Time
}
