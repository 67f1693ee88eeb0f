package ledger

import "github.com/congo-pay/payroll_escrow/internal/balance"

// SeedBalance is a test helper that overwrites the balance for an account when
// using the in-memory ledger. A missing account is created with the denomination
// of funds.
func SeedBalance(l Ledger, code string, funds balance.WrappedBalance) {
	mem, ok := l.(*inMemoryLedger)
	if !ok {
		return
	}
	mem.mu.Lock()
	defer mem.mu.Unlock()
	acc, exists := mem.accounts[code]
	if !exists {
		acc = &account{denom: funds.Denom()}
		mem.accounts[code] = acc
	}
	acc.balance = funds.Clone()
}
