package ledger

import (
	"context"
	"sync"

	"github.com/congo-pay/payroll_escrow/internal/balance"
)

type account struct {
	denom   balance.Denom
	balance balance.WrappedBalance
}

type posting struct {
	code   string
	funds  balance.WrappedBalance
	result PostingResult
}

type inMemoryLedger struct {
	mu        sync.RWMutex
	accounts  map[string]*account
	postings  map[string]*posting
	transfers map[string]TransferResult
}

// NewInMemory creates a concurrency-safe in-memory ledger useful for unit tests
// and for running without a database in development.
func NewInMemory() Ledger {
	return &inMemoryLedger{
		accounts:  make(map[string]*account),
		postings:  make(map[string]*posting),
		transfers: make(map[string]TransferResult),
	}
}

func (l *inMemoryLedger) EnsureAccount(_ context.Context, code string, denom balance.Denom) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, exists := l.accounts[code]; exists {
		if existing.denom != denom {
			return ErrDenomMismatch
		}
		return nil
	}
	l.accounts[code] = &account{denom: denom, balance: balance.Zero(denom)}
	return nil
}

func (l *inMemoryLedger) Balance(_ context.Context, code string) (balance.WrappedBalance, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	acc, exists := l.accounts[code]
	if !exists {
		return balance.WrappedBalance{}, ErrAccountNotFound
	}
	return acc.balance.Clone(), nil
}

func (l *inMemoryLedger) Deposit(_ context.Context, code, clientTxID string, funds balance.WrappedBalance) (PostingResult, error) {
	return l.post(KindDeposit, code, clientTxID, funds, credit)
}

func (l *inMemoryLedger) Withdraw(_ context.Context, code, clientTxID string, funds balance.WrappedBalance) (PostingResult, error) {
	return l.post(KindWithdrawal, code, clientTxID, funds, debit)
}

func (l *inMemoryLedger) post(kind, code, clientTxID string, funds balance.WrappedBalance, apply applyFunc) (PostingResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := txKey(kind, clientTxID)
	if p, exists := l.postings[key]; exists {
		return p.result, ErrDuplicateTransaction
	}

	acc, ok := l.accounts[code]
	if !ok {
		return PostingResult{}, ErrAccountNotFound
	}
	next, err := apply(acc.balance, acc.denom, funds)
	if err != nil {
		return PostingResult{}, err
	}
	acc.balance = next

	res := PostingResult{TransactionID: key, Balance: next.Clone(), Status: StatusCompleted}
	l.postings[key] = &posting{code: code, funds: funds.Clone(), result: res}
	return res, nil
}

func (l *inMemoryLedger) Reverse(_ context.Context, code, kind, clientTxID string) (PostingResult, error) {
	apply, _, err := undo(kind)
	if err != nil {
		return PostingResult{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := txKey(kind, clientTxID)
	orig, exists := l.postings[key]
	if !exists || orig.code != code {
		return PostingResult{}, ErrTransactionNotFound
	}
	revKey := txKey(KindReversal, key)
	if orig.result.Status == StatusReversed {
		return l.postings[revKey].result, ErrDuplicateTransaction
	}

	acc, ok := l.accounts[code]
	if !ok {
		return PostingResult{}, ErrAccountNotFound
	}
	next, err := apply(acc.balance, acc.denom, orig.funds)
	if err != nil {
		return PostingResult{}, err
	}
	acc.balance = next
	orig.result.Status = StatusReversed

	res := PostingResult{TransactionID: revKey, Balance: next.Clone(), Status: StatusCompleted}
	l.postings[revKey] = &posting{code: code, funds: orig.funds, result: res}
	return res, nil
}

func (l *inMemoryLedger) Transfer(_ context.Context, fromCode, toCode, clientTxID string, funds balance.WrappedBalance) (TransferResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := txKey(KindTransfer, clientTxID)
	if res, exists := l.transfers[key]; exists {
		return res, ErrDuplicateTransaction
	}
	if fromCode == toCode {
		return TransferResult{}, ErrSameAccount
	}

	from, ok := l.accounts[fromCode]
	if !ok {
		return TransferResult{}, ErrAccountNotFound
	}
	to, ok := l.accounts[toCode]
	if !ok {
		return TransferResult{}, ErrAccountNotFound
	}

	fromNext, err := debit(from.balance, from.denom, funds)
	if err != nil {
		return TransferResult{}, err
	}
	toNext, err := credit(to.balance, to.denom, funds)
	if err != nil {
		return TransferResult{}, err
	}

	// both sides computed, commit together
	from.balance = fromNext
	to.balance = toNext

	res := TransferResult{
		TransactionID: key,
		FromBalance:   from.balance.Clone(),
		ToBalance:     to.balance.Clone(),
	}
	l.transfers[key] = res
	return res, nil
}
