package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/congo-pay/payroll_escrow/internal/balance"
)

var (
	// ErrInsufficientFunds occurs when the source account lacks the balance
	// to cover a requested debit. The underlying balance error stays wrapped.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDuplicateTransaction indicates the provided client transaction identifier
	// already exists and therefore the operation should be treated as idempotent.
	ErrDuplicateTransaction = errors.New("duplicate transaction")

	// ErrAccountNotFound is returned for postings against unknown account codes.
	ErrAccountNotFound = errors.New("account not found")

	// ErrDenomMismatch is returned when funds are not in the account's denomination.
	ErrDenomMismatch = errors.New("funds denomination does not match account")

	// ErrOverflow is returned when a credit would exceed the amount range.
	ErrOverflow = errors.New("balance overflow")

	// ErrSameAccount is returned for a transfer whose source and destination
	// are the same account.
	ErrSameAccount = errors.New("transfer source and destination are the same account")

	// ErrTransactionNotFound is returned when reversing a posting that was
	// never recorded for the account.
	ErrTransactionNotFound = errors.New("transaction not found")
)

const (
	KindDeposit    = "deposit"
	KindWithdrawal = "withdrawal"
	KindTransfer   = "transfer"
	KindReversal   = "reversal"

	// StatusCompleted represents a committed posting.
	StatusCompleted = "completed"
	// StatusReversed marks a posting whose effect was undone by a reversal.
	StatusReversed = "reversed"
)

// PostingResult captures the outcome of a single-account posting.
type PostingResult struct {
	TransactionID string
	Balance       balance.WrappedBalance
	Status        string
}

// TransferResult captures the outcome of a ledger transfer.
type TransferResult struct {
	TransactionID string
	FromBalance   balance.WrappedBalance
	ToBalance     balance.WrappedBalance
}

// Ledger defines the contract implemented by escrow backends (e.g. Postgres).
// Every account holds one balance in the denomination fixed at creation.
type Ledger interface {
	EnsureAccount(ctx context.Context, code string, denom balance.Denom) error
	Balance(ctx context.Context, code string) (balance.WrappedBalance, error)
	Deposit(ctx context.Context, code, clientTxID string, funds balance.WrappedBalance) (PostingResult, error)
	Withdraw(ctx context.Context, code, clientTxID string, funds balance.WrappedBalance) (PostingResult, error)
	Transfer(ctx context.Context, fromCode, toCode, clientTxID string, funds balance.WrappedBalance) (TransferResult, error)
	// Reverse undoes the deposit or withdrawal recorded under (kind, clientTxID)
	// on the account and marks it StatusReversed. Replaying the original
	// posting afterwards returns the reversed result with ErrDuplicateTransaction.
	Reverse(ctx context.Context, code, kind, clientTxID string) (PostingResult, error)
}

type applyFunc func(current balance.WrappedBalance, denom balance.Denom, funds balance.WrappedBalance) (balance.WrappedBalance, error)

// credit adds funds to a copy of current and returns the copy.
func credit(current balance.WrappedBalance, denom balance.Denom, funds balance.WrappedBalance) (balance.WrappedBalance, error) {
	if err := checkFunds(denom, funds); err != nil {
		return balance.WrappedBalance{}, err
	}
	next := current.Clone()
	if err := next.CheckedAdd(funds); err != nil {
		if balance.IsOverflow(err, balance.OpAdd) {
			return balance.WrappedBalance{}, errors.Join(ErrOverflow, err)
		}
		return balance.WrappedBalance{}, err
	}
	return next, nil
}

// debit subtracts funds from a copy of current and returns the copy.
func debit(current balance.WrappedBalance, denom balance.Denom, funds balance.WrappedBalance) (balance.WrappedBalance, error) {
	if err := checkFunds(denom, funds); err != nil {
		return balance.WrappedBalance{}, err
	}
	next := current.Clone()
	if err := next.CheckedSub(funds); err != nil {
		if balance.IsOverflow(err, balance.OpSub) || errors.Is(err, balance.ErrEmptyBalance) {
			return balance.WrappedBalance{}, errors.Join(ErrInsufficientFunds, err)
		}
		return balance.WrappedBalance{}, err
	}
	return next, nil
}

// undo returns the posting that cancels a posting of the given kind.
func undo(kind string) (applyFunc, string, error) {
	switch kind {
	case KindDeposit:
		return debit, "debit", nil
	case KindWithdrawal:
		return credit, "credit", nil
	default:
		return nil, "", fmt.Errorf("%s postings cannot be reversed", kind)
	}
}

func checkFunds(denom balance.Denom, funds balance.WrappedBalance) error {
	if funds.IsEmpty() {
		return balance.ErrInvalidAmount
	}
	if !denom.Matches(funds) {
		return ErrDenomMismatch
	}
	return nil
}

func txKey(kind, clientTxID string) string {
	return kind + ":" + clientTxID
}
