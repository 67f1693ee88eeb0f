package balance

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBalance is returned when subtracting from a key that has no
	// entry, and (through VariantMismatchError) when a native-only or
	// token-only operation targets the other variant.
	ErrEmptyBalance = errors.New("empty balance")

	// ErrVariantMismatch identifies a mutation attempted against the wrong
	// balance variant.
	ErrVariantMismatch = errors.New("balance variant mismatch")

	// ErrDenomMismatch is returned when a native balance would end up holding
	// more than one denomination.
	ErrDenomMismatch = errors.New("native balance holds a different denomination")

	// ErrIssuerMismatch is returned when a token balance would end up holding
	// more than one issuer.
	ErrIssuerMismatch = errors.New("token balance holds a different issuer")

	// ErrInvalidAmount reports an amount that cannot be represented as Uint128.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidDenom reports a coin without a denomination or a token
	// without a contract address.
	ErrInvalidDenom = errors.New("denomination must not be empty")
)

// OverflowOperation names the arithmetic operation that overflowed.
type OverflowOperation uint8

const (
	OpAdd OverflowOperation = iota
	OpSub
)

func (o OverflowOperation) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// OverflowError is returned by checked arithmetic when the result would
// leave the Uint128 range. Subtraction below zero is reported with OpSub.
type OverflowError struct {
	Operation OverflowOperation
	OperandA  Uint128
	OperandB  Uint128
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("cannot %s with %s and %s", e.Operation, e.OperandA, e.OperandB)
}

// IsOverflow reports whether err carries an *OverflowError for op.
func IsOverflow(err error, op OverflowOperation) bool {
	var oe *OverflowError
	return errors.As(err, &oe) && oe.Operation == op
}

// VariantMismatchError is returned when a mutation expects one variant and
// the balance holds the other.
type VariantMismatchError struct {
	Want Kind
	Have Kind
}

func (e *VariantMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s balance, have %s", ErrEmptyBalance, e.Want, e.Have)
}

// Is makes the error match both ErrEmptyBalance and ErrVariantMismatch.
func (e *VariantMismatchError) Is(target error) bool {
	return target == ErrEmptyBalance || target == ErrVariantMismatch
}
