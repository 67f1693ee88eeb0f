package balance

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// Uint128 is an unsigned 128-bit token amount.
type Uint128 struct {
	v uint256.Int
}

var maxUint128 = func() uint256.Int {
	var m uint256.Int
	m.Lsh(uint256.NewInt(1), 128)
	m.SubUint64(&m, 1)
	return m
}()

// NewUint128 creates an amount from a uint64.
func NewUint128(x uint64) Uint128 {
	var a Uint128
	a.v.SetUint64(x)
	return a
}

// MaxUint128 returns 2^128-1.
func MaxUint128() Uint128 {
	return Uint128{v: maxUint128}
}

// ParseUint128 parses a base-10 amount.
func ParseUint128(s string) (Uint128, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Uint128{}, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}
	b, ok := new(big.Int).SetString(s, 10)
	if !ok || b.Sign() < 0 {
		return Uint128{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return FromBig(b)
}

// FromBig converts a non-negative big.Int that fits in 128 bits.
func FromBig(b *big.Int) (Uint128, error) {
	if b == nil {
		return Uint128{}, nil
	}
	if b.Sign() < 0 {
		return Uint128{}, fmt.Errorf("%w: negative value %s", ErrInvalidAmount, b)
	}
	v, overflow := uint256.FromBig(b)
	if overflow || v.Gt(&maxUint128) {
		return Uint128{}, fmt.Errorf("%w: %s exceeds 128 bits", ErrInvalidAmount, b)
	}
	return Uint128{v: *v}, nil
}

// MustParseUint128 is ParseUint128 that panics on error. Intended for tests
// and constants.
func MustParseUint128(s string) Uint128 {
	a, err := ParseUint128(s)
	if err != nil {
		panic(err)
	}
	return a
}

// CheckedAdd returns a+b, or an *OverflowError if the sum does not fit in
// 128 bits.
func (a Uint128) CheckedAdd(b Uint128) (Uint128, error) {
	var sum uint256.Int
	// operands are below 2^128 so the 256-bit sum never wraps
	sum.Add(&a.v, &b.v)
	if sum.Gt(&maxUint128) {
		return Uint128{}, &OverflowError{Operation: OpAdd, OperandA: a, OperandB: b}
	}
	return Uint128{v: sum}, nil
}

// CheckedSub returns a-b, or an *OverflowError if b > a.
func (a Uint128) CheckedSub(b Uint128) (Uint128, error) {
	var diff uint256.Int
	if _, underflow := diff.SubOverflow(&a.v, &b.v); underflow {
		return Uint128{}, &OverflowError{Operation: OpSub, OperandA: a, OperandB: b}
	}
	return Uint128{v: diff}, nil
}

// Cmp compares a and b and returns -1, 0 or +1.
func (a Uint128) Cmp(b Uint128) int {
	return a.v.Cmp(&b.v)
}

// Eq reports whether a == b.
func (a Uint128) Eq(b Uint128) bool {
	return a.v.Eq(&b.v)
}

func (a Uint128) IsZero() bool {
	return a.v.IsZero()
}

// IsUint64 reports whether the amount fits in a uint64.
func (a Uint128) IsUint64() bool {
	return a.v.IsUint64()
}

// Uint64 returns the low 64 bits. Only meaningful when IsUint64 is true.
func (a Uint128) Uint64() uint64 {
	return a.v.Uint64()
}

// BigInt returns the amount as a new big.Int.
func (a Uint128) BigInt() *big.Int {
	return a.v.ToBig()
}

// String returns the base-10 representation.
func (a Uint128) String() string {
	return a.v.ToBig().String()
}

func (a Uint128) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Uint128) UnmarshalText(text []byte) error {
	v, err := ParseUint128(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// MarshalJSON encodes the amount as a quoted decimal string.
func (a Uint128) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a quoted decimal string or a bare JSON integer.
// A JSON null leaves the amount unchanged.
func (a *Uint128) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	return a.UnmarshalText([]byte(s))
}
