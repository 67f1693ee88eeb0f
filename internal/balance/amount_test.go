package balance

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUint128Bounds(t *testing.T) {
	top := MaxUint128()
	require.Equal(t, "340282366920938463463374607431768211455", top.String())

	parsed, err := ParseUint128(top.String())
	require.NoError(t, err)
	require.True(t, parsed.Eq(top))

	_, err = ParseUint128("340282366920938463463374607431768211456")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseUint128("-1")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseUint128("12abc")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseUint128("")
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCheckedAddOverflow(t *testing.T) {
	top := MaxUint128()

	sum, err := top.CheckedAdd(NewUint128(0))
	require.NoError(t, err)
	require.True(t, sum.Eq(top))

	_, err = top.CheckedAdd(NewUint128(1))
	var oe *OverflowError
	require.True(t, errors.As(err, &oe))
	require.Equal(t, OpAdd, oe.Operation)
	require.True(t, oe.OperandA.Eq(top))
	require.True(t, oe.OperandB.Eq(NewUint128(1)))
	require.Equal(t, "cannot add with 340282366920938463463374607431768211455 and 1", err.Error())
}

func TestCheckedSubUnderflow(t *testing.T) {
	diff, err := NewUint128(10).CheckedSub(NewUint128(10))
	require.NoError(t, err)
	require.True(t, diff.IsZero())

	_, err = NewUint128(10).CheckedSub(NewUint128(11))
	require.True(t, IsOverflow(err, OpSub))
	require.Equal(t, "cannot sub with 10 and 11", err.Error())
}

func TestUint128JSON(t *testing.T) {
	a := MustParseUint128("18446744073709551616") // 2^64
	require.False(t, a.IsUint64())
	require.Equal(t, 0, a.BigInt().Cmp(new(big.Int).Lsh(big.NewInt(1), 64)))

	out, err := json.Marshal(a)
	require.NoError(t, err)
	require.Equal(t, `"18446744073709551616"`, string(out))

	var back Uint128
	require.NoError(t, json.Unmarshal([]byte(`"42"`), &back))
	require.Equal(t, uint64(42), back.Uint64())

	require.NoError(t, json.Unmarshal([]byte(`7`), &back))
	require.Equal(t, uint64(7), back.Uint64())

	require.ErrorIs(t, json.Unmarshal([]byte(`"-3"`), &back), ErrInvalidAmount)
}

func TestUint128JSONNullKeepsValue(t *testing.T) {
	a := NewUint128(42)
	require.NoError(t, json.Unmarshal([]byte(`null`), &a))
	require.Equal(t, uint64(42), a.Uint64())

	var req struct {
		Amount Uint128 `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount":null}`), &req))
	require.True(t, req.Amount.IsZero())
}
