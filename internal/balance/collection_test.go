package balance

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var maxBig = MaxUint128().BigInt()

func genAmount() *rapid.Generator[Uint128] {
	return rapid.Custom(func(t *rapid.T) Uint128 {
		if rapid.Bool().Draw(t, "small") {
			return NewUint128(rapid.Uint64Range(0, 1_000).Draw(t, "lo"))
		}
		hi := new(big.Int).SetUint64(rapid.Uint64().Draw(t, "hi"))
		lo := new(big.Int).SetUint64(rapid.Uint64().Draw(t, "lo"))
		b := new(big.Int).Or(new(big.Int).Lsh(hi, 64), lo)
		a, err := FromBig(b)
		if err != nil {
			t.Fatalf("amount generator: %v", err)
		}
		return a
	})
}

func genCoin() *rapid.Generator[Coin] {
	return rapid.Custom(func(t *rapid.T) Coin {
		return Coin{
			Denom:  rapid.SampledFrom([]string{"atom", "osmo", "juno"}).Draw(t, "denom"),
			Amount: genAmount().Draw(t, "amount"),
		}
	})
}

func requireWellFormed(t require.TestingT, c *NativeCoins) {
	seen := map[string]bool{}
	for _, e := range c.Entries() {
		require.False(t, seen[e.Denom], "duplicate entry %s", e.Denom)
		seen[e.Denom] = true
		require.False(t, e.Amount.IsZero(), "zero entry %s left in collection", e.Denom)
	}
}

func TestFindCheckedAddInsertsAndMerges(t *testing.T) {
	c, err := NewNativeCoins()
	require.NoError(t, err)

	require.NoError(t, c.FindCheckedAdd(NewCoin("atom", 100)))
	require.NoError(t, c.FindCheckedAdd(NewCoin("osmo", 5)))
	require.NoError(t, c.FindCheckedAdd(NewCoin("atom", 20)))

	require.Equal(t, 2, c.Len())
	require.Equal(t, uint64(120), c.AmountOf("atom").Uint64())
	require.Equal(t, uint64(5), c.AmountOf("osmo").Uint64())
	require.True(t, c.AmountOf("juno").IsZero())
}

func TestFindCheckedAddZeroDeltaDoesNotInsert(t *testing.T) {
	c, err := NewNativeCoins()
	require.NoError(t, err)
	require.NoError(t, c.FindCheckedAdd(NewCoin("atom", 0)))
	require.Equal(t, 0, c.Len())
}

func TestFindCheckedAddOverflowLeavesEntry(t *testing.T) {
	c, err := NewNativeCoins(NewCoin("atom", 100))
	require.NoError(t, err)

	delta, err := MaxUint128().CheckedSub(NewUint128(50))
	require.NoError(t, err)

	err = c.FindCheckedAdd(Coin{Denom: "atom", Amount: delta})
	require.True(t, IsOverflow(err, OpAdd))
	require.Equal(t, uint64(100), c.AmountOf("atom").Uint64())
}

func TestFindCheckedSub(t *testing.T) {
	c, err := NewNativeCoins(NewCoin("atom", 100), NewCoin("osmo", 7), NewCoin("juno", 3))
	require.NoError(t, err)

	t.Run("missing key", func(t *testing.T) {
		require.ErrorIs(t, c.FindCheckedSub(NewCoin("uusd", 1)), ErrEmptyBalance)
	})

	t.Run("underflow", func(t *testing.T) {
		err := c.FindCheckedSub(NewCoin("osmo", 8))
		var oe *OverflowError
		require.True(t, errors.As(err, &oe))
		require.Equal(t, OpSub, oe.Operation)
		require.Equal(t, uint64(7), oe.OperandA.Uint64())
		require.Equal(t, uint64(8), oe.OperandB.Uint64())
		require.Equal(t, uint64(7), c.AmountOf("osmo").Uint64())
	})

	t.Run("partial", func(t *testing.T) {
		require.NoError(t, c.FindCheckedSub(NewCoin("atom", 40)))
		require.Equal(t, uint64(60), c.AmountOf("atom").Uint64())
	})

	t.Run("exact removes by swap", func(t *testing.T) {
		require.NoError(t, c.FindCheckedSub(NewCoin("atom", 60)))
		_, ok := c.Get("atom")
		require.False(t, ok)
		// the last entry takes the freed slot
		require.Equal(t, []Coin{NewCoin("juno", 3), NewCoin("osmo", 7)}, c.Entries())
	})
}

func TestCheckedSubCoinsIsAllOrNothing(t *testing.T) {
	c, err := NewNativeCoins(NewCoin("atom", 10), NewCoin("osmo", 10))
	require.NoError(t, err)
	before := c.Entries()

	err = c.CheckedSubCoins([]Coin{NewCoin("atom", 10), NewCoin("osmo", 11)})
	require.True(t, IsOverflow(err, OpSub))
	require.Equal(t, before, c.Entries())

	err = c.CheckedSubCoins([]Coin{NewCoin("atom", 1), NewCoin("juno", 1)})
	require.ErrorIs(t, err, ErrEmptyBalance)
	require.Equal(t, before, c.Entries())
}

func TestTokenCollectionSharesEngine(t *testing.T) {
	c, err := NewTokenCoins(NewTokenCoin("cw20-a", 5))
	require.NoError(t, err)
	require.NoError(t, c.FindCheckedAdd(NewTokenCoin("cw20-b", 1)))
	require.NoError(t, c.FindCheckedSub(NewTokenCoin("cw20-a", 5)))
	require.Equal(t, []TokenCoin{NewTokenCoin("cw20-b", 1)}, c.Entries())
	require.ErrorIs(t, c.FindCheckedSub(NewTokenCoin("cw20-a", 1)), ErrEmptyBalance)
}

// The collection is checked against a big.Int model after every operation.
func TestCollectionMatchesModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c, err := NewNativeCoins()
		require.NoError(t, err)
		model := map[string]*big.Int{}

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			delta := genCoin().Draw(t, "delta")
			before := c.Entries()
			have, present := model[delta.Denom]
			if !present {
				have = new(big.Int)
			}
			d := delta.Amount.BigInt()

			if rapid.Bool().Draw(t, "add") {
				err := c.FindCheckedAdd(delta)
				sum := new(big.Int).Add(have, d)
				if sum.Cmp(maxBig) > 0 {
					require.True(t, IsOverflow(err, OpAdd))
					require.Equal(t, before, c.Entries())
				} else {
					require.NoError(t, err)
					if sum.Sign() > 0 {
						model[delta.Denom] = sum
					}
				}
			} else {
				err := c.FindCheckedSub(delta)
				switch {
				case !present:
					require.ErrorIs(t, err, ErrEmptyBalance)
					require.Equal(t, before, c.Entries())
				case d.Cmp(have) > 0:
					require.True(t, IsOverflow(err, OpSub))
					require.Equal(t, before, c.Entries())
				default:
					require.NoError(t, err)
					left := new(big.Int).Sub(have, d)
					if left.Sign() == 0 {
						delete(model, delta.Denom)
					} else {
						model[delta.Denom] = left
					}
				}
			}

			requireWellFormed(t, c)
			require.Equal(t, len(model), c.Len())
			for denom, amount := range model {
				require.Equal(t, 0, amount.Cmp(c.AmountOf(denom).BigInt()), "denom %s", denom)
			}
		}
	})
}

func TestBatchFailureRestoresState(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.SliceOfN(genCoin(), 0, 5).Draw(t, "seed")
		c, err := NewNativeCoins()
		require.NoError(t, err)
		for _, s := range seed {
			_ = c.FindCheckedAdd(s)
		}
		before := c.Entries()

		batch := rapid.SliceOfN(genCoin(), 1, 6).Draw(t, "batch")
		if rapid.Bool().Draw(t, "add") {
			err = c.CheckedAddCoins(batch)
		} else {
			err = c.CheckedSubCoins(batch)
		}
		if err != nil {
			require.Equal(t, before, c.Entries())
		}
		requireWellFormed(t, c)
	})
}
