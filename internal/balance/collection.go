package balance

import (
	"encoding/json"
	"slices"

	"github.com/samber/lo"
)

// Entry is implemented by ledger entries that carry a key of type K and an
// amount. WithAmount returns a copy of the entry holding the given amount.
type Entry[K comparable, E any] interface {
	EntryKey() K
	EntryAmount() Uint128
	WithAmount(Uint128) E
}

// Collection is an ordered list of entries with unique keys and strictly
// positive amounts.
//
// Entries keep insertion order until one is removed: removal swaps the last
// entry into the freed slot, so callers must not rely on positions after a
// subtraction that drains an entry.
type Collection[K comparable, E Entry[K, E]] struct {
	entries []E
}

// NewCollection builds a collection by adding each entry in order.
func NewCollection[K comparable, E Entry[K, E]](entries ...E) (*Collection[K, E], error) {
	c := &Collection[K, E]{}
	if err := c.CheckedAddCoins(entries); err != nil {
		return nil, err
	}
	return c, nil
}

// NativeCoins is the collection of native coins keyed by denomination.
type NativeCoins = Collection[string, Coin]

// TokenCoins is the collection of cw20 coins keyed by issuer address.
type TokenCoins = Collection[Addr, TokenCoin]

// NewNativeCoins builds a native coin collection.
func NewNativeCoins(coins ...Coin) (*NativeCoins, error) {
	return NewCollection[string, Coin](coins...)
}

// NewTokenCoins builds a cw20 coin collection.
func NewTokenCoins(coins ...TokenCoin) (*TokenCoins, error) {
	return NewCollection[Addr, TokenCoin](coins...)
}

func (c *Collection[K, E]) index(key K) int {
	_, i, ok := lo.FindIndexOf(c.entries, func(e E) bool {
		return e.EntryKey() == key
	})
	if !ok {
		return -1
	}
	return i
}

// FindCheckedAdd adds delta to the entry with the same key, or appends it.
// On overflow the collection is left untouched.
func (c *Collection[K, E]) FindCheckedAdd(delta E) error {
	i := c.index(delta.EntryKey())
	if i < 0 {
		if delta.EntryAmount().IsZero() {
			return nil
		}
		c.entries = append(c.entries, delta)
		return nil
	}
	sum, err := c.entries[i].EntryAmount().CheckedAdd(delta.EntryAmount())
	if err != nil {
		return err
	}
	c.entries[i] = c.entries[i].WithAmount(sum)
	return nil
}

// FindCheckedSub subtracts delta from the entry with the same key. A key
// without an entry yields ErrEmptyBalance; an entry smaller than delta
// yields an OpSub *OverflowError. An entry reaching zero is removed.
func (c *Collection[K, E]) FindCheckedSub(delta E) error {
	i := c.index(delta.EntryKey())
	if i < 0 {
		return ErrEmptyBalance
	}
	have := c.entries[i].EntryAmount()
	switch have.Cmp(delta.EntryAmount()) {
	case -1:
		return &OverflowError{Operation: OpSub, OperandA: have, OperandB: delta.EntryAmount()}
	case 0:
		c.swapRemove(i)
	default:
		diff, err := have.CheckedSub(delta.EntryAmount())
		if err != nil {
			return err
		}
		c.entries[i] = c.entries[i].WithAmount(diff)
	}
	return nil
}

func (c *Collection[K, E]) swapRemove(i int) {
	last := len(c.entries) - 1
	c.entries[i] = c.entries[last]
	var zero E
	c.entries[last] = zero
	c.entries = c.entries[:last]
}

// CheckedAddCoins adds every delta in order. It stops at the first failure
// and in that case leaves the collection as it was before the call.
func (c *Collection[K, E]) CheckedAddCoins(deltas []E) error {
	work := c.Clone()
	for _, d := range deltas {
		if err := work.FindCheckedAdd(d); err != nil {
			return err
		}
	}
	c.entries = work.entries
	return nil
}

// CheckedSubCoins subtracts every delta in order with the same
// all-or-nothing behaviour as CheckedAddCoins.
func (c *Collection[K, E]) CheckedSubCoins(deltas []E) error {
	work := c.Clone()
	for _, d := range deltas {
		if err := work.FindCheckedSub(d); err != nil {
			return err
		}
	}
	c.entries = work.entries
	return nil
}

// Clone returns an independent copy.
func (c *Collection[K, E]) Clone() *Collection[K, E] {
	return &Collection[K, E]{entries: slices.Clone(c.entries)}
}

func (c *Collection[K, E]) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the entries in their current order.
func (c *Collection[K, E]) Entries() []E {
	return slices.Clone(c.entries)
}

// Get returns the entry for key.
func (c *Collection[K, E]) Get(key K) (E, bool) {
	i := c.index(key)
	if i < 0 {
		var zero E
		return zero, false
	}
	return c.entries[i], true
}

// AmountOf returns the amount held for key, zero when absent.
func (c *Collection[K, E]) AmountOf(key K) Uint128 {
	e, ok := c.Get(key)
	if !ok {
		return Uint128{}
	}
	return e.EntryAmount()
}

func (c *Collection[K, E]) MarshalJSON() ([]byte, error) {
	if c.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.entries)
}

// UnmarshalJSON rebuilds the collection through FindCheckedAdd, so
// duplicate keys are merged and zero amounts dropped.
func (c *Collection[K, E]) UnmarshalJSON(data []byte) error {
	var raw []E
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fresh := &Collection[K, E]{}
	if err := fresh.CheckedAddCoins(raw); err != nil {
		return err
	}
	*c = *fresh
	return nil
}
