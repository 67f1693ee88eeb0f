package balance

import (
	"encoding/json"
	"errors"
	"fmt"
)

type wrappedJSON struct {
	Native *[]Coin    `json:"native,omitempty"`
	Cw20   *TokenCoin `json:"cw20,omitempty"`
}

// MarshalJSON encodes the balance in the cw20 Balance shape:
// {"native":[{"denom":..,"amount":..}]} or {"cw20":{"address":..,"amount":..}}.
func (b WrappedBalance) MarshalJSON() ([]byte, error) {
	if b.kind == KindToken {
		tok := b.token
		return json.Marshal(wrappedJSON{Cw20: &tok})
	}
	coins := b.native
	if coins == nil {
		coins = []Coin{}
	}
	return json.Marshal(wrappedJSON{Native: &coins})
}

// UnmarshalJSON decodes either variant. Native coins are re-added through
// the collection engine so duplicates merge and zero entries are dropped.
func (b *WrappedBalance) UnmarshalJSON(data []byte) error {
	var raw wrappedJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Cw20 != nil && raw.Native == nil:
		if raw.Cw20.Address == "" {
			return fmt.Errorf("decode cw20 balance: %w", ErrInvalidDenom)
		}
		*b = NewTokenFromCoin(*raw.Cw20)
		return nil
	case raw.Native != nil && raw.Cw20 == nil:
		for _, c := range *raw.Native {
			if c.Denom == "" {
				return fmt.Errorf("decode native balance: %w", ErrInvalidDenom)
			}
		}
		out := WrappedBalance{kind: KindNative}
		if err := out.CheckedAddNative(*raw.Native...); err != nil {
			return fmt.Errorf("decode native balance: %w", err)
		}
		*b = out
		return nil
	default:
		return errors.New("balance must set exactly one of native or cw20")
	}
}
