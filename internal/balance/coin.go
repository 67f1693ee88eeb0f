package balance

import "fmt"

// Addr identifies a cw20 token contract. Its authenticity is checked by the
// caller before it reaches this package.
type Addr string

func (a Addr) String() string { return string(a) }

// Coin is a native asset amount keyed by denomination.
type Coin struct {
	Denom  string  `json:"denom"`
	Amount Uint128 `json:"amount"`
}

// NewCoin builds a Coin from a uint64 amount.
func NewCoin(denom string, amount uint64) Coin {
	return Coin{Denom: denom, Amount: NewUint128(amount)}
}

func (c Coin) EntryKey() string { return c.Denom }
func (c Coin) EntryAmount() Uint128 { return c.Amount }
func (c Coin) WithAmount(a Uint128) Coin {
	c.Amount = a
	return c
}

func (c Coin) String() string {
	return fmt.Sprintf("%s%s", c.Amount, c.Denom)
}

// TokenCoin is a cw20 token amount keyed by the issuing contract address.
type TokenCoin struct {
	Address Addr    `json:"address"`
	Amount  Uint128 `json:"amount"`
}

// NewTokenCoin builds a TokenCoin from a uint64 amount.
func NewTokenCoin(address Addr, amount uint64) TokenCoin {
	return TokenCoin{Address: address, Amount: NewUint128(amount)}
}

func (c TokenCoin) EntryKey() Addr { return c.Address }
func (c TokenCoin) EntryAmount() Uint128 { return c.Amount }
func (c TokenCoin) WithAmount(a Uint128) TokenCoin {
	c.Amount = a
	return c
}

func (c TokenCoin) String() string {
	return fmt.Sprintf("%s %s", c.Amount, c.Address)
}

// ReceiveMsg is the cw20 receive hook payload delivered when a token
// contract sends tokens to the escrow.
type ReceiveMsg struct {
	Sender string  `json:"sender"`
	Amount Uint128 `json:"amount"`
	Msg    []byte  `json:"msg,omitempty"`
}
