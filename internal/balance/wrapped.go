package balance

import "fmt"

// Kind tells which token system a WrappedBalance holds.
type Kind uint8

const (
	KindNative Kind = iota
	KindToken
)

func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindToken:
		return "cw20"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// WrappedBalance holds either native coins (at most one denomination) or a
// single cw20 token entry, never both. The zero value is an empty native
// balance.
type WrappedBalance struct {
	kind   Kind
	native []Coin
	token  TokenCoin
}

// NewNative builds a native balance holding amount of denom.
func NewNative(denom string, amount Uint128) WrappedBalance {
	return NewNativeFromCoin(Coin{Denom: denom, Amount: amount})
}

// NewNativeFromCoin builds a native balance from a single coin. A zero coin
// yields an empty native balance.
func NewNativeFromCoin(c Coin) WrappedBalance {
	if c.Amount.IsZero() {
		return WrappedBalance{kind: KindNative}
	}
	return WrappedBalance{kind: KindNative, native: []Coin{c}}
}

// NewToken builds a cw20 balance of amount issued by address.
func NewToken(address Addr, amount Uint128) WrappedBalance {
	return NewTokenFromCoin(TokenCoin{Address: address, Amount: amount})
}

func NewTokenFromCoin(c TokenCoin) WrappedBalance {
	return WrappedBalance{kind: KindToken, token: c}
}

// FromReceive converts a cw20 receive hook into a token balance issued by
// the message sender. The sender is not verified here.
func FromReceive(msg ReceiveMsg) WrappedBalance {
	return NewToken(Addr(msg.Sender), msg.Amount)
}

// Zero returns an empty balance of the given denomination.
func Zero(d Denom) WrappedBalance {
	if d.Kind == KindToken {
		return NewToken(Addr(d.ID), Uint128{})
	}
	return WrappedBalance{kind: KindNative}
}

func (b WrappedBalance) Kind() Kind { return b.kind }
func (b WrappedBalance) IsNative() bool { return b.kind == KindNative }
func (b WrappedBalance) IsToken() bool { return b.kind == KindToken }

// Native returns the native coin, if the balance is native and non-empty.
func (b WrappedBalance) Native() (Coin, bool) {
	if b.kind != KindNative || len(b.native) == 0 {
		return Coin{}, false
	}
	return b.native[0], true
}

// Token returns the cw20 entry, if the balance is a token balance.
func (b WrappedBalance) Token() (TokenCoin, bool) {
	if b.kind != KindToken {
		return TokenCoin{}, false
	}
	return b.token, true
}

// Amount returns the held amount. An empty native balance reads as zero.
func (b WrappedBalance) Amount() Uint128 {
	switch b.kind {
	case KindToken:
		return b.token.Amount
	default:
		if len(b.native) == 0 {
			return Uint128{}
		}
		return b.native[0].Amount
	}
}

// IsEmpty reports whether the balance holds a zero amount.
func (b WrappedBalance) IsEmpty() bool {
	return b.Amount().IsZero()
}

// Denom returns the denomination held. An empty native balance has a native
// denomination with an empty ID.
func (b WrappedBalance) Denom() Denom {
	if b.kind == KindToken {
		return TokenDenom(b.token.Address)
	}
	if len(b.native) == 0 {
		return Denom{Kind: KindNative}
	}
	return NativeDenom(b.native[0].Denom)
}

// Clone returns a copy that shares no memory with b.
func (b WrappedBalance) Clone() WrappedBalance {
	out := b
	if b.native != nil {
		out.native = append([]Coin(nil), b.native...)
	}
	return out
}

// Equal reports whether both balances hold the same variant and entries.
func (b WrappedBalance) Equal(o WrappedBalance) bool {
	if b.kind != o.kind {
		return false
	}
	if b.kind == KindToken {
		return b.token.Address == o.token.Address && b.token.Amount.Eq(o.token.Amount)
	}
	if len(b.native) != len(o.native) {
		return false
	}
	for i := range b.native {
		if b.native[i].Denom != o.native[i].Denom || !b.native[i].Amount.Eq(o.native[i].Amount) {
			return false
		}
	}
	return true
}

func (b WrappedBalance) String() string {
	if b.kind == KindToken {
		return "cw20:" + b.token.String()
	}
	if len(b.native) == 0 {
		return "native:empty"
	}
	return "native:" + b.native[0].String()
}

// CheckedAddNative adds native coins. The balance must be native and must
// keep a single denomination.
func (b *WrappedBalance) CheckedAddNative(add ...Coin) error {
	return b.applyNative(add, (*NativeCoins).CheckedAddCoins)
}

// CheckedSubNative subtracts native coins. A coin drained to zero leaves an
// empty native balance.
func (b *WrappedBalance) CheckedSubNative(sub ...Coin) error {
	return b.applyNative(sub, (*NativeCoins).CheckedSubCoins)
}

// CheckedAddToken adds cw20 coins of the balance's own issuer.
func (b *WrappedBalance) CheckedAddToken(add ...TokenCoin) error {
	return b.applyToken(add, (*TokenCoins).CheckedAddCoins)
}

// CheckedSubToken subtracts cw20 coins. A drained token balance keeps its
// issuer with a zero amount.
func (b *WrappedBalance) CheckedSubToken(sub ...TokenCoin) error {
	return b.applyToken(sub, (*TokenCoins).CheckedSubCoins)
}

func (b *WrappedBalance) applyNative(deltas []Coin, op func(*NativeCoins, []Coin) error) error {
	if b.kind != KindNative {
		return &VariantMismatchError{Want: KindNative, Have: b.kind}
	}
	work := &NativeCoins{entries: append([]Coin(nil), b.native...)}
	if err := op(work, deltas); err != nil {
		return err
	}
	if work.Len() > 1 {
		return fmt.Errorf("%w: %s", ErrDenomMismatch, b.Denom().ID)
	}
	b.native = work.entries
	return nil
}

func (b *WrappedBalance) applyToken(deltas []TokenCoin, op func(*TokenCoins, []TokenCoin) error) error {
	if b.kind != KindToken {
		return &VariantMismatchError{Want: KindToken, Have: b.kind}
	}
	var work TokenCoins
	if !b.token.Amount.IsZero() {
		work.entries = []TokenCoin{b.token}
	} else if err := b.checkIssuers(deltas); err != nil {
		// a drained balance still belongs to its issuer
		return err
	}
	if err := op(&work, deltas); err != nil {
		return err
	}
	switch work.Len() {
	case 0:
		b.token = TokenCoin{Address: b.token.Address}
	case 1:
		b.token = work.entries[0]
	default:
		return fmt.Errorf("%w: %s", ErrIssuerMismatch, b.token.Address)
	}
	return nil
}

func (b *WrappedBalance) checkIssuers(deltas []TokenCoin) error {
	if b.token.Address == "" {
		return nil
	}
	for _, d := range deltas {
		if d.Address != b.token.Address && !d.Amount.IsZero() {
			return fmt.Errorf("%w: %s", ErrIssuerMismatch, b.token.Address)
		}
	}
	return nil
}

// CheckedAdd adds funds of either variant, dispatching on the variant of
// funds. An empty native funds value is a no-op.
func (b *WrappedBalance) CheckedAdd(funds WrappedBalance) error {
	switch funds.kind {
	case KindToken:
		return b.CheckedAddToken(funds.token)
	default:
		return b.CheckedAddNative(funds.native...)
	}
}

// CheckedSub subtracts funds of either variant.
func (b *WrappedBalance) CheckedSub(funds WrappedBalance) error {
	switch funds.kind {
	case KindToken:
		return b.CheckedSubToken(funds.token)
	default:
		return b.CheckedSubNative(funds.native...)
	}
}
