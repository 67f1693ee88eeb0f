package balance

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Denom names a token: a native denomination or a cw20 contract address.
type Denom struct {
	Kind Kind
	ID   string
}

func NativeDenom(denom string) Denom { return Denom{Kind: KindNative, ID: denom} }
func TokenDenom(address Addr) Denom { return Denom{Kind: KindToken, ID: string(address)} }

func (d Denom) String() string {
	return d.Kind.String() + ":" + d.ID
}

// Matches reports whether funds are denominated in d. An empty balance of
// the same kind matches; anything else must carry exactly d's ID.
func (d Denom) Matches(funds WrappedBalance) bool {
	fd := funds.Denom()
	if fd.Kind != d.Kind {
		return false
	}
	if funds.IsEmpty() {
		return true
	}
	return fd.ID == d.ID
}

type denomJSON struct {
	Native *string `json:"native,omitempty"`
	Cw20   *string `json:"cw20,omitempty"`
}

// MarshalJSON encodes {"native": denom} or {"cw20": address}.
func (d Denom) MarshalJSON() ([]byte, error) {
	id := d.ID
	switch d.Kind {
	case KindNative:
		return json.Marshal(denomJSON{Native: &id})
	case KindToken:
		return json.Marshal(denomJSON{Cw20: &id})
	default:
		return nil, fmt.Errorf("unknown denom kind %d", d.Kind)
	}
}

func (d *Denom) UnmarshalJSON(data []byte) error {
	var raw denomJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Native != nil && raw.Cw20 == nil:
		*d = NativeDenom(*raw.Native)
	case raw.Cw20 != nil && raw.Native == nil:
		*d = TokenDenom(Addr(*raw.Cw20))
	default:
		return errors.New("denom must set exactly one of native or cw20")
	}
	if d.ID == "" {
		return errors.New("denom must not be empty")
	}
	return nil
}
