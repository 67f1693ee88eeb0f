package funding

import (
	"time"

	"github.com/congo-pay/payroll_escrow/internal/balance"
)

// DepositRequest funds a wallet with a native coin.
type DepositRequest struct {
	Denom      string          `json:"denom"`
	Amount     balance.Uint128 `json:"amount"`
	ClientTxID string          `json:"client_tx_id"`
}

// ReceiveRequest is the cw20 receive hook forwarded by the token contract.
type ReceiveRequest struct {
	balance.ReceiveMsg
	ClientTxID string `json:"client_tx_id"`
}

// WithdrawRequest releases funds from a wallet to an external recipient.
type WithdrawRequest struct {
	Recipient  string                 `json:"recipient"`
	Funds      balance.WrappedBalance `json:"funds"`
	ClientTxID string                 `json:"client_tx_id"`
}

// FundingResponse represents the API response for funding actions.
type FundingResponse struct {
	TransactionID   string                 `json:"transaction_id"`
	Status          string                 `json:"status"`
	WalletBalance   balance.WrappedBalance `json:"wallet_balance"`
	PayoutReference string                 `json:"payout_reference,omitempty"`
	CompletedAt     time.Time              `json:"completed_at"`
}
