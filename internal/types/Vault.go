/*

This file contains the core vault accounting types: account identities,
per-account deposit records and the singleton vault state.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// AccountID identifies a participant account. The engine treats it as an
// opaque identifier; it carries no chain-specific encoding.
type AccountID string

// AssetID identifies a fungible asset handled by the transfer adapter.
type AssetID string

// DepositRecord tracks a single account's vault participation. The Amount
// field is cumulative and informational; Shares is authoritative for
// redemption.
type DepositRecord struct {
	Amount        sdkmath.Int `json:"amount"`
	Shares        sdkmath.Int `json:"shares"`
	LastDepositAt time.Time   `json:"last_deposit_at"`
}

// VaultStatus is the read-only view of the global vault state.
type VaultStatus struct {
	Paused       bool        `json:"paused"`
	TVL          sdkmath.Int `json:"tvl"`
	YieldRateBps uint64      `json:"yield_rate_bps"`
	TotalShares  sdkmath.Int `json:"total_shares"`
}
