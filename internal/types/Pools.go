/*

This is a custom type for pools which contains all the state needed for
constant-product settlement: reserves, outstanding liquidity and the fee rate.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// Pool is a two-asset reserve pair. The base asset is fixed engine-wide, so a
// pool is keyed by its paired asset alone.
type Pool struct {
	PairedAsset     AssetID     `json:"paired_asset"`
	ReserveBase     sdkmath.Int `json:"reserve_base"`
	ReservePaired   sdkmath.Int `json:"reserve_paired"`
	LiquiditySupply sdkmath.Int `json:"liquidity_supply"`
	FeeRateBps      uint64      `json:"fee_rate_bps"`
	CreatedAt       time.Time   `json:"created_at"`
}

// PoolInfo is the read-only view returned by pool queries.
type PoolInfo struct {
	PairedAsset     AssetID     `json:"paired_asset"`
	ReserveBase     sdkmath.Int `json:"reserve_base"`
	ReservePaired   sdkmath.Int `json:"reserve_paired"`
	LiquiditySupply sdkmath.Int `json:"liquidity_supply"`
	FeeRateBps      uint64      `json:"fee_rate_bps"`
}

// LiquidityPosition is one account's claim on one pool.
type LiquidityPosition struct {
	Account     AccountID   `json:"account"`
	PairedAsset AssetID     `json:"paired_asset"`
	Units       sdkmath.Int `json:"units"`
}
