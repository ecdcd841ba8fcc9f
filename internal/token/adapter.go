package token

import (
	sdkmath "cosmossdk.io/math"

	"github.com/nexafin/sve/internal/types"
)

// Adapter is the fungible-asset transfer primitive the engine settles
// against. A Transfer either fully succeeds or fails with no effect; the
// engine relies on that to keep its own bookkeeping atomic.
//
// Implementations must not call back into the engine.
type Adapter interface {
	// Transfer moves amount of asset between accounts.
	Transfer(asset types.AssetID, from, to types.AccountID, amount sdkmath.Int) error

	// BalanceOf returns the current balance of account in asset.
	BalanceOf(asset types.AssetID, account types.AccountID) sdkmath.Int

	// TotalSupply returns the outstanding supply of asset.
	TotalSupply(asset types.AssetID) sdkmath.Int
}
