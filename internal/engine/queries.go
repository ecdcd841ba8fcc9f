package engine

import (
	"sort"

	sdkmath "cosmossdk.io/math"

	"github.com/nexafin/sve/internal/types"
)

// Read-only queries. Each takes the engine lock so it observes a committed
// state, never a half-applied operation. None of them can fail on valid
// input.

// VaultBalanceOf returns the live base-asset value of an account's shares:
// floor(shares * tvl / totalShares).
func (e *Engine) VaultBalanceOf(account types.AccountID) sdkmath.Int {
	e.mu.Lock()
	defer e.mu.Unlock()

	record, ok := e.accounts[account]
	if !ok || !e.totalShares.IsPositive() {
		return sdkmath.ZeroInt()
	}
	return record.Shares.Mul(e.tvl).Quo(e.totalShares)
}

// DepositRecordOf returns a copy of the account's deposit record.
func (e *Engine) DepositRecordOf(account types.AccountID) (types.DepositRecord, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	record, ok := e.accounts[account]
	if !ok {
		return types.DepositRecord{}, false
	}
	return *record, true
}

// TVL returns the aggregate base-asset value attributed to the vault.
func (e *Engine) TVL() sdkmath.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tvl
}

// VaultStatus returns the pause flag, TVL, yield rate and share supply.
func (e *Engine) VaultStatus() types.VaultStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return types.VaultStatus{
		Paused:       e.paused,
		TVL:          e.tvl,
		YieldRateBps: e.yieldRateBps,
		TotalShares:  e.totalShares,
	}
}

// PoolInfo returns the reserves, liquidity supply and fee rate for the pool
// keyed by pairedAsset.
func (e *Engine) PoolInfo(pairedAsset types.AssetID) (types.PoolInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, ok := e.pools[pairedAsset]
	if !ok {
		return types.PoolInfo{}, ErrPoolNotFound
	}
	return poolInfo(pool), nil
}

// Pools returns every registered pool, ordered by paired asset.
func (e *Engine) Pools() []types.PoolInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	infos := make([]types.PoolInfo, 0, len(e.pools))
	for _, pool := range e.pools {
		infos = append(infos, poolInfo(pool))
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].PairedAsset < infos[j].PairedAsset
	})
	return infos
}

// PositionOf returns the liquidity units account holds in the pool keyed by
// pairedAsset; zero if it holds none or the pool does not exist.
func (e *Engine) PositionOf(account types.AccountID, pairedAsset types.AssetID) sdkmath.Int {
	e.mu.Lock()
	defer e.mu.Unlock()

	position, ok := e.positions[positionKey{account, pairedAsset}]
	if !ok {
		return sdkmath.ZeroInt()
	}
	return position
}

// IsAuthorized reports whether account may distribute yield.
func (e *Engine) IsAuthorized(account types.AccountID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.authorized[account]
}

func poolInfo(pool *types.Pool) types.PoolInfo {
	return types.PoolInfo{
		PairedAsset:     pool.PairedAsset,
		ReserveBase:     pool.ReserveBase,
		ReservePaired:   pool.ReservePaired,
		LiquiditySupply: pool.LiquiditySupply,
		FeeRateBps:      pool.FeeRateBps,
	}
}
