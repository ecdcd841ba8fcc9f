package engine

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"

	"github.com/nexafin/sve/internal/types"
)

// CreatePool seeds a new base/paired trading pool. The initial liquidity
// supply is the literal product of the two reserves and is credited in full
// to the creator's position.
func (e *Engine) CreatePool(caller types.AccountID, pairedAsset types.AssetID, baseAmount, pairedAmount sdkmath.Int) (types.AssetID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if baseAmount.IsNil() || !baseAmount.IsPositive() || pairedAmount.IsNil() || !pairedAmount.IsPositive() {
		return "", ErrInvalidAmount
	}
	if _, ok := e.pools[pairedAsset]; ok {
		return "", ErrPoolExists
	}

	opID := uuid.New().String()
	if err := e.bank.Transfer(e.baseAsset, caller, e.custody, baseAmount); err != nil {
		return "", fmt.Errorf("pool creation base transfer failed: %w", err)
	}
	if err := e.bank.Transfer(pairedAsset, caller, e.custody, pairedAmount); err != nil {
		e.refund(opID, e.baseAsset, caller, baseAmount)
		return "", fmt.Errorf("pool creation paired transfer failed: %w", err)
	}

	supply := baseAmount.Mul(pairedAmount)
	now := e.clock()
	e.pools[pairedAsset] = &types.Pool{
		PairedAsset:     pairedAsset,
		ReserveBase:     baseAmount,
		ReservePaired:   pairedAmount,
		LiquiditySupply: supply,
		FeeRateBps:      e.poolFeeBps,
		CreatedAt:       now,
	}
	e.positions[positionKey{caller, pairedAsset}] = supply

	e.logger.Info().
		Str("op_id", opID).
		Str("account", string(caller)).
		Str("pairedAsset", string(pairedAsset)).
		Str("reserveBase", baseAmount.String()).
		Str("reservePaired", pairedAmount.String()).
		Str("liquiditySupply", supply.String()).
		Msg("Pool created")

	e.emitReceipt(types.SettlementReceipt{
		OpID:        opID,
		Kind:        types.OpCreatePool,
		Account:     caller,
		Asset:       pairedAsset,
		AmountIn:    baseAmount,
		AmountOut:   pairedAmount,
		Fee:         sdkmath.ZeroInt(),
		TVLAfter:    e.tvl,
		SupplyAfter: supply,
		Timestamp:   now,
	})

	return pairedAsset, nil
}

// AddLiquidity provisions both sides of an existing pool. The minted amount
// is the minimum of the two per-side pro-rata candidates, so the limiting
// side decides the reward; the non-limiting side's excess is still credited
// to the reserves, where it accrues to existing holders.
func (e *Engine) AddLiquidity(caller types.AccountID, pairedAsset types.AssetID, baseAmount, pairedAmount, minLiquidityOut sdkmath.Int) (sdkmath.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, ok := e.pools[pairedAsset]
	if !ok {
		return sdkmath.ZeroInt(), ErrPoolNotFound
	}
	if baseAmount.IsNil() || !baseAmount.IsPositive() || pairedAmount.IsNil() || !pairedAmount.IsPositive() {
		return sdkmath.ZeroInt(), ErrInvalidAmount
	}

	byBase := baseAmount.Mul(pool.LiquiditySupply).Quo(pool.ReserveBase)
	byPaired := pairedAmount.Mul(pool.LiquiditySupply).Quo(pool.ReservePaired)
	minted := sdkmath.MinInt(byBase, byPaired)

	if !minLiquidityOut.IsNil() && minted.LT(minLiquidityOut) {
		return sdkmath.ZeroInt(), ErrSlippageExceeded
	}

	opID := uuid.New().String()
	if err := e.bank.Transfer(e.baseAsset, caller, e.custody, baseAmount); err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("liquidity base transfer failed: %w", err)
	}
	if err := e.bank.Transfer(pairedAsset, caller, e.custody, pairedAmount); err != nil {
		e.refund(opID, e.baseAsset, caller, baseAmount)
		return sdkmath.ZeroInt(), fmt.Errorf("liquidity paired transfer failed: %w", err)
	}

	pool.ReserveBase = pool.ReserveBase.Add(baseAmount)
	pool.ReservePaired = pool.ReservePaired.Add(pairedAmount)
	pool.LiquiditySupply = pool.LiquiditySupply.Add(minted)
	key := positionKey{caller, pairedAsset}
	position, ok := e.positions[key]
	if !ok {
		position = sdkmath.ZeroInt()
	}
	e.positions[key] = position.Add(minted)

	e.logger.Info().
		Str("op_id", opID).
		Str("account", string(caller)).
		Str("pairedAsset", string(pairedAsset)).
		Str("baseAmount", baseAmount.String()).
		Str("pairedAmount", pairedAmount.String()).
		Str("liquidityMinted", minted.String()).
		Msg("Liquidity added")

	e.emitReceipt(types.SettlementReceipt{
		OpID:        opID,
		Kind:        types.OpAddLiquidity,
		Account:     caller,
		Asset:       pairedAsset,
		AmountIn:    baseAmount,
		AmountOut:   minted,
		Fee:         sdkmath.ZeroInt(),
		TVLAfter:    e.tvl,
		SupplyAfter: pool.LiquiditySupply,
		Timestamp:   e.clock(),
	})

	return minted, nil
}

// Swap trades the base asset into the paired asset through the constant
// product formula. The fee is taken on the input side and folded back into
// the base reserve, so it accrues to liquidity providers as reserve value.
func (e *Engine) Swap(caller types.AccountID, pairedAsset types.AssetID, baseAmountIn, minPairedOut sdkmath.Int) (sdkmath.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, ok := e.pools[pairedAsset]
	if !ok {
		return sdkmath.ZeroInt(), ErrPoolNotFound
	}
	if baseAmountIn.IsNil() || !baseAmountIn.IsPositive() {
		return sdkmath.ZeroInt(), ErrInvalidAmount
	}

	fee := bpsCut(baseAmountIn, pool.FeeRateBps)
	netInput := baseAmountIn.Sub(fee)
	out := netInput.Mul(pool.ReservePaired).Quo(pool.ReserveBase.Add(netInput))

	if !minPairedOut.IsNil() && out.LT(minPairedOut) {
		return sdkmath.ZeroInt(), ErrSlippageExceeded
	}
	if !out.IsPositive() {
		return sdkmath.ZeroInt(), ErrInsufficientLiquidity
	}

	opID := uuid.New().String()
	if err := e.bank.Transfer(e.baseAsset, caller, e.custody, baseAmountIn); err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("swap input transfer failed: %w", err)
	}
	if err := e.bank.Transfer(pairedAsset, e.custody, caller, out); err != nil {
		e.refund(opID, e.baseAsset, caller, baseAmountIn)
		return sdkmath.ZeroInt(), fmt.Errorf("swap output transfer failed: %w", err)
	}

	pool.ReserveBase = pool.ReserveBase.Add(netInput)
	pool.ReservePaired = pool.ReservePaired.Sub(out)

	e.logger.Info().
		Str("op_id", opID).
		Str("account", string(caller)).
		Str("pairedAsset", string(pairedAsset)).
		Str("baseAmountIn", baseAmountIn.String()).
		Str("fee", fee.String()).
		Str("pairedAmountOut", out.String()).
		Str("reserveBase", pool.ReserveBase.String()).
		Str("reservePaired", pool.ReservePaired.String()).
		Msg("Swap settled")

	e.emitReceipt(types.SettlementReceipt{
		OpID:        opID,
		Kind:        types.OpSwap,
		Account:     caller,
		Asset:       pairedAsset,
		AmountIn:    baseAmountIn,
		AmountOut:   out,
		Fee:         fee,
		TVLAfter:    e.tvl,
		SupplyAfter: pool.LiquiditySupply,
		Timestamp:   e.clock(),
	})

	return out, nil
}

// refund compensates the first transfer of a two-transfer operation after the
// second one failed. A failed refund leaves custody out of sync with the
// ledger and is logged at error level for operator intervention.
func (e *Engine) refund(opID string, asset types.AssetID, to types.AccountID, amount sdkmath.Int) {
	if err := e.bank.Transfer(asset, e.custody, to, amount); err != nil {
		e.logger.Error().
			Err(err).
			Str("op_id", opID).
			Str("asset", string(asset)).
			Str("account", string(to)).
			Str("amount", amount.String()).
			Msg("Compensating refund failed; custody desynchronized from ledger")
	}
}
