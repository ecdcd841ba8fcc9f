package engine

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"

	"github.com/nexafin/sve/internal/types"
)

// Deposit moves amount of the base asset from account into vault custody and
// mints claim shares against it. The first deposit into an empty vault is
// priced 1:1; afterwards shares = floor(amount * totalShares / tvl).
//
// A deposit small enough to truncate to zero shares still settles; the caller
// sees zero minted shares, not an error.
func (e *Engine) Deposit(account types.AccountID, amount sdkmath.Int) (sdkmath.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return sdkmath.ZeroInt(), ErrVaultPaused
	}
	if amount.IsNil() || !amount.IsPositive() {
		return sdkmath.ZeroInt(), ErrInvalidAmount
	}
	if amount.LT(e.minDeposit) {
		return sdkmath.ZeroInt(), ErrBelowMinimumDeposit
	}

	shares := amount
	if e.totalShares.IsPositive() {
		// A drained vault with shares outstanding cannot price a deposit.
		if !e.tvl.IsPositive() {
			return sdkmath.ZeroInt(), ErrInsufficientLiquidity
		}
		shares = amount.Mul(e.totalShares).Quo(e.tvl)
	}

	if err := e.bank.Transfer(e.baseAsset, account, e.custody, amount); err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("deposit transfer failed: %w", err)
	}

	record, ok := e.accounts[account]
	if !ok {
		record = &types.DepositRecord{
			Amount: sdkmath.ZeroInt(),
			Shares: sdkmath.ZeroInt(),
		}
		e.accounts[account] = record
	}
	now := e.clock()
	record.Amount = record.Amount.Add(amount)
	record.Shares = record.Shares.Add(shares)
	record.LastDepositAt = now
	e.totalShares = e.totalShares.Add(shares)
	e.tvl = e.tvl.Add(amount)

	opID := uuid.New().String()
	e.logger.Info().
		Str("op_id", opID).
		Str("account", string(account)).
		Str("amount", amount.String()).
		Str("sharesMinted", shares.String()).
		Str("tvl", e.tvl.String()).
		Msg("Deposit settled")

	e.emitReceipt(types.SettlementReceipt{
		OpID:        opID,
		Kind:        types.OpDeposit,
		Account:     account,
		Asset:       e.baseAsset,
		AmountIn:    amount,
		AmountOut:   shares,
		Fee:         sdkmath.ZeroInt(),
		TVLAfter:    e.tvl,
		SupplyAfter: e.totalShares,
		Timestamp:   now,
	})

	return shares, nil
}

// Withdraw burns shares and pays out their pro-rata slice of TVL, net of the
// withdrawal fee. The fee is not moved anywhere: it stays inside TVL while
// the shares leave, which raises the residual share price for everyone else.
//
// Withdrawals are deliberately not gated by the pause flag; pausing only
// stops new deposits.
func (e *Engine) Withdraw(account types.AccountID, shares sdkmath.Int) (sdkmath.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if shares.IsNil() || !shares.IsPositive() {
		return sdkmath.ZeroInt(), ErrInvalidAmount
	}
	record, ok := e.accounts[account]
	if !ok || record.Shares.LT(shares) {
		return sdkmath.ZeroInt(), ErrInsufficientShares
	}

	gross := sdkmath.ZeroInt()
	if e.totalShares.IsPositive() {
		gross = shares.Mul(e.tvl).Quo(e.totalShares)
	}
	fee := bpsCut(gross, e.vaultFeeBps)
	net := gross.Sub(fee)

	if e.tvl.LT(gross) {
		return sdkmath.ZeroInt(), ErrInsufficientLiquidity
	}

	if net.IsPositive() {
		if err := e.bank.Transfer(e.baseAsset, e.custody, account, net); err != nil {
			return sdkmath.ZeroInt(), fmt.Errorf("withdrawal transfer failed: %w", err)
		}
	}

	record.Shares = record.Shares.Sub(shares)
	if record.Shares.IsZero() {
		delete(e.accounts, account)
	}
	e.totalShares = e.totalShares.Sub(shares)
	e.tvl = e.tvl.Sub(gross)

	opID := uuid.New().String()
	e.logger.Info().
		Str("op_id", opID).
		Str("account", string(account)).
		Str("sharesBurned", shares.String()).
		Str("gross", gross.String()).
		Str("fee", fee.String()).
		Str("net", net.String()).
		Str("tvl", e.tvl.String()).
		Msg("Withdrawal settled")

	e.emitReceipt(types.SettlementReceipt{
		OpID:        opID,
		Kind:        types.OpWithdraw,
		Account:     account,
		Asset:       e.baseAsset,
		AmountIn:    shares,
		AmountOut:   net,
		Fee:         fee,
		TVLAfter:    e.tvl,
		SupplyAfter: e.totalShares,
		Timestamp:   e.clock(),
	})

	return net, nil
}

// DistributeYield accrues one yield period onto TVL. No tokens move; the
// accrual re-prices existing shares upward. Calling it twice compounds on the
// already-updated TVL.
//
// Only accounts in the authorization set may distribute.
func (e *Engine) DistributeYield(caller types.AccountID) (sdkmath.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.authorized[caller] {
		return sdkmath.ZeroInt(), ErrNotAuthorized
	}

	yield := bpsCut(e.tvl, e.yieldRateBps)
	e.tvl = e.tvl.Add(yield)

	opID := uuid.New().String()
	e.logger.Info().
		Str("op_id", opID).
		Str("caller", string(caller)).
		Str("yield", yield.String()).
		Uint64("rateBps", e.yieldRateBps).
		Str("tvl", e.tvl.String()).
		Msg("Yield distributed")

	e.emitReceipt(types.SettlementReceipt{
		OpID:        opID,
		Kind:        types.OpDistributeYield,
		Account:     caller,
		Asset:       e.baseAsset,
		AmountIn:    sdkmath.ZeroInt(),
		AmountOut:   yield,
		Fee:         sdkmath.ZeroInt(),
		TVLAfter:    e.tvl,
		SupplyAfter: e.totalShares,
		Timestamp:   e.clock(),
	})

	return yield, nil
}
