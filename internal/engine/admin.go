package engine

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"

	"github.com/nexafin/sve/internal/types"
)

// SetPaused flips the deposit gate and returns the new value. The gate only
// blocks deposits; withdrawals always settle.
func (e *Engine) SetPaused(caller types.AccountID, paused bool) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return e.paused, ErrNotAuthorized
	}
	e.paused = paused
	e.logger.Info().
		Str("caller", string(caller)).
		Bool("paused", paused).
		Msg("Pause gate updated")
	return e.paused, nil
}

// SetYieldRate updates the per-distribution yield rate and returns the new
// value in basis points.
func (e *Engine) SetYieldRate(caller types.AccountID, rateBps uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return e.yieldRateBps, ErrNotAuthorized
	}
	if rateBps >= bpsDenominator {
		return e.yieldRateBps, ErrInvalidAmount
	}
	e.yieldRateBps = rateBps
	e.logger.Info().
		Str("caller", string(caller)).
		Uint64("yieldRateBps", rateBps).
		Msg("Yield rate updated")
	return e.yieldRateBps, nil
}

// AddAuthorizedCaller adds account to the yield-distribution authorization
// set. The set is append-only; there is no removal operation.
func (e *Engine) AddAuthorizedCaller(caller, account types.AccountID) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return false, ErrNotAuthorized
	}
	e.authorized[account] = true
	e.logger.Info().
		Str("caller", string(caller)).
		Str("account", string(account)).
		Msg("Authorized caller added")
	return true, nil
}

// EmergencyWithdraw moves amount of any asset straight out of engine custody,
// bypassing vault and pool bookkeeping. It is a last-resort escape hatch:
// using it desynchronizes the ledger from actual custody, which is the
// administrator's responsibility to reconcile.
func (e *Engine) EmergencyWithdraw(caller types.AccountID, asset types.AssetID, amount sdkmath.Int, recipient types.AccountID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return ErrNotAuthorized
	}
	if amount.IsNil() || !amount.IsPositive() {
		return ErrInvalidAmount
	}

	if err := e.bank.Transfer(asset, e.custody, recipient, amount); err != nil {
		return fmt.Errorf("emergency transfer failed: %w", err)
	}

	opID := uuid.New().String()
	e.logger.Warn().
		Str("op_id", opID).
		Str("caller", string(caller)).
		Str("asset", string(asset)).
		Str("amount", amount.String()).
		Str("recipient", string(recipient)).
		Msg("Emergency withdrawal executed; ledger no longer reconciled against custody")

	e.emitReceipt(types.SettlementReceipt{
		OpID:        opID,
		Kind:        types.OpEmergencyWithdraw,
		Account:     recipient,
		Asset:       asset,
		AmountIn:    sdkmath.ZeroInt(),
		AmountOut:   amount,
		Fee:         sdkmath.ZeroInt(),
		TVLAfter:    e.tvl,
		SupplyAfter: e.totalShares,
		Timestamp:   e.clock(),
	})

	return nil
}
