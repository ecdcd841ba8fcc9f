/*

This file contains the settlement receipt types recorded in the journal after
every mutating engine operation.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// OperationKind labels the engine operation a receipt settles.
type OperationKind string

const (
	OpDeposit           OperationKind = "DEPOSIT"
	OpWithdraw          OperationKind = "WITHDRAW"
	OpDistributeYield   OperationKind = "DISTRIBUTE_YIELD"
	OpCreatePool        OperationKind = "CREATE_POOL"
	OpAddLiquidity      OperationKind = "ADD_LIQUIDITY"
	OpSwap              OperationKind = "SWAP"
	OpEmergencyWithdraw OperationKind = "EMERGENCY_WITHDRAW"
)

// SettlementReceipt captures the outcome of one committed operation. Amounts
// are exact smallest-unit integers; TVLAfter and SupplyAfter record the
// post-commit aggregates for reconciliation.
type SettlementReceipt struct {
	OpID        string        `json:"op_id"`
	Kind        OperationKind `json:"kind"`
	Account     AccountID     `json:"account"`
	Asset       AssetID       `json:"asset"`
	AmountIn    sdkmath.Int   `json:"amount_in"`
	AmountOut   sdkmath.Int   `json:"amount_out"`
	Fee         sdkmath.Int   `json:"fee"`
	TVLAfter    sdkmath.Int   `json:"tvl_after"`
	SupplyAfter sdkmath.Int   `json:"supply_after"`
	Timestamp   time.Time     `json:"timestamp"`
}
