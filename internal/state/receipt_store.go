// ./internal/state/receipt_store.go
package state

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/nexafin/sve/internal/types"
)

// Journal persists settlement receipts to postgres. It satisfies the
// engine's journal interface.
type Journal struct{}

// RecordReceipt stores one receipt row.
func (Journal) RecordReceipt(receipt types.SettlementReceipt) error {
	_, err := SaveSettlementReceipt(receipt)
	return err
}

// SaveSettlementReceipt saves a settlement receipt to the database.
func SaveSettlementReceipt(receipt types.SettlementReceipt) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO settlement_receipts (
			op_id, kind, account, asset,
			amount_in, amount_out, fee, tvl_after, supply_after, settled_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING receipt_id;
	`

	var receiptID int64
	err := DB.QueryRow(
		query,
		receipt.OpID, string(receipt.Kind), string(receipt.Account), string(receipt.Asset),
		receipt.AmountIn.String(), receipt.AmountOut.String(), receipt.Fee.String(),
		receipt.TVLAfter.String(), receipt.SupplyAfter.String(), receipt.Timestamp,
	).Scan(&receiptID)
	if err != nil {
		return 0, fmt.Errorf("failed to save settlement receipt: %w", err)
	}

	log.Debug().
		Int64("receipt_id", receiptID).
		Str("op_id", receipt.OpID).
		Str("kind", string(receipt.Kind)).
		Msg("Settlement receipt saved to database")

	return receiptID, nil
}

// GetRecentReceipts returns the most recent settlement receipts, newest first.
func GetRecentReceipts(limit int) ([]types.SettlementReceipt, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT op_id, kind, account, asset,
			amount_in, amount_out, fee, tvl_after, supply_after, settled_at
		FROM settlement_receipts
		ORDER BY settled_at DESC, receipt_id DESC
		LIMIT $1;
	`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlement receipts: %w", err)
	}
	defer rows.Close()

	var receipts []types.SettlementReceipt
	for rows.Next() {
		var receipt types.SettlementReceipt
		var kind, account, asset string
		var amountIn, amountOut, fee, tvlAfter, supplyAfter string
		if err := rows.Scan(
			&receipt.OpID, &kind, &account, &asset,
			&amountIn, &amountOut, &fee, &tvlAfter, &supplyAfter, &receipt.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan settlement receipt: %w", err)
		}
		receipt.Kind = types.OperationKind(kind)
		receipt.Account = types.AccountID(account)
		receipt.Asset = types.AssetID(asset)
		if receipt.AmountIn, err = parseIntColumn(amountIn, "amount_in"); err != nil {
			return nil, err
		}
		if receipt.AmountOut, err = parseIntColumn(amountOut, "amount_out"); err != nil {
			return nil, err
		}
		if receipt.Fee, err = parseIntColumn(fee, "fee"); err != nil {
			return nil, err
		}
		if receipt.TVLAfter, err = parseIntColumn(tvlAfter, "tvl_after"); err != nil {
			return nil, err
		}
		if receipt.SupplyAfter, err = parseIntColumn(supplyAfter, "supply_after"); err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlement receipts: %w", err)
	}

	return receipts, nil
}

// SaveVaultSnapshot persists one aggregate vault snapshot.
func SaveVaultSnapshot(status types.VaultStatus) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO vault_snapshots (tvl, total_shares, paused, yield_rate_bps)
		VALUES ($1, $2, $3, $4)
		RETURNING snapshot_id;
	`

	var snapshotID int64
	err := DB.QueryRow(
		query,
		status.TVL.String(), status.TotalShares.String(), status.Paused, status.YieldRateBps,
	).Scan(&snapshotID)
	if err != nil {
		return 0, fmt.Errorf("failed to save vault snapshot: %w", err)
	}

	log.Debug().
		Int64("snapshot_id", snapshotID).
		Str("tvl", status.TVL.String()).
		Msg("Vault snapshot saved to database")

	return snapshotID, nil
}

// parseIntColumn converts a NUMERIC column back into an sdkmath.Int.
func parseIntColumn(value, column string) (sdkmath.Int, error) {
	parsed, ok := sdkmath.NewIntFromString(value)
	if !ok {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to parse %s value %q", column, value)
	}
	return parsed, nil
}
