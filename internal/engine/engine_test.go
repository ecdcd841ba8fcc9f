package engine

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/nexafin/sve/internal/token"
	"github.com/nexafin/sve/internal/types"
)

const (
	baseAsset   = types.AssetID("uusdc")
	atomAsset   = types.AssetID("uatom")
	adminAcct   = types.AccountID("admin")
	custodyAcct = types.AccountID("custody")
	alice       = types.AccountID("alice")
	bob         = types.AccountID("bob")
)

var testClock = func() time.Time { return time.Unix(1700000000, 0).UTC() }

// newTestEngine builds an engine over a fresh bank with generous balances for
// alice and bob in both assets.
func newTestEngine(t *testing.T) (*Engine, *token.Bank) {
	t.Helper()
	bank := token.NewBank()
	for _, asset := range []types.AssetID{baseAsset, atomAsset} {
		require.NoError(t, bank.Mint(asset, alice, sdkmath.NewInt(100_000_000)))
		require.NoError(t, bank.Mint(asset, bob, sdkmath.NewInt(100_000_000)))
	}

	eng, err := New(Config{
		Bank:         bank,
		BaseAsset:    baseAsset,
		Admin:        adminAcct,
		Custody:      custodyAcct,
		MinDeposit:   sdkmath.NewInt(1000),
		VaultFeeBps:  100,
		PoolFeeBps:   30,
		YieldRateBps: 0,
		Clock:        testClock,
	})
	require.NoError(t, err)
	return eng, bank
}

func TestNewValidation(t *testing.T) {
	bank := token.NewBank()

	_, err := New(Config{BaseAsset: baseAsset, Admin: adminAcct, Custody: custodyAcct, MinDeposit: sdkmath.NewInt(1)})
	require.Error(t, err, "nil adapter must be rejected")

	_, err = New(Config{Bank: bank, Admin: adminAcct, Custody: custodyAcct, MinDeposit: sdkmath.NewInt(1)})
	require.Error(t, err, "empty base asset must be rejected")

	_, err = New(Config{Bank: bank, BaseAsset: baseAsset, Admin: adminAcct, Custody: adminAcct, MinDeposit: sdkmath.NewInt(1)})
	require.Error(t, err, "custody colliding with admin must be rejected")

	_, err = New(Config{Bank: bank, BaseAsset: baseAsset, Admin: adminAcct, Custody: custodyAcct, MinDeposit: sdkmath.NewInt(1), VaultFeeBps: 10000})
	require.Error(t, err, "vault fee of 100% must be rejected")

	_, err = New(Config{Bank: bank, BaseAsset: baseAsset, Admin: adminAcct, Custody: custodyAcct, MinDeposit: sdkmath.NewInt(1), YieldRateBps: 20000})
	require.Error(t, err, "yield rate of 200% must be rejected")
}
