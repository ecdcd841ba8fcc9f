package token

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/nexafin/sve/internal/types"
)

const (
	testAsset = types.AssetID("uusdc")
	alice     = types.AccountID("alice")
	bob       = types.AccountID("bob")
)

func TestMintAndBalances(t *testing.T) {
	bank := NewBank()

	require.NoError(t, bank.Mint(testAsset, alice, sdkmath.NewInt(1_000_000)))
	require.Equal(t, sdkmath.NewInt(1_000_000), bank.BalanceOf(testAsset, alice))
	require.Equal(t, sdkmath.NewInt(1_000_000), bank.TotalSupply(testAsset))

	require.NoError(t, bank.Mint(testAsset, bob, sdkmath.NewInt(500)))
	require.Equal(t, sdkmath.NewInt(1_000_500), bank.TotalSupply(testAsset))

	require.True(t, bank.BalanceOf(testAsset, "nobody").IsZero())
	require.True(t, bank.TotalSupply("unknown").IsZero())
}

func TestTransfer(t *testing.T) {
	bank := NewBank()
	require.NoError(t, bank.Mint(testAsset, alice, sdkmath.NewInt(1000)))

	require.NoError(t, bank.Transfer(testAsset, alice, bob, sdkmath.NewInt(300)))
	require.Equal(t, sdkmath.NewInt(700), bank.BalanceOf(testAsset, alice))
	require.Equal(t, sdkmath.NewInt(300), bank.BalanceOf(testAsset, bob))

	// Supply is conserved by transfers.
	require.Equal(t, sdkmath.NewInt(1000), bank.TotalSupply(testAsset))
}

func TestTransferInsufficientFunds(t *testing.T) {
	bank := NewBank()
	require.NoError(t, bank.Mint(testAsset, alice, sdkmath.NewInt(100)))

	err := bank.Transfer(testAsset, alice, bob, sdkmath.NewInt(101))
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// Failed transfers leave balances untouched.
	require.Equal(t, sdkmath.NewInt(100), bank.BalanceOf(testAsset, alice))
	require.True(t, bank.BalanceOf(testAsset, bob).IsZero())
}

func TestTransferValidation(t *testing.T) {
	bank := NewBank()
	require.NoError(t, bank.Mint(testAsset, alice, sdkmath.NewInt(100)))

	require.ErrorIs(t, bank.Transfer(testAsset, alice, bob, sdkmath.ZeroInt()), ErrInvalidTransferAmount)
	require.ErrorIs(t, bank.Transfer(testAsset, alice, bob, sdkmath.NewInt(-5)), ErrInvalidTransferAmount)
	require.ErrorIs(t, bank.Transfer(testAsset, alice, alice, sdkmath.NewInt(10)), ErrSelfTransfer)
	require.ErrorIs(t, bank.Mint(testAsset, alice, sdkmath.ZeroInt()), ErrInvalidTransferAmount)
}
