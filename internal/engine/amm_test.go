package engine

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/nexafin/sve/internal/token"
	"github.com/nexafin/sve/internal/types"
)

func createTestPool(t *testing.T, eng *Engine) {
	t.Helper()
	key, err := eng.CreatePool(alice, atomAsset, sdkmath.NewInt(500_000), sdkmath.NewInt(1_000_000))
	require.NoError(t, err)
	require.Equal(t, atomAsset, key)
}

func TestCreatePool(t *testing.T) {
	eng, bank := newTestEngine(t)
	createTestPool(t, eng)

	info, err := eng.PoolInfo(atomAsset)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(500_000), info.ReserveBase)
	require.Equal(t, sdkmath.NewInt(1_000_000), info.ReservePaired)
	// liquidity supply is the literal reserve product
	require.Equal(t, sdkmath.NewInt(500_000_000_000), info.LiquiditySupply)
	require.Equal(t, uint64(30), info.FeeRateBps)

	// Full initial supply goes to the creator.
	require.Equal(t, sdkmath.NewInt(500_000_000_000), eng.PositionOf(alice, atomAsset))

	require.Equal(t, sdkmath.NewInt(500_000), bank.BalanceOf(baseAsset, custodyAcct))
	require.Equal(t, sdkmath.NewInt(1_000_000), bank.BalanceOf(atomAsset, custodyAcct))
}

func TestCreatePoolValidation(t *testing.T) {
	eng, _ := newTestEngine(t)

	_, err := eng.CreatePool(alice, atomAsset, sdkmath.ZeroInt(), sdkmath.NewInt(1))
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = eng.CreatePool(alice, atomAsset, sdkmath.NewInt(1), sdkmath.NewInt(-1))
	require.ErrorIs(t, err, ErrInvalidAmount)

	createTestPool(t, eng)
	_, err = eng.CreatePool(bob, atomAsset, sdkmath.NewInt(1000), sdkmath.NewInt(1000))
	require.ErrorIs(t, err, ErrPoolExists)
}

func TestCreatePoolCompensatesFirstTransfer(t *testing.T) {
	eng, bank := newTestEngine(t)

	// bob's paired-asset balance is drained so the second transfer fails.
	require.NoError(t, bank.Transfer(atomAsset, bob, alice, sdkmath.NewInt(100_000_000)))
	baseBefore := bank.BalanceOf(baseAsset, bob)

	_, err := eng.CreatePool(bob, atomAsset, sdkmath.NewInt(500_000), sdkmath.NewInt(1_000_000))
	require.ErrorIs(t, err, token.ErrInsufficientFunds)

	// The base leg was refunded; no pool was registered.
	require.Equal(t, baseBefore, bank.BalanceOf(baseAsset, bob))
	require.True(t, bank.BalanceOf(baseAsset, custodyAcct).IsZero())
	_, err = eng.PoolInfo(atomAsset)
	require.ErrorIs(t, err, ErrPoolNotFound)
}

func TestSwapConstantProduct(t *testing.T) {
	eng, bank := newTestEngine(t)
	createTestPool(t, eng)

	bobPairedBefore := bank.BalanceOf(atomAsset, bob)

	// fee = floor(100000 * 30 / 10000) = 300, net = 99700
	// out = floor(99700 * 1000000 / (500000 + 99700)) = floor(99700000000 / 599700)
	out, err := eng.Swap(bob, atomAsset, sdkmath.NewInt(100_000), sdkmath.ZeroInt())
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(99_700_000_000).Quo(sdkmath.NewInt(599_700)), out)
	require.Equal(t, sdkmath.NewInt(166_249), out)

	info, err := eng.PoolInfo(atomAsset)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(599_700), info.ReserveBase)
	require.Equal(t, sdkmath.NewInt(833_751), info.ReservePaired)

	// The reserve product never decreases across a swap.
	before := sdkmath.NewInt(500_000).Mul(sdkmath.NewInt(1_000_000))
	after := info.ReserveBase.Mul(info.ReservePaired)
	require.True(t, after.GTE(before))

	require.Equal(t, bobPairedBefore.Add(out), bank.BalanceOf(atomAsset, bob))
}

func TestSwapSlippageRejection(t *testing.T) {
	eng, bank := newTestEngine(t)
	createTestPool(t, eng)

	baseBefore := bank.BalanceOf(baseAsset, bob)

	// Demand one unit more than the formula can produce.
	_, err := eng.Swap(bob, atomAsset, sdkmath.NewInt(100_000), sdkmath.NewInt(166_250))
	require.ErrorIs(t, err, ErrSlippageExceeded)

	// Nothing moved and reserves are untouched.
	require.Equal(t, baseBefore, bank.BalanceOf(baseAsset, bob))
	info, infoErr := eng.PoolInfo(atomAsset)
	require.NoError(t, infoErr)
	require.Equal(t, sdkmath.NewInt(500_000), info.ReserveBase)
	require.Equal(t, sdkmath.NewInt(1_000_000), info.ReservePaired)
}

func TestSwapValidation(t *testing.T) {
	eng, _ := newTestEngine(t)

	_, err := eng.Swap(bob, atomAsset, sdkmath.NewInt(1000), sdkmath.ZeroInt())
	require.ErrorIs(t, err, ErrPoolNotFound)

	createTestPool(t, eng)
	_, err = eng.Swap(bob, atomAsset, sdkmath.ZeroInt(), sdkmath.ZeroInt())
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSwapZeroOutputIsInsufficientLiquidity(t *testing.T) {
	eng, bank := newTestEngine(t)

	// A pool heavily skewed toward the base side truncates small swaps to
	// zero output.
	thinAsset := types.AssetID("uosmo")
	require.NoError(t, bank.Mint(thinAsset, alice, sdkmath.NewInt(1_000)))
	_, err := eng.CreatePool(alice, thinAsset, sdkmath.NewInt(1_000_000), sdkmath.NewInt(1_000))
	require.NoError(t, err)

	// out = floor(10 * 1000 / (1000000 + 10)) = 0
	_, err = eng.Swap(bob, thinAsset, sdkmath.NewInt(10), sdkmath.ZeroInt())
	require.ErrorIs(t, err, ErrInsufficientLiquidity)
}

func TestSwapCompensatesInputOnPayoutFailure(t *testing.T) {
	eng, bank := newTestEngine(t)
	createTestPool(t, eng)

	// Drain the paired reserve out of custody so the payout leg fails.
	require.NoError(t, eng.EmergencyWithdraw(adminAcct, atomAsset, sdkmath.NewInt(1_000_000), adminAcct))

	baseBefore := bank.BalanceOf(baseAsset, bob)
	_, err := eng.Swap(bob, atomAsset, sdkmath.NewInt(100_000), sdkmath.ZeroInt())
	require.ErrorIs(t, err, token.ErrInsufficientFunds)

	// Input leg was refunded and the reserves were never updated.
	require.Equal(t, baseBefore, bank.BalanceOf(baseAsset, bob))
	info, infoErr := eng.PoolInfo(atomAsset)
	require.NoError(t, infoErr)
	require.Equal(t, sdkmath.NewInt(500_000), info.ReserveBase)
	require.Equal(t, sdkmath.NewInt(1_000_000), info.ReservePaired)
}

func TestAddLiquidityBalanced(t *testing.T) {
	eng, _ := newTestEngine(t)
	createTestPool(t, eng)

	// A perfectly proportional add doubles both sides and the supply.
	minted, err := eng.AddLiquidity(bob, atomAsset, sdkmath.NewInt(500_000), sdkmath.NewInt(1_000_000), sdkmath.ZeroInt())
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(500_000_000_000), minted)

	info, err := eng.PoolInfo(atomAsset)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(1_000_000), info.ReserveBase)
	require.Equal(t, sdkmath.NewInt(2_000_000), info.ReservePaired)
	require.Equal(t, sdkmath.NewInt(1_000_000_000_000), info.LiquiditySupply)
	require.Equal(t, sdkmath.NewInt(500_000_000_000), eng.PositionOf(bob, atomAsset))
}

func TestAddLiquidityLimitingSide(t *testing.T) {
	eng, _ := newTestEngine(t)
	createTestPool(t, eng)

	// Paired side offers half the proportional amount, so it limits the mint:
	// byBase   = 500000 * 500000000000 / 500000  = 500000000000
	// byPaired = 500000 * 500000000000 / 1000000 = 250000000000
	minted, err := eng.AddLiquidity(bob, atomAsset, sdkmath.NewInt(500_000), sdkmath.NewInt(500_000), sdkmath.ZeroInt())
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(250_000_000_000), minted)

	// Both full amounts still enter the reserves; the base-side excess is
	// donated to existing holders.
	info, err := eng.PoolInfo(atomAsset)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(1_000_000), info.ReserveBase)
	require.Equal(t, sdkmath.NewInt(1_500_000), info.ReservePaired)
	require.Equal(t, sdkmath.NewInt(750_000_000_000), info.LiquiditySupply)
}

func TestAddLiquidityCompensatesFirstTransfer(t *testing.T) {
	eng, bank := newTestEngine(t)
	createTestPool(t, eng)

	// bob's paired-asset balance is drained so the second transfer fails.
	require.NoError(t, bank.Transfer(atomAsset, bob, alice, sdkmath.NewInt(100_000_000)))
	baseBefore := bank.BalanceOf(baseAsset, bob)

	_, err := eng.AddLiquidity(bob, atomAsset, sdkmath.NewInt(500_000), sdkmath.NewInt(1_000_000), sdkmath.ZeroInt())
	require.ErrorIs(t, err, token.ErrInsufficientFunds)

	// The base leg was refunded; reserves, supply and positions are untouched.
	require.Equal(t, baseBefore, bank.BalanceOf(baseAsset, bob))
	info, infoErr := eng.PoolInfo(atomAsset)
	require.NoError(t, infoErr)
	require.Equal(t, sdkmath.NewInt(500_000), info.ReserveBase)
	require.Equal(t, sdkmath.NewInt(1_000_000), info.ReservePaired)
	require.Equal(t, sdkmath.NewInt(500_000_000_000), info.LiquiditySupply)
	require.True(t, eng.PositionOf(bob, atomAsset).IsZero())
}

func TestAddLiquiditySlippageRejection(t *testing.T) {
	eng, bank := newTestEngine(t)
	createTestPool(t, eng)

	baseBefore := bank.BalanceOf(baseAsset, bob)

	_, err := eng.AddLiquidity(bob, atomAsset, sdkmath.NewInt(500_000), sdkmath.NewInt(500_000), sdkmath.NewInt(250_000_000_001))
	require.ErrorIs(t, err, ErrSlippageExceeded)

	require.Equal(t, baseBefore, bank.BalanceOf(baseAsset, bob))
	info, infoErr := eng.PoolInfo(atomAsset)
	require.NoError(t, infoErr)
	require.Equal(t, sdkmath.NewInt(500_000), info.ReserveBase)
	require.True(t, eng.PositionOf(bob, atomAsset).IsZero())
}

func TestAddLiquidityValidation(t *testing.T) {
	eng, _ := newTestEngine(t)

	_, err := eng.AddLiquidity(bob, atomAsset, sdkmath.NewInt(1000), sdkmath.NewInt(1000), sdkmath.ZeroInt())
	require.ErrorIs(t, err, ErrPoolNotFound)

	createTestPool(t, eng)
	_, err = eng.AddLiquidity(bob, atomAsset, sdkmath.ZeroInt(), sdkmath.NewInt(1000), sdkmath.ZeroInt())
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestPoolsListing(t *testing.T) {
	eng, _ := newTestEngine(t)
	require.Empty(t, eng.Pools())

	createTestPool(t, eng)
	pools := eng.Pools()
	require.Len(t, pools, 1)
	require.Equal(t, atomAsset, pools[0].PairedAsset)
}
