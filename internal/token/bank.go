package token

import (
	"errors"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/nexafin/sve/internal/logger"
	"github.com/nexafin/sve/internal/types"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidTransferAmount = errors.New("transfer amount must be positive")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrSelfTransfer          = errors.New("transfer from and to accounts are identical")
)

var bankLogger = logger.GetForComponent("token_bank")

// Bank is an in-memory Adapter implementation. It is the deployment's asset
// ledger in single-process mode and the standard test double elsewhere.
type Bank struct {
	mu       sync.RWMutex
	balances map[types.AssetID]map[types.AccountID]sdkmath.Int
	supply   map[types.AssetID]sdkmath.Int
}

// NewBank creates an empty bank.
func NewBank() *Bank {
	return &Bank{
		balances: make(map[types.AssetID]map[types.AccountID]sdkmath.Int),
		supply:   make(map[types.AssetID]sdkmath.Int),
	}
}

// Mint credits freshly issued units of asset to account. Used for seeding
// deployments and tests; the engine never mints.
func (b *Bank) Mint(asset types.AssetID, account types.AccountID, amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return ErrInvalidTransferAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.credit(asset, account, amount)
	supply, ok := b.supply[asset]
	if !ok {
		supply = sdkmath.ZeroInt()
	}
	b.supply[asset] = supply.Add(amount)

	bankLogger.Debug().
		Str("asset", string(asset)).
		Str("account", string(account)).
		Str("amount", amount.String()).
		Msg("Minted units")
	return nil
}

// Transfer moves amount of asset between accounts. All-or-nothing: the
// balances are only touched after every check has passed.
func (b *Bank) Transfer(asset types.AssetID, from, to types.AccountID, amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return ErrInvalidTransferAmount
	}
	if from == to {
		return ErrSelfTransfer
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	fromBalance := b.balanceLocked(asset, from)
	if fromBalance.LT(amount) {
		return fmt.Errorf("%w: account %s holds %s of %s, needs %s",
			ErrInsufficientFunds, from, fromBalance, asset, amount)
	}

	b.balances[asset][from] = fromBalance.Sub(amount)
	b.credit(asset, to, amount)
	return nil
}

// BalanceOf returns the current balance of account in asset.
func (b *Bank) BalanceOf(asset types.AssetID, account types.AccountID) sdkmath.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balanceLocked(asset, account)
}

// TotalSupply returns the outstanding supply of asset.
func (b *Bank) TotalSupply(asset types.AssetID) sdkmath.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	supply, ok := b.supply[asset]
	if !ok {
		return sdkmath.ZeroInt()
	}
	return supply
}

// balanceLocked reads a balance; caller must hold at least the read lock.
func (b *Bank) balanceLocked(asset types.AssetID, account types.AccountID) sdkmath.Int {
	accounts, ok := b.balances[asset]
	if !ok {
		return sdkmath.ZeroInt()
	}
	balance, ok := accounts[account]
	if !ok {
		return sdkmath.ZeroInt()
	}
	return balance
}

// credit adds to a balance; caller must hold the write lock.
func (b *Bank) credit(asset types.AssetID, account types.AccountID, amount sdkmath.Int) {
	accounts, ok := b.balances[asset]
	if !ok {
		accounts = make(map[types.AccountID]sdkmath.Int)
		b.balances[asset] = accounts
	}
	balance, ok := accounts[account]
	if !ok {
		balance = sdkmath.ZeroInt()
	}
	accounts[account] = balance.Add(amount)
}
