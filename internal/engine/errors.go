package engine

import "errors"

// Settlement error taxonomy. Every fallible operation returns exactly one of
// these kinds, or a transfer adapter error wrapped with %w and otherwise
// untouched.
var (
	// ErrNotAuthorized indicates the caller is neither the administrator nor
	// an authorized caller for the attempted operation.
	ErrNotAuthorized = errors.New("engine: caller not authorized")
	// ErrVaultPaused indicates deposits are gated off by the pause flag.
	ErrVaultPaused = errors.New("engine: vault is paused")
	// ErrBelowMinimumDeposit indicates the deposit is under the configured floor.
	ErrBelowMinimumDeposit = errors.New("engine: deposit below minimum")
	// ErrInvalidAmount indicates a zero, negative or nil amount.
	ErrInvalidAmount = errors.New("engine: invalid amount")
	// ErrInsufficientShares indicates the account holds fewer shares than requested.
	ErrInsufficientShares = errors.New("engine: insufficient share balance")
	// ErrInsufficientLiquidity indicates the vault or pool cannot cover the requested value.
	ErrInsufficientLiquidity = errors.New("engine: insufficient liquidity")
	// ErrSlippageExceeded indicates the computed output fell below the caller's minimum.
	ErrSlippageExceeded = errors.New("engine: slippage tolerance exceeded")
	// ErrPoolNotFound indicates no pool exists for the paired asset.
	ErrPoolNotFound = errors.New("engine: pool not found")
	// ErrPoolExists indicates a pool for the paired asset already exists.
	ErrPoolExists = errors.New("engine: pool already exists")
)
