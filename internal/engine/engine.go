package engine

import (
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/nexafin/sve/internal/logger"
	"github.com/nexafin/sve/internal/token"
	"github.com/nexafin/sve/internal/types"
)

// bpsDenominator is the basis-point scale used by every fee and rate.
const bpsDenominator = 10000

// Journal receives a settlement receipt after every committed operation.
// Journal failures are logged and never fail settlement.
type Journal interface {
	RecordReceipt(receipt types.SettlementReceipt) error
}

// positionKey identifies one account's liquidity in one pool.
type positionKey struct {
	account types.AccountID
	asset   types.AssetID
}

// Engine is the ledger-settlement engine: vault share accounting,
// constant-product pools and the yield/access-control gates over both.
//
// All state mutation happens under a single mutex so each operation is
// atomic relative to every other; there is no partial visibility of an
// in-progress operation's writes.
type Engine struct {
	mu     sync.Mutex
	logger zerolog.Logger

	bank    token.Adapter
	journal Journal
	clock   func() time.Time

	// Fixed at construction.
	baseAsset   types.AssetID
	admin       types.AccountID
	custody     types.AccountID
	minDeposit  sdkmath.Int
	vaultFeeBps uint64
	poolFeeBps  uint64

	// Mutable ledger state, guarded by mu.
	paused       bool
	yieldRateBps uint64
	tvl          sdkmath.Int
	totalShares  sdkmath.Int
	accounts     map[types.AccountID]*types.DepositRecord
	pools        map[types.AssetID]*types.Pool
	positions    map[positionKey]sdkmath.Int
	authorized   map[types.AccountID]bool
}

// Config holds the dependencies and parameters for creating a new Engine.
type Config struct {
	Bank         token.Adapter
	Journal      Journal // optional
	BaseAsset    types.AssetID
	Admin        types.AccountID
	Custody      types.AccountID
	MinDeposit   sdkmath.Int
	VaultFeeBps  uint64
	PoolFeeBps   uint64
	YieldRateBps uint64
	Clock        func() time.Time // optional, defaults to time.Now
}

// New creates a settlement engine with an empty ledger.
func New(cfg Config) (*Engine, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("engine configuration validation failed: %w", err)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	e := &Engine{
		logger:       logger.GetForComponent("settlement_engine"),
		bank:         cfg.Bank,
		journal:      cfg.Journal,
		clock:        clock,
		baseAsset:    cfg.BaseAsset,
		admin:        cfg.Admin,
		custody:      cfg.Custody,
		minDeposit:   cfg.MinDeposit,
		vaultFeeBps:  cfg.VaultFeeBps,
		poolFeeBps:   cfg.PoolFeeBps,
		yieldRateBps: cfg.YieldRateBps,
		tvl:          sdkmath.ZeroInt(),
		totalShares:  sdkmath.ZeroInt(),
		accounts:     make(map[types.AccountID]*types.DepositRecord),
		pools:        make(map[types.AssetID]*types.Pool),
		positions:    make(map[positionKey]sdkmath.Int),
		authorized:   make(map[types.AccountID]bool),
	}

	e.logger.Info().
		Str("baseAsset", string(e.baseAsset)).
		Str("admin", string(e.admin)).
		Str("custody", string(e.custody)).
		Str("minDeposit", e.minDeposit.String()).
		Uint64("vaultFeeBps", e.vaultFeeBps).
		Uint64("poolFeeBps", e.poolFeeBps).
		Msg("Settlement engine initialized")

	return e, nil
}

// validateConfig validates the engine configuration.
func validateConfig(cfg Config) error {
	if cfg.Bank == nil {
		return fmt.Errorf("transfer adapter cannot be nil")
	}
	if cfg.BaseAsset == "" {
		return fmt.Errorf("base asset cannot be empty")
	}
	if cfg.Admin == "" {
		return fmt.Errorf("admin account cannot be empty")
	}
	if cfg.Custody == "" {
		return fmt.Errorf("custody account cannot be empty")
	}
	if cfg.Custody == cfg.Admin {
		return fmt.Errorf("custody account must be distinct from the admin account")
	}
	if cfg.MinDeposit.IsNil() || cfg.MinDeposit.IsNegative() {
		return fmt.Errorf("minimum deposit must be non-negative")
	}
	if cfg.VaultFeeBps >= bpsDenominator {
		return fmt.Errorf("vault fee must be below %d bps", bpsDenominator)
	}
	if cfg.PoolFeeBps >= bpsDenominator {
		return fmt.Errorf("pool fee must be below %d bps", bpsDenominator)
	}
	if cfg.YieldRateBps >= bpsDenominator {
		return fmt.Errorf("yield rate must be below %d bps", bpsDenominator)
	}
	return nil
}

// bpsCut returns floor(amount * bps / 10000).
func bpsCut(amount sdkmath.Int, bps uint64) sdkmath.Int {
	return amount.MulRaw(int64(bps)).QuoRaw(bpsDenominator)
}

// emitReceipt forwards a receipt to the journal, if one is configured.
// A journal failure never fails the settled operation.
func (e *Engine) emitReceipt(receipt types.SettlementReceipt) {
	if e.journal == nil {
		return
	}
	if err := e.journal.RecordReceipt(receipt); err != nil {
		e.logger.Error().
			Err(err).
			Str("op_id", receipt.OpID).
			Str("kind", string(receipt.Kind)).
			Msg("Failed to journal settlement receipt")
	}
}
