package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Engine configuration loaded from environment variables. These are populated
// at startup by the LoadConfig function.
var (
	// AdminAccount is the single administrator identity. Fixed for the
	// lifetime of the deployment; there is no rotation operation.
	AdminAccount string
	// BaseAsset is the asset identifier all vault accounting is denominated in.
	BaseAsset string
	// CustodyAccount holds every asset the engine controls (vault deposits
	// and pool reserves alike).
	CustodyAccount string

	// MinDeposit is the smallest accepted vault deposit, in smallest units.
	MinDeposit uint64
	// VaultFeeBps is the withdrawal fee in basis points.
	VaultFeeBps uint64
	// PoolFeeBps is the trading fee applied to new pools, in basis points.
	PoolFeeBps uint64
	// YieldRateBps is the per-distribution yield rate in basis points.
	YieldRateBps uint64
	// YieldIntervalMinutes drives the periodic yield loop; 0 disables it.
	YieldIntervalMinutes uint64
)

// Defaults for settlement parameters. Identity variables have no defaults and
// must be set.
const (
	DefaultMinDeposit   = 1000
	DefaultVaultFeeBps  = 100
	DefaultPoolFeeBps   = 30
	DefaultYieldRateBps = 0
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars.
func LoadConfig() error {
	log.Info().Msg("Loading engine configuration from environment variables...")

	var err error

	AdminAccount, err = getEnv("SVE_ADMIN_ACCOUNT")
	if err != nil {
		return err
	}

	BaseAsset, err = getEnv("SVE_BASE_ASSET")
	if err != nil {
		return err
	}

	CustodyAccount = getEnvWithDefault("SVE_CUSTODY_ACCOUNT", "sve-custody")

	MinDeposit, err = getEnvAsUint64WithDefault("SVE_MIN_DEPOSIT", DefaultMinDeposit)
	if err != nil {
		return err
	}

	VaultFeeBps, err = getEnvAsUint64WithDefault("SVE_VAULT_FEE_BPS", DefaultVaultFeeBps)
	if err != nil {
		return err
	}

	PoolFeeBps, err = getEnvAsUint64WithDefault("SVE_POOL_FEE_BPS", DefaultPoolFeeBps)
	if err != nil {
		return err
	}

	YieldRateBps, err = getEnvAsUint64WithDefault("SVE_YIELD_RATE_BPS", DefaultYieldRateBps)
	if err != nil {
		return err
	}

	YieldIntervalMinutes, err = getEnvAsUint64WithDefault("SVE_YIELD_INTERVAL_MINUTES", 0)
	if err != nil {
		return err
	}

	log.Debug().
		Str("AdminAccount", AdminAccount).
		Str("BaseAsset", BaseAsset).
		Uint64("MinDeposit", MinDeposit).
		Uint64("VaultFeeBps", VaultFeeBps).
		Uint64("PoolFeeBps", PoolFeeBps).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvWithDefault retrieves a string environment variable, falling back to
// the provided default when unset.
func getEnvWithDefault(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsUint64WithDefault retrieves an environment variable as a uint64,
// falling back to the provided default when unset. Returns error if set but
// not parseable.
func getEnvAsUint64WithDefault(key string, fallback uint64) (uint64, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}
