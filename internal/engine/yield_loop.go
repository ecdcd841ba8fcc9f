package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nexafin/sve/internal/types"
)

// RunYieldLoop distributes yield through the normal authorized path on a
// fixed interval until the context is cancelled. The caller account must be
// in the authorization set or every cycle will fail.
//
// The first distribution runs immediately; subsequent ones follow the ticker.
func (e *Engine) RunYieldLoop(ctx context.Context, interval time.Duration, caller types.AccountID) {
	loopLogger := e.logger.With().Str("component", "yield_loop").Logger()
	loopLogger.Info().
		Dur("interval", interval).
		Str("caller", string(caller)).
		Msg("Starting yield distribution loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cycle := 1
	e.runYieldCycle(loopLogger, cycle, caller)

	for {
		select {
		case <-ctx.Done():
			loopLogger.Info().Msg("Yield loop stopped due to context cancellation")
			return
		case <-ticker.C:
			cycle++
			e.runYieldCycle(loopLogger, cycle, caller)
		}
	}
}

// runYieldCycle executes a single distribution with a traceable cycle ID.
func (e *Engine) runYieldCycle(loopLogger zerolog.Logger, cycle int, caller types.AccountID) {
	cycleID := uuid.New().String()
	cycleLogger := loopLogger.With().Str("cycle_id", cycleID).Int("cycle", cycle).Logger()

	yield, err := e.DistributeYield(caller)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Yield distribution cycle failed")
		return
	}
	cycleLogger.Info().Str("yield", yield.String()).Msg("Yield distribution cycle completed")
}
