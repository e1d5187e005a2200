package telemetry

import (
	"time"

	"github.com/rs/zerolog"
)

// Hooks implements pipeline lifecycle callbacks for basic telemetry and
// logging. It is intentionally minimal; metrics backends can be added later
// under this package.
type Hooks struct {
	logger zerolog.Logger
}

// NewHooks constructs a Hooks instance with the provided logger.
func NewHooks(logger zerolog.Logger) *Hooks {
	return &Hooks{logger: logger}
}

// OnRunStart records the beginning of an analysis run.
func (h *Hooks) OnRunStart(runID string, rows int) {
	h.logger.Info().Str("run_id", runID).Int("rows", rows).Msg("analysis run starting")
}

// OnStageDone logs completion of one pipeline stage with its duration.
func (h *Hooks) OnStageDone(runID, stage string, duration time.Duration) {
	h.logger.Info().Str("run_id", runID).Str("stage", stage).Dur("duration", duration).Msg("stage completed")
}

// OnRunComplete records the end of a run and its headline counts.
func (h *Hooks) OnRunComplete(runID string, orders, customers, insights int, duration time.Duration) {
	h.logger.Info().
		Str("run_id", runID).
		Int("orders", orders).
		Int("customers", customers).
		Int("insights", insights).
		Dur("duration", duration).
		Msg("analysis run completed")
}

// OnRunError records a fatal run error.
func (h *Hooks) OnRunError(runID string, err error) {
	h.logger.Error().Str("run_id", runID).Err(err).Msg("analysis run failed")
}
