package agent

import (
	"sync/atomic"

	apperrors "persona-agent/errors"

	"go.uber.org/zap"
)

// FallbackGate decides per turn whether a weak local match is handed to the
// remote generator. An invalid credential closes the gate for the rest of
// the process lifetime.
type FallbackGate struct {
	threshold  float64
	configured bool
	disabled   atomic.Bool
	logger     *zap.Logger
}

// NewFallbackGate returns a gate that can open only when configured is true.
func NewFallbackGate(threshold float64, configured bool, logger *zap.Logger) *FallbackGate {
	if !configured {
		logger.Info("Remote fallback disabled; replies will come from local content only",
			zap.Float64("threshold", threshold))
	}
	return &FallbackGate{
		threshold:  threshold,
		configured: configured,
		logger:     logger,
	}
}

// Enabled reports whether the remote path is still available.
func (g *FallbackGate) Enabled() bool {
	return g.configured && !g.disabled.Load()
}

// UseRemote reports whether a turn with the given winning score should go
// to the remote generator.
func (g *FallbackGate) UseRemote(score float64) bool {
	return g.Enabled() && score < g.threshold
}

// ReportFailure records a remote failure. Only credential failures change
// gate state.
func (g *FallbackGate) ReportFailure(err error) {
	if !apperrors.IsInvalidCredential(err) {
		return
	}
	if g.disabled.CompareAndSwap(false, true) {
		g.logger.Error("Remote credential rejected; remote fallback disabled until restart", zap.Error(err))
	}
}
