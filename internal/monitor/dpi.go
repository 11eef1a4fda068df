package monitor

import (
	"errors"
	"log/slog"

	"github.com/1broseidon/edgedock/internal/platform"
)

// BaselineDPI is the logical DPI that corresponds to a scale of 1.0.
const BaselineDPI = 96

// DPIQuerier is the subset of platform.Shell used to resolve DPI.
type DPIQuerier interface {
	MonitorDPI(handle platform.MonitorHandle) (dpiX, dpiY uint32, err error)
}

// DPIResolver maps monitors to scale factors relative to BaselineDPI.
// Results are never cached: scaling can change at runtime.
type DPIResolver struct {
	shell  DPIQuerier
	logger *slog.Logger
}

// NewDPIResolver creates a resolver backed by the given shell.
func NewDPIResolver(shell DPIQuerier, logger *slog.Logger) *DPIResolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DPIResolver{shell: shell, logger: logger}
}

// ScaleFor returns the X/Y scale for a monitor. Missing DPI support or a
// failed query yields (1.0, 1.0).
func (r *DPIResolver) ScaleFor(handle platform.MonitorHandle) (float64, float64) {
	dpiX, dpiY, err := r.shell.MonitorDPI(handle)
	if err != nil {
		if !errors.Is(err, platform.ErrDPIUnsupported) {
			r.logger.Debug("dpi query failed, assuming baseline", "monitor", handle, "error", err)
		}
		return 1.0, 1.0
	}
	if dpiX == 0 || dpiY == 0 {
		return 1.0, 1.0
	}
	return float64(dpiX) / BaselineDPI, float64(dpiY) / BaselineDPI
}
