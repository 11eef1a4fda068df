package dock

import (
	"log/slog"

	"github.com/1broseidon/edgedock/internal/eventloop"
	"github.com/1broseidon/edgedock/internal/platform"
)

// MoveResizer applies geometry to a live window.
type MoveResizer interface {
	MoveResize(window platform.WindowID, rect platform.Rect) error
}

// Positioner applies rectangles at idle priority so the host's own layout
// pass for a restyled window runs first and does not override the result.
// Only the most recently requested rectangle is ever applied.
type Positioner struct {
	loop    *eventloop.Loop
	shell   MoveResizer
	logger  *slog.Logger
	gen     uint64
	pending bool
	applied platform.Rect
}

// NewPositioner creates a positioner bound to loop.
func NewPositioner(loop *eventloop.Loop, shell MoveResizer, logger *slog.Logger) *Positioner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Positioner{loop: loop, shell: shell, logger: logger}
}

// Apply schedules rect for window, superseding any apply still pending.
func (p *Positioner) Apply(window platform.WindowID, rect platform.Rect) {
	p.gen++
	gen := p.gen
	p.pending = true
	p.loop.Idle(func() {
		if gen != p.gen {
			return
		}
		p.pending = false
		if err := p.shell.MoveResize(window, rect); err != nil {
			p.logger.Warn("failed to position window", "window", window, "rect", rect.String(), "error", err)
			return
		}
		p.applied = rect
		p.logger.Debug("window positioned", "window", window, "rect", rect.String())
	})
}

// Cancel drops a pending apply.
func (p *Positioner) Cancel() {
	p.gen++
	p.pending = false
}

// Pending reports whether an apply is scheduled.
func (p *Positioner) Pending() bool { return p.pending }

// Applied returns the last rectangle applied to the window.
func (p *Positioner) Applied() platform.Rect { return p.applied }
