// Package dock turns a top-level window into a screen-edge panel: it keeps
// the shell reservation, the window geometry and the Z-order consistent
// with the current settings, monitors and shell notifications.
package dock

import (
	"errors"
	"log/slog"
	"time"

	"github.com/1broseidon/edgedock/internal/appbar"
	"github.com/1broseidon/edgedock/internal/eventloop"
	"github.com/1broseidon/edgedock/internal/geometry"
	"github.com/1broseidon/edgedock/internal/monitor"
	"github.com/1broseidon/edgedock/internal/notify"
	"github.com/1broseidon/edgedock/internal/platform"
)

// Settings are the collaborator-provided inputs of the engine.
type Settings struct {
	Edge         platform.Edge
	Size         geometry.Size
	MonitorIndex int
	AlwaysOnTop  bool
}

// Status is a snapshot of the controller for collaborators.
type Status struct {
	Window          platform.WindowID
	Edge            platform.Edge
	Registered      bool
	Committed       platform.Rect
	Applied         platform.Rect
	MonitorIndex    int
	ResolvedMonitor int
	Monitor         string
	ScaleX          float64
	ScaleY          float64
	AlwaysOnTop     bool
	Fullscreen      bool
	PendingApply    bool
	PendingSettings bool
	Size            geometry.Size
}

// Options configure a Controller.
type Options struct {
	Window     platform.WindowID
	Settings   Settings
	Quiescence time.Duration
	// AfterFunc overrides the debounce timer, for tests.
	AfterFunc eventloop.AfterFunc
	Logger    *slog.Logger
}

// Controller owns the docking state of one window. Every method except
// those on Service must run on the event loop goroutine.
type Controller struct {
	window     platform.WindowID
	shell      platform.Shell
	loop       *eventloop.Loop
	monitors   *monitor.Enumerator
	dispatcher *notify.Dispatcher
	registrar  *appbar.Registrar
	positioner *Positioner
	debouncer  *eventloop.Debouncer
	logger     *slog.Logger

	settings     Settings
	pending      *Settings
	cyclePending bool
	fullscreen   bool
	placedOn     monitor.Descriptor
	closed       bool
}

// NewController wires the engine components for window.
func NewController(shell platform.Shell, loop *eventloop.Loop, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("window", opts.Window)

	dispatcher := notify.NewDispatcher(logger)
	return &Controller{
		window:     opts.Window,
		shell:      shell,
		loop:       loop,
		monitors:   monitor.NewEnumerator(shell, logger),
		dispatcher: dispatcher,
		registrar:  appbar.NewRegistrar(shell, dispatcher, logger),
		positioner: NewPositioner(loop, shell, logger),
		debouncer:  eventloop.NewDebouncer(loop, opts.Quiescence, opts.AfterFunc),
		logger:     logger,
		settings:   opts.Settings,
	}
}

// Start installs the notification sink and applies the initial settings.
func (c *Controller) Start() {
	c.shell.SetNotificationSink(func(msg platform.Message) {
		c.loop.Post(func() { c.dispatcher.Deliver(msg) })
	})
	if c.settings.Edge != platform.EdgeNone {
		c.SetAppBar(c.settings.Edge)
		return
	}
	c.applyZOrder()
}

// Close removes the reservation and stops reacting to notifications.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.debouncer.Cancel()
	c.pending = nil
	c.positioner.Cancel()
	if err := c.registrar.Unregister(c.window); err != nil {
		c.logger.Warn("failed to unregister on close", "error", err)
	}
	c.fullscreen = false
	c.shell.SetNotificationSink(nil)
}

// SetAppBar docks the window to edge. EdgeNone undocks it.
func (c *Controller) SetAppBar(edge platform.Edge) {
	if edge == platform.EdgeNone {
		c.ClearAppBar()
		return
	}
	c.settings.Edge = edge
	if c.pending != nil {
		c.pending.Edge = edge
	}
	c.cycle()
}

// ClearAppBar removes the reservation and leaves the window floating where
// it was last placed.
func (c *Controller) ClearAppBar() {
	c.settings.Edge = platform.EdgeNone
	if c.pending != nil {
		c.pending.Edge = platform.EdgeNone
	}
	c.positioner.Cancel()
	if err := c.registrar.Unregister(c.window); err != nil {
		c.logger.Warn("failed to clear appbar", "error", err)
	}
	// Fullscreen exit is only reported to a registered bar.
	c.fullscreen = false
	c.applyZOrder()
}

// Reposition recomputes and renegotiates the docked geometry. It does
// nothing while the window floats.
func (c *Controller) Reposition() {
	if c.settings.Edge == platform.EdgeNone {
		return
	}
	c.cycle()
}

// UpdateSettings records new settings and applies them once input has been
// quiet for the debounce window. Each call cancels the previous pending
// apply.
func (c *Controller) UpdateSettings(s Settings) {
	c.positioner.Cancel()
	c.pending = &s
	c.debouncer.Trigger(func() {
		if c.pending == nil {
			return
		}
		next := *c.pending
		c.pending = nil
		c.applySettings(next)
	})
}

// ApplySettings applies s immediately, discarding pending updates.
func (c *Controller) ApplySettings(s Settings) {
	c.debouncer.Cancel()
	c.pending = nil
	c.applySettings(s)
}

// Settings returns the settings currently in effect.
func (c *Controller) Settings() Settings { return c.settings }

// Desired returns the pending settings if an update is waiting out the
// debounce window, otherwise the settings in effect.
func (c *Controller) Desired() Settings {
	if c.pending != nil {
		return *c.pending
	}
	return c.settings
}

// SetQuiescence changes the debounce window.
func (c *Controller) SetQuiescence(d time.Duration) { c.debouncer.SetWindow(d) }

// Monitors lists attached monitors, primary first.
func (c *Controller) Monitors() ([]monitor.Descriptor, error) {
	return c.monitors.List()
}

// Status returns a snapshot of the docking state.
func (c *Controller) Status() Status {
	reg := c.registrar.State(c.window)
	return Status{
		Window:          c.window,
		Edge:            c.settings.Edge,
		Registered:      reg.Registered,
		Committed:       reg.Committed,
		Applied:         c.positioner.Applied(),
		MonitorIndex:    c.settings.MonitorIndex,
		ResolvedMonitor: c.placedOn.Index,
		Monitor:         c.placedOn.Name,
		ScaleX:          c.placedOn.ScaleX,
		ScaleY:          c.placedOn.ScaleY,
		AlwaysOnTop:     c.settings.AlwaysOnTop,
		Fullscreen:      c.fullscreen,
		PendingApply:    c.positioner.Pending(),
		PendingSettings: c.debouncer.Pending(),
		Size:            c.settings.Size,
	}
}

func (c *Controller) applySettings(s Settings) {
	prev := c.settings
	c.settings = s
	c.logger.Info("applying settings",
		"edge", s.Edge,
		"width", s.Size.Width,
		"height", s.Size.Height,
		"monitor", s.MonitorIndex,
		"always_on_top", s.AlwaysOnTop)

	switch {
	case s.Edge == platform.EdgeNone && prev.Edge != platform.EdgeNone:
		c.ClearAppBar()
	case s.Edge != platform.EdgeNone:
		c.cycle()
	default:
		c.applyZOrder()
	}
}

// cycle is the unregister, recompute, register, position sequence.
func (c *Controller) cycle() {
	if c.closed {
		return
	}
	edge := c.settings.Edge

	// Drop our own reservation first so the monitor's work area is
	// reported without it.
	if err := c.registrar.Unregister(c.window); err != nil {
		c.logger.Warn("reposition skipped", "error", err)
		return
	}

	mon, err := c.monitors.Resolve(c.settings.MonitorIndex)
	if err != nil {
		c.logger.Warn("no monitor available, leaving window in place", "error", err)
		return
	}
	c.placedOn = mon

	candidate, err := geometry.ComputeWorkArea(mon, edge, c.settings.Size)
	if err != nil {
		c.logger.Error("failed to compute dock area", "edge", edge, "error", err)
		return
	}

	committed, err := c.registrar.Register(c.window, edge, candidate, c.handleEvent)
	if err != nil {
		if errors.Is(err, appbar.ErrReentrant) {
			c.logger.Error("reposition attempted from notification handler")
		} else {
			c.logger.Warn("appbar registration failed", "error", err)
		}
		return
	}

	c.logger.Info("docked",
		"edge", edge,
		"monitor", mon.Name,
		"scale_x", mon.ScaleX,
		"scale_y", mon.ScaleY,
		"rect", committed.String())
	c.positioner.Apply(c.window, committed)
	c.applyZOrder()
}

// handleEvent runs inside the dispatcher; anything touching the registrar
// is deferred to an idle pass.
func (c *Controller) handleEvent(ev notify.Event) {
	switch ev.Kind {
	case notify.KindPosChanged:
		if c.cyclePending {
			return
		}
		c.cyclePending = true
		c.loop.Idle(func() {
			c.cyclePending = false
			if !c.registrar.Registered(c.window) {
				return
			}
			c.Reposition()
		})

	case notify.KindFullscreenEnter:
		c.fullscreen = true
		c.setZOrder(platform.ZOrderBottom)

	case notify.KindFullscreenExit:
		c.fullscreen = false
		if c.settings.AlwaysOnTop {
			c.setZOrder(platform.ZOrderTopMost)
		}
	}
}

func (c *Controller) applyZOrder() {
	switch {
	case c.fullscreen:
		c.setZOrder(platform.ZOrderBottom)
	case c.settings.AlwaysOnTop:
		c.setZOrder(platform.ZOrderTopMost)
	default:
		c.setZOrder(platform.ZOrderNoTopMost)
	}
}

func (c *Controller) setZOrder(z platform.ZOrder) {
	if err := c.shell.SetZOrder(c.window, z); err != nil {
		c.logger.Debug("failed to set z-order", "zorder", z, "error", err)
	}
}
