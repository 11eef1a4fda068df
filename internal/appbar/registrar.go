// Package appbar negotiates screen-space reservations with the OS shell.
//
// A window moves between two states, Unregistered and Registered(edge).
// Changing the edge of a registered window is an unregister followed by a
// fresh register, never an in-place edit.
package appbar

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/edgedock/internal/notify"
	"github.com/1broseidon/edgedock/internal/platform"
)

var (
	// ErrInvalidEdge is returned when Register is asked to dock to EdgeNone.
	ErrInvalidEdge = errors.New("appbar: edge must be left, top, right or bottom")
	// ErrReentrant is returned when the registrar is entered from inside a
	// notification handler or another registrar call.
	ErrReentrant = errors.New("appbar: re-entrant registrar call")
)

// ReservationShell is the subset of platform.Shell the registrar drives.
type ReservationShell interface {
	RegisterCallbackMessage(window platform.WindowID) (platform.MessageID, error)
	AppBarNew(window platform.WindowID, callback platform.MessageID) error
	AppBarRemove(window platform.WindowID) error
	AppBarQueryPos(window platform.WindowID, edge platform.Edge, proposed platform.Rect) (platform.Rect, error)
	AppBarSetPos(window platform.WindowID, edge platform.Edge, rect platform.Rect) (platform.Rect, error)
}

// Registration is the shell-side reservation state of one window.
type Registration struct {
	Window          platform.WindowID
	CallbackMessage platform.MessageID
	Edge            platform.Edge
	Registered      bool
	Committed       platform.Rect
}

// Registrar owns every reservation made by this process. It must only be
// used from the event loop goroutine.
type Registrar struct {
	shell      ReservationShell
	dispatcher *notify.Dispatcher
	registry   map[platform.WindowID]*Registration
	busy       bool
	logger     *slog.Logger
}

// NewRegistrar creates a registrar that installs listeners on dispatcher.
func NewRegistrar(shell ReservationShell, dispatcher *notify.Dispatcher, logger *slog.Logger) *Registrar {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registrar{
		shell:      shell,
		dispatcher: dispatcher,
		registry:   make(map[platform.WindowID]*Registration),
		logger:     logger,
	}
}

// Register reserves edge for window, negotiates candidate with the shell and
// commits whatever the shell accepts. The committed rectangle is returned.
// Shell failures are logged and never abort the negotiation.
func (r *Registrar) Register(window platform.WindowID, edge platform.Edge, candidate platform.Rect, handler notify.Handler) (platform.Rect, error) {
	if edge == platform.EdgeNone {
		return platform.Rect{}, ErrInvalidEdge
	}
	if err := r.enter("register"); err != nil {
		return platform.Rect{}, err
	}
	defer r.leave()

	reg, ok := r.registry[window]
	if ok && reg.Registered && reg.Edge != edge {
		r.logger.Debug("edge changed, re-registering", "window", window, "from", reg.Edge, "to", edge)
		r.remove(window, reg)
		ok = false
	}

	if !ok {
		reg = &Registration{Window: window}
		r.registry[window] = reg
	}

	if !reg.Registered {
		msg, err := r.shell.RegisterCallbackMessage(window)
		if err != nil {
			r.logger.Warn("failed to obtain callback message", "window", window, "error", err)
		}
		if err := r.shell.AppBarNew(window, msg); err != nil {
			r.logger.Warn("shell rejected new reservation", "window", window, "error", err)
		}
		if r.dispatcher.Subscribed(window) {
			r.logger.Warn("replacing stale notification listener", "window", window)
			r.dispatcher.Unsubscribe(window)
		}
		if err := r.dispatcher.Subscribe(window, msg, handler); err != nil {
			return platform.Rect{}, fmt.Errorf("install listener: %w", err)
		}
		reg.CallbackMessage = msg
		reg.Registered = true
		r.logger.Info("appbar registered", "window", window, "edge", edge, "callback", msg)
	}
	reg.Edge = edge

	accepted, err := r.shell.AppBarQueryPos(window, edge, candidate)
	if err != nil {
		r.logger.Debug("query position failed, keeping candidate", "window", window, "error", err)
		accepted = candidate
	}
	committed, err := r.shell.AppBarSetPos(window, edge, accepted)
	if err != nil {
		r.logger.Debug("set position failed, keeping accepted rect", "window", window, "error", err)
		committed = accepted
	}
	if committed.Empty() {
		// The shell silently ignored the request; keep what we asked for.
		committed = accepted
	}
	reg.Committed = committed

	r.logger.Debug("appbar position negotiated",
		"window", window,
		"edge", edge,
		"candidate", candidate.String(),
		"accepted", accepted.String(),
		"committed", committed.String())
	return committed, nil
}

// Unregister removes window's reservation. Unregistering a window that is
// not registered is a no-op.
func (r *Registrar) Unregister(window platform.WindowID) error {
	if err := r.enter("unregister"); err != nil {
		return err
	}
	defer r.leave()

	reg, ok := r.registry[window]
	if !ok || !reg.Registered {
		return nil
	}
	r.remove(window, reg)
	return nil
}

// State returns a copy of the window's registration.
func (r *Registrar) State(window platform.WindowID) Registration {
	if reg, ok := r.registry[window]; ok {
		return *reg
	}
	return Registration{Window: window}
}

// Registered reports whether window currently holds a reservation.
func (r *Registrar) Registered(window platform.WindowID) bool {
	reg, ok := r.registry[window]
	return ok && reg.Registered
}

// UnregisterAll removes every reservation, used on shutdown.
func (r *Registrar) UnregisterAll() {
	for window := range r.registry {
		if err := r.Unregister(window); err != nil {
			r.logger.Warn("failed to unregister appbar", "window", window, "error", err)
		}
	}
}

func (r *Registrar) remove(window platform.WindowID, reg *Registration) {
	if err := r.shell.AppBarRemove(window); err != nil {
		r.logger.Debug("shell remove failed", "window", window, "error", err)
	}
	r.dispatcher.Unsubscribe(window)
	delete(r.registry, window)
	reg.Registered = false
	reg.Edge = platform.EdgeNone
	reg.Committed = platform.Rect{}
	r.logger.Info("appbar unregistered", "window", window)
}

func (r *Registrar) enter(op string) error {
	if r.busy || (r.dispatcher != nil && r.dispatcher.Dispatching()) {
		r.logger.Error("rejected re-entrant registrar call", "op", op)
		return ErrReentrant
	}
	r.busy = true
	return nil
}

func (r *Registrar) leave() {
	r.busy = false
}
