// Package notify routes shell notifications to the handler registered for
// the receiving window.
package notify

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/edgedock/internal/platform"
)

// ErrListenerExists is returned when a window already has a listener.
var ErrListenerExists = errors.New("window already has a notification listener")

// Kind discriminates decoded shell notifications.
type Kind int

const (
	KindUnknown Kind = iota
	KindPosChanged
	KindFullscreenEnter
	KindFullscreenExit
	KindStateChanged
	KindWindowArrange
)

func (k Kind) String() string {
	switch k {
	case KindPosChanged:
		return "pos-changed"
	case KindFullscreenEnter:
		return "fullscreen-enter"
	case KindFullscreenExit:
		return "fullscreen-exit"
	case KindStateChanged:
		return "state-changed"
	case KindWindowArrange:
		return "window-arrange"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is a decoded notification.
type Event struct {
	Kind   Kind
	Window platform.WindowID
}

// Handler reacts to a decoded event. Handlers run on the event loop and must
// not call back into the registrar; they schedule deferred work instead.
type Handler func(Event)

// Decode turns a raw shell message into an Event.
func Decode(msg platform.Message) Event {
	ev := Event{Window: msg.Window}
	switch msg.WParam {
	case platform.NotifyPosChanged:
		ev.Kind = KindPosChanged
	case platform.NotifyFullscreenApp:
		if msg.LParam != 0 {
			ev.Kind = KindFullscreenEnter
		} else {
			ev.Kind = KindFullscreenExit
		}
	case platform.NotifyStateChange:
		ev.Kind = KindStateChanged
	case platform.NotifyWindowArrange:
		ev.Kind = KindWindowArrange
	}
	return ev
}

type listener struct {
	message platform.MessageID
	handler Handler
}

// Dispatcher maps callback message ids to per-window handlers. It is owned
// by the event loop goroutine and is not safe for concurrent use.
type Dispatcher struct {
	byWindow    map[platform.WindowID]listener
	dispatching int
	logger      *slog.Logger
}

// NewDispatcher creates an empty dispatcher table.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		byWindow: make(map[platform.WindowID]listener),
		logger:   logger,
	}
}

// Subscribe installs the listener for window keyed by the callback message
// id. Only one listener per window may be active.
func (d *Dispatcher) Subscribe(window platform.WindowID, message platform.MessageID, handler Handler) error {
	if _, ok := d.byWindow[window]; ok {
		return fmt.Errorf("subscribe window %d: %w", window, ErrListenerExists)
	}
	d.byWindow[window] = listener{message: message, handler: handler}
	return nil
}

// Unsubscribe removes the window's listener. Removing a missing listener is
// a no-op.
func (d *Dispatcher) Unsubscribe(window platform.WindowID) {
	delete(d.byWindow, window)
}

// Subscribed reports whether window has a listener.
func (d *Dispatcher) Subscribed(window platform.WindowID) bool {
	_, ok := d.byWindow[window]
	return ok
}

// Dispatching reports whether a handler is currently running.
func (d *Dispatcher) Dispatching() bool {
	return d.dispatching > 0
}

// Deliver decodes msg and runs the matching handler. Messages whose id does
// not match the window's listener are dropped. It reports whether a handler
// ran.
func (d *Dispatcher) Deliver(msg platform.Message) bool {
	l, ok := d.byWindow[msg.Window]
	if !ok || l.message != msg.ID {
		return false
	}
	ev := Decode(msg)
	if ev.Kind == KindUnknown {
		d.logger.Debug("ignoring unknown shell notification", "window", msg.Window, "wparam", msg.WParam)
		return false
	}

	d.logger.Debug("shell notification", "window", msg.Window, "event", ev.Kind)
	d.dispatching++
	defer func() { d.dispatching-- }()
	l.handler(ev)
	return true
}
