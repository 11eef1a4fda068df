package hotkeys

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/edgedock/internal/config"
	"github.com/1broseidon/edgedock/internal/platform"
	"github.com/1broseidon/edgedock/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// actionTimeout bounds how long a hotkey waits for the engine.
const actionTimeout = 5 * time.Second

// Actions are the dock operations reachable from the keyboard.
type Actions interface {
	Toggle(ctx context.Context) (platform.Edge, error)
	CycleEdge(ctx context.Context) (platform.Edge, error)
	Reposition(ctx context.Context) error
}

// Binding pairs a key sequence with a named action.
type Binding struct {
	Name string
	Keys string
	Run  func(ctx context.Context) error
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	actions Actions
	logger  *slog.Logger

	mu    sync.Mutex
	bound []Binding
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(conn *x11.Connection, actions Actions, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})

	return &Handler{
		xu:      conn.XUtil,
		root:    conn.Root,
		actions: actions,
		logger:  logger,
	}
}

// Bindings lists the configured hotkeys. Empty sequences are skipped.
func Bindings(cfg config.HotkeyConfig, actions Actions) []Binding {
	all := []Binding{
		{Name: "toggle", Keys: cfg.Toggle, Run: func(ctx context.Context) error {
			_, err := actions.Toggle(ctx)
			return err
		}},
		{Name: "cycle_edge", Keys: cfg.CycleEdge, Run: func(ctx context.Context) error {
			_, err := actions.CycleEdge(ctx)
			return err
		}},
		{Name: "reposition", Keys: cfg.Reposition, Run: actions.Reposition},
	}

	out := all[:0]
	for _, b := range all {
		b.Keys = strings.TrimSpace(b.Keys)
		if b.Keys == "" {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Apply replaces every grab on the root window with the bindings from cfg.
// A sequence that fails to grab is logged and skipped; the first such error
// is returned after the rest are bound.
func (h *Handler) Apply(cfg config.HotkeyConfig) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	keybind.Detach(h.xu, h.root)
	h.bound = nil

	var firstErr error
	for _, b := range Bindings(cfg, h.actions) {
		if err := h.RegisterFunc(b.Keys, h.runner(b)); err != nil {
			h.logger.Warn("failed to register hotkey", "action", b.Name, "keys", b.Keys, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("hotkey %s (%s): %w", b.Name, b.Keys, err)
			}
			continue
		}
		h.bound = append(h.bound, b)
		h.logger.Info("hotkey registered", "action", b.Name, "keys", b.Keys)
	}
	return firstErr
}

// Bound returns the bindings that grabbed successfully.
func (h *Handler) Bound() []Binding {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Binding(nil), h.bound...)
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// runner moves the action off the X event goroutine so a slow engine does
// not stall event delivery.
func (h *Handler) runner(b Binding) func() {
	return func() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
			defer cancel()
			h.logger.Debug("hotkey triggered", "action", b.Name)
			if err := b.Run(ctx); err != nil {
				h.logger.Warn("hotkey action failed", "action", b.Name, "error", err)
			}
		}()
	}
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	xevent.IgnoreMods = ignoreMasks(caps, numLock, scrollLock)
}

// ignoreMasks returns every combination of the lock modifiers, including
// none, so a grab fires regardless of lock state.
func ignoreMasks(caps, numLock, scrollLock uint16) []uint16 {
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	ignore := []uint16{0}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		ignore = append(ignore, mask)
	}
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
