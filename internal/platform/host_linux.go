//go:build linux

package platform

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/edgedock/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

type x11Host struct {
	conn    *x11.Connection
	shell   *X11Shell
	window  WindowID
	created bool
	once    sync.Once
}

// OpenHost connects to the X server and creates (or adopts) the dock
// window.
func OpenHost(opts HostOptions, logger *slog.Logger) (Host, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}

	h := &x11Host{conn: conn, shell: NewX11Shell(conn, logger), window: opts.Window}
	if h.window == 0 {
		win, err := conn.CreatePanel(x11.PanelOptions{
			Title:      opts.Title,
			Class:      opts.Class,
			Background: opts.Background,
			Width:      1,
			Height:     1,
		})
		if err != nil {
			conn.Close()
			return nil, err
		}
		h.window = WindowID(win)
		h.created = true
	}

	if err := h.shell.Listen(); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

func (h *x11Host) Shell() Shell     { return h.shell }
func (h *x11Host) Window() WindowID { return h.window }

func (h *x11Host) Run() error {
	h.conn.EventLoop()
	return nil
}

func (h *x11Host) Close() {
	h.once.Do(func() {
		if h.created {
			h.conn.DestroyWindow(xproto.Window(h.window))
		}
		h.conn.Quit()
		h.conn.Close()
	})
}
