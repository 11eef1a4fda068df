package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// PanelOptions describes the window created by CreatePanel.
type PanelOptions struct {
	Title      string
	Class      string
	Background uint32
	X, Y       int
	Width      int
	Height     int
}

// CreatePanel creates and maps a sticky dock-typed window. Type and
// desktop are set before the first map so the WM never sees it as a
// normal client.
func (c *Connection) CreatePanel(opts PanelOptions) (xproto.Window, error) {
	if opts.Width < 1 {
		opts.Width = 1
	}
	if opts.Height < 1 {
		opts.Height = 1
	}

	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("generate window id: %w", err)
	}
	if err := win.CreateChecked(c.Root, opts.X, opts.Y, opts.Width, opts.Height,
		xproto.CwBackPixel|xproto.CwEventMask,
		opts.Background, xproto.EventMaskStructureNotify|xproto.EventMaskPropertyChange); err != nil {
		return 0, fmt.Errorf("create window: %w", err)
	}

	if opts.Title != "" {
		if err := ewmh.WmNameSet(c.XUtil, win.Id, opts.Title); err != nil {
			return 0, fmt.Errorf("set title: %w", err)
		}
	}
	if opts.Class != "" {
		class := &icccm.WmClass{Instance: opts.Class, Class: opts.Class}
		if err := icccm.WmClassSet(c.XUtil, win.Id, class); err != nil {
			return 0, fmt.Errorf("set class: %w", err)
		}
	}
	if err := ewmh.WmWindowTypeSet(c.XUtil, win.Id, []string{dockType}); err != nil {
		return 0, fmt.Errorf("set window type: %w", err)
	}
	if err := ewmh.WmDesktopSet(c.XUtil, win.Id, AllDesktops); err != nil {
		return 0, fmt.Errorf("set desktop: %w", err)
	}

	win.Map()
	return win.Id, nil
}

// DestroyWindow destroys a window created by CreatePanel.
func (c *Connection) DestroyWindow(windowID xproto.Window) {
	xwindow.New(c.XUtil, windowID).Destroy()
}
