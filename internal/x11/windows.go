package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const dockType = "_NET_WM_WINDOW_TYPE_DOCK"

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("invalid geometry %dx%d", width, height)
	}

	// Maximized windows ignore move requests on most WMs.
	_ = c.unmaximizeWindow(windowID)

	// Use EWMH MoveResize for better WM compatibility
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}

	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state); err != nil {
				return err
			}
		}
	}
	return nil
}

// MakeDock sets the dock window type. Most window managers only read the
// type at map time, so a mapped window is unmapped and remapped when the
// type actually changes. It reports whether a change was made.
func (c *Connection) MakeDock(windowID xproto.Window) (bool, error) {
	if c.isDock(windowID) {
		return false, nil
	}

	mapped := c.IsMapped(windowID)
	win := xwindow.New(c.XUtil, windowID)
	if mapped {
		win.Unmap()
	}
	if err := ewmh.WmWindowTypeSet(c.XUtil, windowID, []string{dockType}); err != nil {
		if mapped {
			win.Map()
		}
		return false, fmt.Errorf("set window type: %w", err)
	}
	if mapped {
		win.Map()
	}
	return true, nil
}

// IsMapped reports whether the window is currently viewable.
func (c *Connection) IsMapped(windowID xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return false
	}
	return attrs.MapState == xproto.MapStateViewable
}

// SetStacking requests the above or below state for a window. Passing
// false for both clears them.
func (c *Connection) SetStacking(windowID xproto.Window, above, below bool) error {
	if err := ewmh.WmStateReq(c.XUtil, windowID, stateAction(above), "_NET_WM_STATE_ABOVE"); err != nil {
		return fmt.Errorf("request above state: %w", err)
	}
	if err := ewmh.WmStateReq(c.XUtil, windowID, stateAction(below), "_NET_WM_STATE_BELOW"); err != nil {
		return fmt.Errorf("request below state: %w", err)
	}

	win := xwindow.New(c.XUtil, windowID)
	if above {
		win.Stack(xproto.StackModeAbove)
	} else if below {
		win.Stack(xproto.StackModeBelow)
	}
	return nil
}

func stateAction(on bool) int {
	if on {
		return ewmh.StateAdd
	}
	return ewmh.StateRemove
}

// GetActiveWindow returns the focused client per _NET_ACTIVE_WINDOW.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// IsFullscreen reports whether the window has _NET_WM_STATE_FULLSCREEN.
func (c *Connection) IsFullscreen(windowID xproto.Window) bool {
	if windowID == 0 {
		return false
	}
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_FULLSCREEN" {
			return true
		}
	}
	return false
}
