package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// AllDesktops is the _NET_WM_DESKTOP value for sticky windows.
const AllDesktops = 0xFFFFFFFF

// SetWindowDesktop moves a window to the specified virtual desktop.
// Sends a _NET_WM_DESKTOP client message to the root window per EWMH spec.
// We build the message manually because the xgbutil ewmh.WmDesktopReq
// helper panics on this library version (uint vs int type assertion).
func (c *Connection) SetWindowDesktop(windowID xproto.Window, desktop uint32) error {
	atomReply, err := xproto.InternAtom(c.XUtil.Conn(), false,
		uint16(len("_NET_WM_DESKTOP")), "_NET_WM_DESKTOP").Reply()
	if err != nil {
		return fmt.Errorf("failed to intern _NET_WM_DESKTOP: %w", err)
	}

	const sourceIndication = 2 // pager/direct action
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{desktop, sourceIndication, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// Stick places the window on every virtual desktop. The property is set
// directly for unmapped windows and requested from the WM for mapped ones.
func (c *Connection) Stick(windowID xproto.Window) error {
	if !c.IsMapped(windowID) {
		return ewmh.WmDesktopSet(c.XUtil, windowID, AllDesktops)
	}
	return c.SetWindowDesktop(windowID, AllDesktops)
}

// WatchRoot subscribes to property changes on the root window.
func (c *Connection) WatchRoot() error {
	return xwindow.New(c.XUtil, c.Root).Listen(xproto.EventMaskPropertyChange)
}

// WatchWindow subscribes to property changes on a client window.
func (c *Connection) WatchWindow(windowID xproto.Window) error {
	return xwindow.New(c.XUtil, windowID).Listen(xproto.EventMaskPropertyChange)
}

// AtomName resolves an atom to its name, or "" when unknown.
func (c *Connection) AtomName(atom xproto.Atom) string {
	reply, err := xproto.GetAtomName(c.XUtil.Conn(), atom).Reply()
	if err != nil {
		return ""
	}
	return reply.Name
}
