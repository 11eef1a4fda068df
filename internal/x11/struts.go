package x11

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
)

// DockStrut is the strut reserved by one dock window.
type DockStrut struct {
	Window  xproto.Window
	Partial ewmh.WmStrutPartial
}

type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

// DockStruts returns the struts of every dock window in the client list,
// skipping windows in exclude. Windows are sorted by id.
func (c *Connection) DockStruts(exclude map[xproto.Window]bool) ([]DockStrut, error) {
	rootWidth, rootHeight, err := c.RootSize()
	if err != nil {
		return nil, err
	}

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, err
	}

	var out []DockStrut
	for _, windowID := range clients {
		if exclude[windowID] || !c.isDock(windowID) {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			out = append(out, DockStrut{Window: windowID, Partial: *sp})
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			out = append(out, DockStrut{Window: windowID, Partial: ewmh.WmStrutPartial{
				Left:         s.Left,
				Right:        s.Right,
				Top:          s.Top,
				Bottom:       s.Bottom,
				LeftStartY:   0,
				LeftEndY:     uint(rootHeight - 1),
				RightStartY:  0,
				RightEndY:    uint(rootHeight - 1),
				TopStartX:    0,
				TopEndX:      uint(rootWidth - 1),
				BottomStartX: 0,
				BottomEndX:   uint(rootWidth - 1),
			}})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Window < out[j].Window })
	return out, nil
}

// StrutFingerprint summarizes struts so callers can detect changes.
func StrutFingerprint(struts []DockStrut) string {
	var b strings.Builder
	for _, s := range struts {
		p := s.Partial
		fmt.Fprintf(&b, "%d:%d,%d,%d,%d/%d-%d,%d-%d,%d-%d,%d-%d;",
			s.Window, p.Left, p.Right, p.Top, p.Bottom,
			p.LeftStartY, p.LeftEndY, p.RightStartY, p.RightEndY,
			p.TopStartX, p.TopEndX, p.BottomStartX, p.BottomEndX)
	}
	return b.String()
}

// WorkArea shrinks monitor by the given struts and returns the usable
// region as x, y, width, height.
func WorkArea(monitor Monitor, rootWidth, rootHeight int, struts []DockStrut) (int, int, int, int) {
	var acc dockStruts
	for i := range struts {
		updateStrutsForMonitor(&monitor, rootWidth, rootHeight, &struts[i].Partial, &acc)
	}

	x := monitor.X + acc.left
	y := monitor.Y + acc.top
	w := monitor.Width - (acc.left + acc.right)
	h := monitor.Height - (acc.top + acc.bottom)

	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return x, y, w, h
}

// SetStrut writes both strut properties for window.
func (c *Connection) SetStrut(windowID xproto.Window, sp ewmh.WmStrutPartial) error {
	if err := ewmh.WmStrutPartialSet(c.XUtil, windowID, &sp); err != nil {
		return fmt.Errorf("set _NET_WM_STRUT_PARTIAL: %w", err)
	}
	strut := ewmh.WmStrut{Left: sp.Left, Right: sp.Right, Top: sp.Top, Bottom: sp.Bottom}
	if err := ewmh.WmStrutSet(c.XUtil, windowID, &strut); err != nil {
		return fmt.Errorf("set _NET_WM_STRUT: %w", err)
	}
	return nil
}

// ClearStrut deletes both strut properties from window.
func (c *Connection) ClearStrut(windowID xproto.Window) error {
	for _, name := range []string{"_NET_WM_STRUT_PARTIAL", "_NET_WM_STRUT"} {
		atom, err := xprop.Atm(c.XUtil, name)
		if err != nil {
			return fmt.Errorf("intern %s: %w", name, err)
		}
		if err := xproto.DeletePropertyChecked(c.XUtil.Conn(), windowID, atom).Check(); err != nil {
			return fmt.Errorf("delete %s: %w", name, err)
		}
	}
	return nil
}

func (c *Connection) isDock(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

func updateStrutsForMonitor(monitor *Monitor, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	monX1 := monitor.X
	monY1 := monitor.Y
	monX2 := monitor.X + monitor.Width
	monY2 := monitor.Y + monitor.Height

	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		x1 := int(sp.TopStartX)
		x2 := int(sp.TopEndX) + 1
		y1 := 0
		y2 := int(sp.Top)
		if intersects(monX1, monY1, monX2, monY2, x1, y1, x2, y2) {
			acc.top = max(acc.top, intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2).h)
		}
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		x1 := int(sp.BottomStartX)
		x2 := int(sp.BottomEndX) + 1
		y2 := rootHeight
		y1 := rootHeight - int(sp.Bottom)
		if intersects(monX1, monY1, monX2, monY2, x1, y1, x2, y2) {
			acc.bottom = max(acc.bottom, intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2).h)
		}
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		x1 := 0
		x2 := int(sp.Left)
		y1 := int(sp.LeftStartY)
		y2 := int(sp.LeftEndY) + 1
		if intersects(monX1, monY1, monX2, monY2, x1, y1, x2, y2) {
			acc.left = max(acc.left, intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2).w)
		}
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		x2 := rootWidth
		x1 := rootWidth - int(sp.Right)
		y1 := int(sp.RightStartY)
		y2 := int(sp.RightEndY) + 1
		if intersects(monX1, monY1, monX2, monY2, x1, y1, x2, y2) {
			acc.right = max(acc.right, intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2).w)
		}
	}
}

type intersection struct {
	w int
	h int
}

func intersectionSize(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) intersection {
	x1 := max(ax1, bx1)
	y1 := max(ay1, by1)
	x2 := min(ax2, bx2)
	y2 := min(ay2, by2)

	if x2 <= x1 || y2 <= y1 {
		return intersection{}
	}
	return intersection{w: x2 - x1, h: y2 - y1}
}

func intersects(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) bool {
	isect := intersectionSize(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2)
	return isect.w > 0 && isect.h > 0
}
