package platform

import (
	"errors"
	"fmt"
	"strings"
)

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// MonitorHandle identifies a monitor for the lifetime of one enumeration.
type MonitorHandle uintptr

// MessageID is the shell callback message assigned to a docked window.
type MessageID uint32

// Rect describes a rectangle in absolute desktop pixel coordinates.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Width returns Right-Left.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns Bottom-Top.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Right <= r.Left || r.Bottom <= r.Top }

// Normalize returns r with Right >= Left and Bottom >= Top.
func (r Rect) Normalize() Rect {
	if r.Right < r.Left {
		r.Right = r.Left
	}
	if r.Bottom < r.Top {
		r.Bottom = r.Top
	}
	return r
}

// Intersect returns the overlapping region of r and o (empty when disjoint).
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		Left:   max(r.Left, o.Left),
		Top:    max(r.Top, o.Top),
		Right:  min(r.Right, o.Right),
		Bottom: min(r.Bottom, o.Bottom),
	}
	return out.Normalize()
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.Left, r.Top, r.Right, r.Bottom)
}

// Edge is the screen side a window reserves space against.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeLeft
	EdgeTop
	EdgeRight
	EdgeBottom
)

var edgeNames = map[Edge]string{
	EdgeNone:   "none",
	EdgeLeft:   "left",
	EdgeTop:    "top",
	EdgeRight:  "right",
	EdgeBottom: "bottom",
}

func (e Edge) String() string {
	if name, ok := edgeNames[e]; ok {
		return name
	}
	return fmt.Sprintf("edge(%d)", int(e))
}

// Horizontal reports whether the edge spans the full width (top or bottom).
func (e Edge) Horizontal() bool {
	return e == EdgeTop || e == EdgeBottom
}

// Next returns the following docked edge in left, top, right, bottom order.
// EdgeNone cycles to EdgeLeft.
func (e Edge) Next() Edge {
	switch e {
	case EdgeLeft:
		return EdgeTop
	case EdgeTop:
		return EdgeRight
	case EdgeRight:
		return EdgeBottom
	default:
		return EdgeLeft
	}
}

// ParseEdge converts a case-insensitive edge name. An empty string is EdgeNone.
func ParseEdge(s string) (Edge, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" || name == "floating" {
		return EdgeNone, nil
	}
	for edge, n := range edgeNames {
		if n == name {
			return edge, nil
		}
	}
	return EdgeNone, fmt.Errorf("unknown dock edge %q (valid: left, top, right, bottom, none)", s)
}

// MonitorInfo is the raw per-monitor record reported by the shell.
type MonitorInfo struct {
	Handle  MonitorHandle
	Name    string
	Bounds  Rect
	Work    Rect
	Primary bool
}

// Shell notification codes carried in Message.WParam. The values match the
// Win32 ABN_* constants; other backends emit the same codes.
const (
	NotifyStateChange   uintptr = 0
	NotifyPosChanged    uintptr = 1
	NotifyFullscreenApp uintptr = 2
	NotifyWindowArrange uintptr = 3
)

// Message is a raw shell notification delivered to a registered window.
type Message struct {
	Window WindowID
	ID     MessageID
	WParam uintptr
	LParam uintptr
}

// ZOrder selects a Z-order sentinel for SetZOrder.
type ZOrder int

const (
	ZOrderTopMost ZOrder = iota
	ZOrderNoTopMost
	ZOrderBottom
)

func (z ZOrder) String() string {
	switch z {
	case ZOrderTopMost:
		return "topmost"
	case ZOrderNoTopMost:
		return "notopmost"
	case ZOrderBottom:
		return "bottom"
	}
	return fmt.Sprintf("zorder(%d)", int(z))
}

// ErrDPIUnsupported is returned by MonitorDPI when the platform cannot report
// per-monitor DPI.
var ErrDPIUnsupported = errors.New("per-monitor DPI not supported")

// Shell abstracts the operating system's window shell: monitor queries, the
// screen-space reservation protocol, and window placement.
//
// Implementations are driven from a single goroutine. Notifications are
// handed to the sink from whatever goroutine the backend reads events on; the
// sink is responsible for moving them onto the engine's loop.
type Shell interface {
	Monitors() ([]MonitorInfo, error)
	MonitorDPI(handle MonitorHandle) (dpiX, dpiY uint32, err error)

	RegisterCallbackMessage(window WindowID) (MessageID, error)
	AppBarNew(window WindowID, callback MessageID) error
	AppBarRemove(window WindowID) error
	AppBarQueryPos(window WindowID, edge Edge, proposed Rect) (Rect, error)
	AppBarSetPos(window WindowID, edge Edge, rect Rect) (Rect, error)

	MoveResize(window WindowID, rect Rect) error
	SetZOrder(window WindowID, z ZOrder) error

	SetNotificationSink(sink func(Message))
}
