//go:build linux

package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/1broseidon/edgedock/internal/x11"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"
)

// ErrNotRegistered is returned for reservation calls on a window that has
// not been through AppBarNew.
var ErrNotRegistered = errors.New("window is not a registered appbar")

// ErrAlreadyRegistered is returned by AppBarNew for a registered window.
var ErrAlreadyRegistered = errors.New("window is already a registered appbar")

// firstCallbackMessage mirrors the range RegisterWindowMessage hands out.
const firstCallbackMessage MessageID = 0xC000

// X11Shell implements the reservation protocol on top of EWMH struts.
//
// A registered window becomes a sticky _NET_WM_WINDOW_TYPE_DOCK client and
// its committed rectangle is published as _NET_WM_STRUT_PARTIAL. Struts are
// relative to the root window, so a dock on an inner monitor edge reserves
// that band across the whole root.
type X11Shell struct {
	conn   *x11.Connection
	logger *slog.Logger

	mu         sync.Mutex
	messages   map[WindowID]MessageID
	nextMsg    MessageID
	registered map[WindowID]MessageID
	sink       func(Message)
	clearStrut func(xproto.Window) error

	// Event goroutine state.
	fingerprint string
	active      xproto.Window
	fullscreen  bool
}

var _ Shell = (*X11Shell)(nil)

// NewX11Shell wraps an existing X11 connection.
func NewX11Shell(conn *x11.Connection, logger *slog.Logger) *X11Shell {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &X11Shell{
		conn:       conn,
		logger:     logger,
		messages:   make(map[WindowID]MessageID),
		nextMsg:    firstCallbackMessage,
		registered: make(map[WindowID]MessageID),
		clearStrut: conn.ClearStrut,
	}
}

// Connection returns the underlying X11 connection.
func (s *X11Shell) Connection() *x11.Connection {
	return s.conn
}

// Listen subscribes to the root window and RandR events that drive
// notifications. Events are delivered while the connection's EventLoop
// runs.
func (s *X11Shell) Listen() error {
	if err := s.conn.WatchRoot(); err != nil {
		return fmt.Errorf("watch root window: %w", err)
	}
	if err := s.conn.ListenScreenChanges(); err != nil {
		// Without RandR only strut changes are reported.
		s.logger.Warn("randr notifications unavailable", "error", err)
	}

	s.fingerprint = s.otherStrutsFingerprint()

	xevent.PropertyNotifyFun(s.onRootProperty).Connect(s.conn.XUtil, s.conn.Root)
	xevent.HookFun(s.onRawEvent).Connect(s.conn.XUtil)

	s.trackActiveWindow()
	return nil
}

func (s *X11Shell) Monitors() ([]MonitorInfo, error) {
	mons, err := s.conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	rootW, rootH, err := s.conn.RootSize()
	if err != nil {
		return nil, fmt.Errorf("root geometry: %w", err)
	}
	struts, err := s.conn.DockStruts(nil)
	if err != nil {
		s.logger.Debug("failed to read dock struts", "error", err)
	}

	out := make([]MonitorInfo, 0, len(mons))
	for _, m := range mons {
		x, y, w, h := x11.WorkArea(m, rootW, rootH, struts)
		out = append(out, MonitorInfo{
			Handle:  MonitorHandle(m.CRTC),
			Name:    m.Name,
			Bounds:  Rect{Left: m.X, Top: m.Y, Right: m.X + m.Width, Bottom: m.Y + m.Height},
			Work:    Rect{Left: x, Top: y, Right: x + w, Bottom: y + h},
			Primary: m.Primary,
		})
	}
	return out, nil
}

// MonitorDPI reports Xft.dpi for every monitor; X11 has no per-output
// scale.
func (s *X11Shell) MonitorDPI(MonitorHandle) (uint32, uint32, error) {
	dpi, err := s.conn.XftDPI()
	if err != nil {
		return 0, 0, ErrDPIUnsupported
	}
	v := uint32(math.Round(dpi))
	return v, v, nil
}

func (s *X11Shell) RegisterCallbackMessage(window WindowID) (MessageID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.messages[window]; ok {
		return id, nil
	}
	id := s.nextMsg
	s.nextMsg++
	s.messages[window] = id
	return id, nil
}

func (s *X11Shell) AppBarNew(window WindowID, callback MessageID) error {
	s.mu.Lock()
	if _, ok := s.registered[window]; ok {
		s.mu.Unlock()
		return ErrAlreadyRegistered
	}
	s.mu.Unlock()

	win := xproto.Window(window)
	changed, err := s.conn.MakeDock(win)
	if err != nil {
		return err
	}
	if changed {
		s.logger.Debug("window remapped as dock", "window", window)
	}
	if err := s.conn.Stick(win); err != nil {
		s.logger.Debug("failed to make dock sticky", "window", window, "error", err)
	}

	s.mu.Lock()
	s.registered[window] = callback
	s.mu.Unlock()
	return nil
}

// AppBarRemove drops the window's struts. The dock type stays so the WM
// does not remap the window.
func (s *X11Shell) AppBarRemove(window WindowID) error {
	if !s.isRegistered(window) {
		return nil
	}
	// Still counted as ours until the strut is gone, so the property
	// change is not mistaken for a foreign dock.
	err := s.clearStrut(xproto.Window(window))
	s.mu.Lock()
	delete(s.registered, window)
	s.mu.Unlock()
	return err
}

func (s *X11Shell) AppBarQueryPos(window WindowID, edge Edge, proposed Rect) (Rect, error) {
	if !s.isRegistered(window) {
		return Rect{}, ErrNotRegistered
	}
	if edge == EdgeNone {
		return Rect{}, errors.New("query position: no edge")
	}

	mons, err := s.conn.GetMonitors()
	if err != nil {
		return Rect{}, err
	}
	rootW, rootH, err := s.conn.RootSize()
	if err != nil {
		return Rect{}, err
	}
	others, err := s.conn.DockStruts(s.ownWindows())
	if err != nil {
		return proposed, nil
	}

	mon, ok := monitorFor(mons, proposed)
	if !ok {
		return proposed, nil
	}
	x, y, w, h := x11.WorkArea(mon, rootW, rootH, others)
	work := Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}
	return adjustProposal(edge, proposed, work), nil
}

func (s *X11Shell) AppBarSetPos(window WindowID, edge Edge, rect Rect) (Rect, error) {
	accepted, err := s.AppBarQueryPos(window, edge, rect)
	if err != nil {
		return Rect{}, err
	}
	rootW, rootH, err := s.conn.RootSize()
	if err != nil {
		return Rect{}, err
	}
	if err := s.conn.SetStrut(xproto.Window(window), strutFor(edge, accepted, rootW, rootH)); err != nil {
		return Rect{}, err
	}
	return accepted, nil
}

func (s *X11Shell) MoveResize(window WindowID, rect Rect) error {
	return s.conn.MoveResizeWindow(xproto.Window(window), rect.Left, rect.Top, rect.Width(), rect.Height())
}

func (s *X11Shell) SetZOrder(window WindowID, z ZOrder) error {
	win := xproto.Window(window)
	switch z {
	case ZOrderTopMost:
		return s.conn.SetStacking(win, true, false)
	case ZOrderBottom:
		return s.conn.SetStacking(win, false, true)
	default:
		return s.conn.SetStacking(win, false, false)
	}
}

func (s *X11Shell) SetNotificationSink(sink func(Message)) {
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}

func (s *X11Shell) isRegistered(window WindowID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.registered[window]
	return ok
}

func (s *X11Shell) ownWindows() map[xproto.Window]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	own := make(map[xproto.Window]bool, len(s.registered))
	for w := range s.registered {
		own[xproto.Window(w)] = true
	}
	return own
}

func (s *X11Shell) broadcast(code, param uintptr) {
	s.mu.Lock()
	sink := s.sink
	msgs := make([]Message, 0, len(s.registered))
	for w, id := range s.registered {
		msgs = append(msgs, Message{Window: w, ID: id, WParam: code, LParam: param})
	}
	s.mu.Unlock()
	if sink == nil {
		return
	}
	for _, m := range msgs {
		sink(m)
	}
}

func (s *X11Shell) otherStrutsFingerprint() string {
	struts, err := s.conn.DockStruts(s.ownWindows())
	if err != nil {
		return ""
	}
	return x11.StrutFingerprint(struts)
}

func (s *X11Shell) onRootProperty(_ *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
	switch s.conn.AtomName(ev.Atom) {
	case "_NET_WORKAREA", "_NET_CLIENT_LIST":
		fp := s.otherStrutsFingerprint()
		if fp == s.fingerprint {
			return
		}
		s.fingerprint = fp
		s.logger.Debug("foreign dock struts changed")
		s.broadcast(NotifyPosChanged, 0)
	case "_NET_ACTIVE_WINDOW":
		s.trackActiveWindow()
	}
}

func (s *X11Shell) onActiveProperty(_ *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
	if s.conn.AtomName(ev.Atom) == "_NET_WM_STATE" {
		s.updateFullscreen()
	}
}

func (s *X11Shell) onRawEvent(_ *xgbutil.XUtil, ev interface{}) bool {
	switch ev.(type) {
	case randr.ScreenChangeNotifyEvent, randr.NotifyEvent:
		s.logger.Debug("screen configuration changed")
		s.fingerprint = s.otherStrutsFingerprint()
		s.broadcast(NotifyPosChanged, 0)
	}
	return true
}

func (s *X11Shell) trackActiveWindow() {
	active, err := s.conn.GetActiveWindow()
	if err != nil {
		active = 0
	}
	active = watchTarget(active, s.conn.Root)
	if active != s.active {
		if s.active != 0 {
			xevent.Detach(s.conn.XUtil, s.active)
		}
		s.active = active
		if active != 0 {
			if err := s.conn.WatchWindow(active); err == nil {
				xevent.PropertyNotifyFun(s.onActiveProperty).Connect(s.conn.XUtil, active)
			}
		}
	}
	s.updateFullscreen()
}

// watchTarget maps the active window to the client whose state is watched.
// The root carries the shell's own root listener and must never be
// detached as a client, so it maps to none.
func watchTarget(active, root xproto.Window) xproto.Window {
	if active == root {
		return 0
	}
	return active
}

func (s *X11Shell) updateFullscreen() {
	full := s.conn.IsFullscreen(s.active) && !s.isRegistered(WindowID(s.active))
	if full == s.fullscreen {
		return
	}
	s.fullscreen = full
	var param uintptr
	if full {
		param = 1
	}
	s.logger.Debug("fullscreen state changed", "window", s.active, "fullscreen", full)
	s.broadcast(NotifyFullscreenApp, param)
}

// monitorFor picks the monitor with the largest overlap with r.
func monitorFor(mons []x11.Monitor, r Rect) (x11.Monitor, bool) {
	best, bestArea := -1, 0
	for i, m := range mons {
		b := Rect{Left: m.X, Top: m.Y, Right: m.X + m.Width, Bottom: m.Y + m.Height}
		isect := b.Intersect(r)
		if area := isect.Width() * isect.Height(); area > bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 {
		return x11.Monitor{}, false
	}
	return mons[best], true
}

// adjustProposal moves a proposal off space other docks hold. The docked
// side is shifted into the work area keeping the thickness; the spanning
// axis is clipped to it.
func adjustProposal(edge Edge, proposed, work Rect) Rect {
	r := proposed
	switch edge {
	case EdgeLeft:
		if r.Left < work.Left {
			r.Right += work.Left - r.Left
			r.Left = work.Left
		}
	case EdgeRight:
		if r.Right > work.Right {
			r.Left -= r.Right - work.Right
			r.Right = work.Right
		}
	case EdgeTop:
		if r.Top < work.Top {
			r.Bottom += work.Top - r.Top
			r.Top = work.Top
		}
	case EdgeBottom:
		if r.Bottom > work.Bottom {
			r.Top -= r.Bottom - work.Bottom
			r.Bottom = work.Bottom
		}
	}
	if edge.Horizontal() {
		r.Left = max(r.Left, work.Left)
		r.Right = min(r.Right, work.Right)
	} else {
		r.Top = max(r.Top, work.Top)
		r.Bottom = min(r.Bottom, work.Bottom)
	}
	return r.Normalize()
}

// strutFor converts a committed rectangle to a root-relative strut.
func strutFor(edge Edge, r Rect, rootW, rootH int) ewmh.WmStrutPartial {
	var sp ewmh.WmStrutPartial
	switch edge {
	case EdgeLeft:
		sp.Left = uint(max(r.Right, 0))
		sp.LeftStartY = uint(max(r.Top, 0))
		sp.LeftEndY = uint(max(r.Bottom-1, 0))
	case EdgeRight:
		sp.Right = uint(max(rootW-r.Left, 0))
		sp.RightStartY = uint(max(r.Top, 0))
		sp.RightEndY = uint(max(r.Bottom-1, 0))
	case EdgeTop:
		sp.Top = uint(max(r.Bottom, 0))
		sp.TopStartX = uint(max(r.Left, 0))
		sp.TopEndX = uint(max(r.Right-1, 0))
	case EdgeBottom:
		sp.Bottom = uint(max(rootH-r.Top, 0))
		sp.BottomStartX = uint(max(r.Left, 0))
		sp.BottomEndX = uint(max(r.Right-1, 0))
	}
	return sp
}
