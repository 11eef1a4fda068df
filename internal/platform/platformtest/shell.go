// Package platformtest provides an in-memory platform.Shell for tests.
package platformtest

import (
	"fmt"
	"sync"

	"github.com/1broseidon/edgedock/internal/platform"
)

// Call records one invocation on the fake shell.
type Call struct {
	Op     string
	Window platform.WindowID
	Edge   platform.Edge
	Rect   platform.Rect
	ZOrder platform.ZOrder
}

func (c Call) String() string {
	return fmt.Sprintf("%s(%d,%s,%s)", c.Op, c.Window, c.Edge, c.Rect)
}

// Shell is a scripted platform.Shell. Monitors are returned in the order
// they are stored; DPI is looked up per handle.
type Shell struct {
	mu sync.Mutex

	MonitorList []platform.MonitorInfo
	DPI         map[platform.MonitorHandle][2]uint32
	// DPIUnsupported makes MonitorDPI return platform.ErrDPIUnsupported.
	DPIUnsupported bool
	// QueryAdjust, when set, rewrites the rectangle returned by
	// AppBarQueryPos (the shell shrinking or moving the proposal).
	QueryAdjust func(edge platform.Edge, proposed platform.Rect) platform.Rect
	// IgnoreSetPos makes AppBarSetPos report the previous committed rect,
	// emulating a shell that silently ignores the request.
	IgnoreSetPos bool

	calls     []Call
	committed map[platform.WindowID]platform.Rect
	nextMsg   platform.MessageID
	sink      func(platform.Message)
	// OnCall runs after each recorded call, outside the lock.
	OnCall func(Call)
}

var _ platform.Shell = (*Shell)(nil)

// NewShell returns a fake shell with the given monitors at 96 DPI.
func NewShell(monitors ...platform.MonitorInfo) *Shell {
	return &Shell{
		MonitorList: monitors,
		DPI:         make(map[platform.MonitorHandle][2]uint32),
		committed:   make(map[platform.WindowID]platform.Rect),
		nextMsg:     0xC000,
	}
}

// Monitor is shorthand for a MonitorInfo whose work area equals its bounds.
func Monitor(handle platform.MonitorHandle, bounds platform.Rect, primary bool) platform.MonitorInfo {
	return platform.MonitorInfo{
		Handle:  handle,
		Name:    fmt.Sprintf("MON%d", handle),
		Bounds:  bounds,
		Work:    bounds,
		Primary: primary,
	}
}

func (s *Shell) record(c Call) {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	hook := s.OnCall
	s.mu.Unlock()
	if hook != nil {
		hook(c)
	}
}

// Calls returns a copy of the recorded calls.
func (s *Shell) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Ops returns the recorded operation names in order.
func (s *Shell) Ops() []string {
	calls := s.Calls()
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}
	return ops
}

// CallsOf returns recorded calls with the given operation name.
func (s *Shell) CallsOf(op string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears recorded calls.
func (s *Shell) Reset() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

// SetDPI sets the DPI reported for a monitor handle.
func (s *Shell) SetDPI(handle platform.MonitorHandle, x, y uint32) {
	s.mu.Lock()
	s.DPI[handle] = [2]uint32{x, y}
	s.mu.Unlock()
}

// Notify delivers a raw notification to the installed sink.
func (s *Shell) Notify(msg platform.Message) {
	s.mu.Lock()
	sink := s.sink
	s.mu.Unlock()
	if sink != nil {
		sink(msg)
	}
}

func (s *Shell) Monitors() ([]platform.MonitorInfo, error) {
	s.record(Call{Op: "Monitors"})
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]platform.MonitorInfo, len(s.MonitorList))
	copy(out, s.MonitorList)
	return out, nil
}

func (s *Shell) MonitorDPI(handle platform.MonitorHandle) (uint32, uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DPIUnsupported {
		return 0, 0, platform.ErrDPIUnsupported
	}
	if dpi, ok := s.DPI[handle]; ok {
		return dpi[0], dpi[1], nil
	}
	return 96, 96, nil
}

func (s *Shell) RegisterCallbackMessage(window platform.WindowID) (platform.MessageID, error) {
	s.record(Call{Op: "RegisterCallbackMessage", Window: window})
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextMsg
	s.nextMsg++
	return id, nil
}

func (s *Shell) AppBarNew(window platform.WindowID, callback platform.MessageID) error {
	s.record(Call{Op: "New", Window: window})
	return nil
}

func (s *Shell) AppBarRemove(window platform.WindowID) error {
	s.record(Call{Op: "Remove", Window: window})
	s.mu.Lock()
	delete(s.committed, window)
	s.mu.Unlock()
	return nil
}

func (s *Shell) AppBarQueryPos(window platform.WindowID, edge platform.Edge, proposed platform.Rect) (platform.Rect, error) {
	s.record(Call{Op: "QueryPos", Window: window, Edge: edge, Rect: proposed})
	if s.QueryAdjust != nil {
		return s.QueryAdjust(edge, proposed), nil
	}
	return proposed, nil
}

func (s *Shell) AppBarSetPos(window platform.WindowID, edge platform.Edge, rect platform.Rect) (platform.Rect, error) {
	s.record(Call{Op: "SetPos", Window: window, Edge: edge, Rect: rect})
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.IgnoreSetPos {
		return s.committed[window], nil
	}
	s.committed[window] = rect
	return rect, nil
}

func (s *Shell) MoveResize(window platform.WindowID, rect platform.Rect) error {
	s.record(Call{Op: "MoveResize", Window: window, Rect: rect})
	return nil
}

func (s *Shell) SetZOrder(window platform.WindowID, z platform.ZOrder) error {
	s.record(Call{Op: "SetZOrder", Window: window, ZOrder: z})
	return nil
}

func (s *Shell) SetNotificationSink(sink func(platform.Message)) {
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}
