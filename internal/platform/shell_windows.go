//go:build windows

package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32  = windows.NewLazySystemDLL("user32.dll")
	shell32 = windows.NewLazySystemDLL("shell32.dll")
	shcore  = windows.NewLazySystemDLL("shcore.dll")

	procSHAppBarMessage         = shell32.NewProc("SHAppBarMessage")
	procRegisterWindowMessageW  = user32.NewProc("RegisterWindowMessageW")
	procEnumDisplayMonitors     = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW         = user32.NewProc("GetMonitorInfoW")
	procSetWindowPos            = user32.NewProc("SetWindowPos")
	procSetProcessDpiAwarenessC = user32.NewProc("SetProcessDpiAwarenessContext")
	procGetDpiForMonitor        = shcore.NewProc("GetDpiForMonitor")
)

const (
	abmNew      = 0x00
	abmRemove   = 0x01
	abmQueryPos = 0x02
	abmSetPos   = 0x03

	swpNoSize     = 0x0001
	swpNoMove     = 0x0002
	swpNoZOrder   = 0x0004
	swpNoActivate = 0x0010

	monitorInfoPrimary = 0x1
	mdtEffectiveDPI    = 0
)

var (
	hwndTopMost   = ^uintptr(0) // (HWND)-1
	hwndNoTopMost = ^uintptr(1) // (HWND)-2
	hwndBottom    = uintptr(1)

	// DPI_AWARENESS_CONTEXT_PER_MONITOR_AWARE_V2 is (HANDLE)-4.
	dpiAwarenessPerMonitorV2 = ^uintptr(3)
)

type appBarData struct {
	cbSize           uint32
	hWnd             windows.HWND
	uCallbackMessage uint32
	uEdge            uint32
	rc               windows.Rect
	lParam           uintptr
}

type monitorInfoExW struct {
	cbSize    uint32
	rcMonitor windows.Rect
	rcWork    windows.Rect
	dwFlags   uint32
	szDevice  [32]uint16
}

// Win32Shell drives the Explorer appbar protocol through SHAppBarMessage.
type Win32Shell struct {
	logger *slog.Logger

	mu        sync.Mutex
	callbacks map[WindowID]MessageID
	sink      func(Message)
}

var _ Shell = (*Win32Shell)(nil)

// NewWin32Shell returns a shell bound to the calling process. Per-monitor
// DPI awareness is enabled so every coordinate is physical.
func NewWin32Shell(logger *slog.Logger) *Win32Shell {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if procSetProcessDpiAwarenessC.Find() == nil {
		if r, _, _ := procSetProcessDpiAwarenessC.Call(dpiAwarenessPerMonitorV2); r == 0 {
			logger.Debug("per-monitor DPI awareness not enabled")
		}
	}
	return &Win32Shell{
		logger:    logger,
		callbacks: make(map[WindowID]MessageID),
	}
}

// enumMonitorsCallback is created once: the runtime never frees callback
// slots and caps them per process.
var enumMonitorsCallback = windows.NewCallback(enumMonitorsProc)

// enumMonitorsProc appends one monitor to the *[]MonitorInfo passed as
// dwData.
func enumMonitorsProc(hMonitor, hdc, rect, data uintptr) uintptr {
	out := (*[]MonitorInfo)(unsafe.Pointer(data))
	var mi monitorInfoExW
	mi.cbSize = uint32(unsafe.Sizeof(mi))
	if r, _, _ := procGetMonitorInfoW.Call(hMonitor, uintptr(unsafe.Pointer(&mi))); r == 0 {
		return 1
	}
	*out = append(*out, MonitorInfo{
		Handle:  MonitorHandle(hMonitor),
		Name:    windows.UTF16ToString(mi.szDevice[:]),
		Bounds:  fromWinRect(mi.rcMonitor),
		Work:    fromWinRect(mi.rcWork),
		Primary: mi.dwFlags&monitorInfoPrimary != 0,
	})
	return 1
}

func (s *Win32Shell) Monitors() ([]MonitorInfo, error) {
	var out []MonitorInfo
	r, _, err := procEnumDisplayMonitors.Call(0, 0, enumMonitorsCallback, uintptr(unsafe.Pointer(&out)))
	if r == 0 {
		return nil, fmt.Errorf("EnumDisplayMonitors: %w", err)
	}
	return out, nil
}

func (s *Win32Shell) MonitorDPI(handle MonitorHandle) (uint32, uint32, error) {
	if procGetDpiForMonitor.Find() != nil {
		return 0, 0, ErrDPIUnsupported
	}
	var dx, dy uint32
	r, _, _ := procGetDpiForMonitor.Call(uintptr(handle), mdtEffectiveDPI,
		uintptr(unsafe.Pointer(&dx)), uintptr(unsafe.Pointer(&dy)))
	if r != 0 {
		return 0, 0, fmt.Errorf("GetDpiForMonitor: HRESULT 0x%08x", uint32(r))
	}
	return dx, dy, nil
}

// RegisterCallbackMessage registers a process-unique message name per
// window. Repeated calls for a window return the same id.
func (s *Win32Shell) RegisterCallbackMessage(window WindowID) (MessageID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.callbacks[window]; ok {
		return id, nil
	}
	name, err := windows.UTF16PtrFromString(fmt.Sprintf("EdgeDockCallback_%d_%d", windows.GetCurrentProcessId(), window))
	if err != nil {
		return 0, err
	}
	r, _, callErr := procRegisterWindowMessageW.Call(uintptr(unsafe.Pointer(name)))
	if r == 0 {
		return 0, fmt.Errorf("RegisterWindowMessageW: %w", callErr)
	}
	id := MessageID(r)
	s.callbacks[window] = id
	return id, nil
}

func (s *Win32Shell) AppBarNew(window WindowID, callback MessageID) error {
	abd := newAppBarData(window)
	abd.uCallbackMessage = uint32(callback)
	if r := shAppBarMessage(abmNew, &abd); r == 0 {
		return errors.New("ABM_NEW rejected")
	}
	return nil
}

func (s *Win32Shell) AppBarRemove(window WindowID) error {
	abd := newAppBarData(window)
	shAppBarMessage(abmRemove, &abd)
	return nil
}

func (s *Win32Shell) AppBarQueryPos(window WindowID, edge Edge, proposed Rect) (Rect, error) {
	abd, err := edgeAppBarData(window, edge, proposed)
	if err != nil {
		return Rect{}, err
	}
	shAppBarMessage(abmQueryPos, &abd)
	return fromWinRect(abd.rc), nil
}

func (s *Win32Shell) AppBarSetPos(window WindowID, edge Edge, rect Rect) (Rect, error) {
	abd, err := edgeAppBarData(window, edge, rect)
	if err != nil {
		return Rect{}, err
	}
	shAppBarMessage(abmSetPos, &abd)
	return fromWinRect(abd.rc), nil
}

func (s *Win32Shell) MoveResize(window WindowID, rect Rect) error {
	return setWindowPos(window, 0, rect.Left, rect.Top, rect.Width(), rect.Height(), swpNoZOrder|swpNoActivate)
}

func (s *Win32Shell) SetZOrder(window WindowID, z ZOrder) error {
	after := hwndNoTopMost
	switch z {
	case ZOrderTopMost:
		after = hwndTopMost
	case ZOrderBottom:
		after = hwndBottom
	}
	return setWindowPos(window, after, 0, 0, 0, 0, swpNoMove|swpNoSize|swpNoActivate)
}

func (s *Win32Shell) SetNotificationSink(sink func(Message)) {
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}

// deliver routes a window message to the sink when it is the window's
// appbar callback. It reports whether the message was consumed.
func (s *Win32Shell) deliver(window WindowID, msg uint32, wParam, lParam uintptr) bool {
	s.mu.Lock()
	id, ok := s.callbacks[window]
	sink := s.sink
	s.mu.Unlock()
	if !ok || uint32(id) != msg || sink == nil {
		return false
	}
	sink(Message{Window: window, ID: id, WParam: wParam, LParam: lParam})
	return true
}

func newAppBarData(window WindowID) appBarData {
	var abd appBarData
	abd.cbSize = uint32(unsafe.Sizeof(abd))
	abd.hWnd = windows.HWND(window)
	return abd
}

func edgeAppBarData(window WindowID, edge Edge, rect Rect) (appBarData, error) {
	abd := newAppBarData(window)
	switch edge {
	case EdgeLeft:
		abd.uEdge = 0
	case EdgeTop:
		abd.uEdge = 1
	case EdgeRight:
		abd.uEdge = 2
	case EdgeBottom:
		abd.uEdge = 3
	default:
		return abd, fmt.Errorf("no appbar edge for %s", edge)
	}
	abd.rc = toWinRect(rect)
	return abd, nil
}

func shAppBarMessage(msg uintptr, abd *appBarData) uintptr {
	r, _, _ := procSHAppBarMessage.Call(msg, uintptr(unsafe.Pointer(abd)))
	return r
}

func setWindowPos(window WindowID, after uintptr, x, y, w, h int, flags uintptr) error {
	r, _, err := procSetWindowPos.Call(uintptr(window), after,
		uintptr(x), uintptr(y), uintptr(w), uintptr(h), flags)
	if r == 0 {
		return fmt.Errorf("SetWindowPos: %w", err)
	}
	return nil
}

func fromWinRect(r windows.Rect) Rect {
	return Rect{Left: int(r.Left), Top: int(r.Top), Right: int(r.Right), Bottom: int(r.Bottom)}
}

func toWinRect(r Rect) windows.Rect {
	return windows.Rect{Left: int32(r.Left), Top: int32(r.Top), Right: int32(r.Right), Bottom: int32(r.Bottom)}
}
