//go:build windows

package platform

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetModuleHandleW = kernel32.NewProc("GetModuleHandleW")
	procRegisterClassExW = user32.NewProc("RegisterClassExW")
	procCreateWindowExW  = user32.NewProc("CreateWindowExW")
	procDefWindowProcW   = user32.NewProc("DefWindowProcW")
	procDestroyWindow    = user32.NewProc("DestroyWindow")
	procShowWindow       = user32.NewProc("ShowWindow")
	procGetMessageW      = user32.NewProc("GetMessageW")
	procTranslateMessage = user32.NewProc("TranslateMessage")
	procDispatchMessageW = user32.NewProc("DispatchMessageW")
	procPostMessageW     = user32.NewProc("PostMessageW")
	procPostQuitMessage  = user32.NewProc("PostQuitMessage")
	procCreateSolidBrush = windows.NewLazySystemDLL("gdi32.dll").NewProc("CreateSolidBrush")
)

const (
	wmDestroy       = 0x0002
	wmClose         = 0x0010
	wmDisplayChange = 0x007E
	wmDPIChanged    = 0x02E0

	wsPopup          = 0x80000000
	wsExToolWindow   = 0x00000080
	wsExTopMost      = 0x00000008
	wsExNoActivate   = 0x08000000
	swShowNoActivate = 4
)

type wndClassExW struct {
	cbSize        uint32
	style         uint32
	lpfnWndProc   uintptr
	cbClsExtra    int32
	cbWndExtra    int32
	hInstance     windows.Handle
	hIcon         windows.Handle
	hCursor       windows.Handle
	hbrBackground windows.Handle
	lpszMenuName  *uint16
	lpszClassName *uint16
	hIconSm       windows.Handle
}

type winMsg struct {
	hwnd    windows.HWND
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

type win32Host struct {
	shell   *Win32Shell
	logger  *slog.Logger
	window  WindowID
	created bool
	ready   chan error
	done    chan struct{}
	once    sync.Once
}

// OpenHost creates the dock window on a dedicated OS thread that also runs
// its message pump.
func OpenHost(opts HostOptions, logger *slog.Logger) (Host, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &win32Host{
		shell:  NewWin32Shell(logger),
		logger: logger,
		window: opts.Window,
		ready:  make(chan error, 1),
		done:   make(chan struct{}),
	}
	go h.pump(opts)
	if err := <-h.ready; err != nil {
		return nil, err
	}
	return h, nil
}

func (h *win32Host) Shell() Shell     { return h.shell }
func (h *win32Host) Window() WindowID { return h.window }

func (h *win32Host) Run() error {
	<-h.done
	return nil
}

func (h *win32Host) Close() {
	h.once.Do(func() {
		if h.created {
			procPostMessageW.Call(uintptr(h.window), wmClose, 0, 0)
			return
		}
		close(h.done)
	})
}

func (h *win32Host) pump(opts HostOptions) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if h.window != 0 {
		// Adopted windows are pumped by their owner; appbar callbacks
		// reach them, not us.
		h.logger.Warn("adopted window: shell notifications are delivered to its owner")
		h.ready <- nil
		return
	}

	hwnd, err := h.createWindow(opts)
	if err != nil {
		h.ready <- err
		return
	}
	h.window = WindowID(hwnd)
	h.created = true
	h.ready <- nil

	var m winMsg
	for {
		r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(r) <= 0 {
			break
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
	close(h.done)
}

func (h *win32Host) createWindow(opts HostOptions) (uintptr, error) {
	className := opts.Class
	if className == "" {
		className = "EdgeDockHost"
	}
	cls, err := windows.UTF16PtrFromString(className)
	if err != nil {
		return 0, err
	}
	title, err := windows.UTF16PtrFromString(opts.Title)
	if err != nil {
		return 0, err
	}

	instance, _, _ := procGetModuleHandleW.Call(0)
	bgr := (opts.Background&0xFF)<<16 | opts.Background&0xFF00 | (opts.Background>>16)&0xFF
	brush, _, _ := procCreateSolidBrush.Call(uintptr(bgr))

	wc := wndClassExW{
		lpfnWndProc:   windows.NewCallback(h.wndProc),
		hInstance:     windows.Handle(instance),
		hbrBackground: windows.Handle(brush),
		lpszClassName: cls,
	}
	wc.cbSize = uint32(unsafe.Sizeof(wc))
	if r, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); r == 0 {
		return 0, fmt.Errorf("RegisterClassExW: %w", err)
	}

	hwnd, _, err := procCreateWindowExW.Call(
		wsExToolWindow|wsExTopMost|wsExNoActivate,
		uintptr(unsafe.Pointer(cls)),
		uintptr(unsafe.Pointer(title)),
		wsPopup,
		0, 0, 1, 1,
		0, 0, instance, 0,
	)
	if hwnd == 0 {
		return 0, fmt.Errorf("CreateWindowExW: %w", err)
	}
	procShowWindow.Call(hwnd, swShowNoActivate)
	return hwnd, nil
}

func (h *win32Host) wndProc(hwnd, msg, wParam, lParam uintptr) uintptr {
	window := WindowID(hwnd)
	switch uint32(msg) {
	case wmDisplayChange, wmDPIChanged:
		h.shell.mu.Lock()
		id, ok := h.shell.callbacks[window]
		h.shell.mu.Unlock()
		if ok {
			h.shell.deliver(window, uint32(id), NotifyPosChanged, 0)
		}
		if uint32(msg) == wmDPIChanged {
			return 0
		}
	case wmClose:
		procDestroyWindow.Call(hwnd)
		return 0
	case wmDestroy:
		procPostQuitMessage.Call(0)
		return 0
	default:
		if h.shell.deliver(window, uint32(msg), wParam, lParam) {
			return 0
		}
	}
	r, _, _ := procDefWindowProcW.Call(hwnd, msg, wParam, lParam)
	return r
}
