package platform

import "errors"

// ErrUnsupportedPlatform is returned by OpenHost where no shell backend
// exists.
var ErrUnsupportedPlatform = errors.New("no desktop shell backend for this platform")

// HostOptions configures the window a Host docks.
type HostOptions struct {
	Title string
	Class string
	// Background is a 0xRRGGBB fill for a created window.
	Background uint32
	// Window adopts an existing top-level window instead of creating one.
	Window WindowID
}

// Host owns the docked window and pumps the OS event source that feeds the
// shell's notification sink.
type Host interface {
	Shell() Shell
	Window() WindowID
	// Run pumps events until Close is called.
	Run() error
	Close()
}
