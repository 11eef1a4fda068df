package dock

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/edgedock/internal/eventloop"
	"github.com/1broseidon/edgedock/internal/geometry"
	"github.com/1broseidon/edgedock/internal/platform"
	"github.com/1broseidon/edgedock/internal/platform/platformtest"
)

const win platform.WindowID = 0x400001

var fullHD = platform.Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1080}

type manualTimers struct {
	mu  sync.Mutex
	fns []func()
}

func (m *manualTimers) afterFunc(_ time.Duration, f func()) eventloop.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fns = append(m.fns, f)
	return stopper{}
}

func (m *manualTimers) fire() {
	m.mu.Lock()
	fns := m.fns
	m.fns = nil
	m.mu.Unlock()
	for _, f := range fns {
		f()
	}
}

type stopper struct{}

func (stopper) Stop() bool { return true }

type harness struct {
	shell  *platformtest.Shell
	loop   *eventloop.Loop
	ctrl   *Controller
	timers *manualTimers
}

func newHarness(t *testing.T, settings Settings, monitors ...platform.MonitorInfo) *harness {
	t.Helper()
	if len(monitors) == 0 {
		monitors = []platform.MonitorInfo{platformtest.Monitor(1, fullHD, true)}
	}
	shell := platformtest.NewShell(monitors...)
	loop := eventloop.New(nil)
	timers := &manualTimers{}
	ctrl := NewController(shell, loop, Options{
		Window:    win,
		Settings:  settings,
		AfterFunc: timers.afterFunc,
	})
	return &harness{shell: shell, loop: loop, ctrl: ctrl, timers: timers}
}

func (h *harness) moves() []platform.Rect {
	var out []platform.Rect
	for _, c := range h.shell.CallsOf("MoveResize") {
		out = append(out, c.Rect)
	}
	return out
}

func TestSetAppBar_RightAtBaseline(t *testing.T) {
	h := newHarness(t, Settings{Size: geometry.Size{Width: 180, Height: 40}})
	h.ctrl.SetAppBar(platform.EdgeRight)

	if len(h.moves()) != 0 {
		t.Fatal("window must not be moved before the idle pass")
	}
	h.loop.RunPending()

	want := platform.Rect{Left: 1740, Top: 0, Right: 1920, Bottom: 1080}
	if moves := h.moves(); !reflect.DeepEqual(moves, []platform.Rect{want}) {
		t.Fatalf("moves = %v, want [%s]", moves, want)
	}
	st := h.ctrl.Status()
	if !st.Registered || st.Edge != platform.EdgeRight || st.Committed != want || st.Applied != want {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestSetAppBar_LeftScaled(t *testing.T) {
	h := newHarness(t, Settings{Size: geometry.Size{Width: 180, Height: 40}})
	h.shell.SetDPI(1, 144, 144)
	h.ctrl.SetAppBar(platform.EdgeLeft)
	h.loop.RunPending()

	want := platform.Rect{Left: 0, Top: 0, Right: 270, Bottom: 1080}
	if moves := h.moves(); len(moves) != 1 || moves[0] != want {
		t.Fatalf("moves = %v, want [%s]", moves, want)
	}
}

func TestReposition_MissingMonitorFallsBackToPrimary(t *testing.T) {
	primary := platformtest.Monitor(1, fullHD, true)
	second := platformtest.Monitor(2, platform.Rect{Left: 1920, Right: 3840, Bottom: 1080}, false)
	h := newHarness(t, Settings{
		Edge:         platform.EdgeRight,
		Size:         geometry.Size{Width: 180},
		MonitorIndex: 3,
	}, second, primary)

	h.ctrl.Start()
	h.loop.RunPending()

	want := platform.Rect{Left: 1740, Top: 0, Right: 1920, Bottom: 1080}
	if moves := h.moves(); len(moves) != 1 || moves[0] != want {
		t.Fatalf("moves = %v, want [%s]", moves, want)
	}
	if h.ctrl.Status().Monitor != "MON1" {
		t.Fatalf("placed on %q, want MON1", h.ctrl.Status().Monitor)
	}
}

func TestReposition_UnregistersBeforeRecompute(t *testing.T) {
	h := newHarness(t, Settings{Edge: platform.EdgeTop, Size: geometry.Size{Width: 10, Height: 30}})
	h.ctrl.Start()
	h.loop.RunPending()
	h.shell.Reset()

	h.ctrl.Reposition()
	h.loop.RunPending()

	ops := h.shell.Ops()
	want := []string{"Remove", "Monitors", "RegisterCallbackMessage", "New", "QueryPos", "SetPos", "SetZOrder", "MoveResize"}
	if !reflect.DeepEqual(ops, want) {
		t.Fatalf("ops = %v, want %v", ops, want)
	}
}

func TestReposition_FloatingIsNoop(t *testing.T) {
	h := newHarness(t, Settings{Size: geometry.Size{Width: 180}})
	h.ctrl.Reposition()
	h.loop.RunPending()
	if len(h.shell.Calls()) != 0 {
		t.Fatalf("expected no shell calls, got %v", h.shell.Ops())
	}
}

func TestClearAppBar_UnregistersAndCancelsPendingApply(t *testing.T) {
	h := newHarness(t, Settings{Size: geometry.Size{Width: 180}})
	h.ctrl.SetAppBar(platform.EdgeLeft)
	h.ctrl.ClearAppBar()
	h.loop.RunPending()

	if len(h.moves()) != 0 {
		t.Fatalf("cleared dock must not be positioned, got %v", h.moves())
	}
	st := h.ctrl.Status()
	if st.Registered || st.Edge != platform.EdgeNone {
		t.Fatalf("unexpected status %+v", st)
	}
	h.ctrl.ClearAppBar()
	if n := len(h.shell.CallsOf("Remove")); n != 1 {
		t.Fatalf("Remove called %d times, want 1", n)
	}
}

func TestUpdateSettings_BurstAppliesOnceWithLastValue(t *testing.T) {
	h := newHarness(t, Settings{Edge: platform.EdgeRight, Size: geometry.Size{Width: 100}})
	h.ctrl.Start()
	h.loop.RunPending()
	h.shell.Reset()

	for w := 110; w <= 200; w += 10 {
		s := h.ctrl.Desired()
		s.Size.Width = w
		h.ctrl.UpdateSettings(s)
		h.loop.RunPending()
	}
	if len(h.moves()) != 0 {
		t.Fatalf("no apply expected inside the quiescence window, got %v", h.moves())
	}
	if !h.ctrl.Status().PendingSettings {
		t.Fatal("expected pending settings")
	}

	h.timers.fire()
	h.loop.RunPending()

	want := platform.Rect{Left: 1720, Top: 0, Right: 1920, Bottom: 1080}
	if moves := h.moves(); len(moves) != 1 || moves[0] != want {
		t.Fatalf("moves = %v, want exactly [%s]", moves, want)
	}
	if n := len(h.shell.CallsOf("SetPos")); n != 1 {
		t.Fatalf("SetPos called %d times, want 1", n)
	}
}

func TestUpdateSettings_CancelsInFlightApply(t *testing.T) {
	h := newHarness(t, Settings{Size: geometry.Size{Width: 100}})
	h.ctrl.SetAppBar(platform.EdgeLeft)
	h.ctrl.UpdateSettings(Settings{Edge: platform.EdgeLeft, Size: geometry.Size{Width: 150}})
	h.loop.RunPending()
	if len(h.moves()) != 0 {
		t.Fatalf("superseded apply ran: %v", h.moves())
	}
	h.timers.fire()
	h.loop.RunPending()
	if moves := h.moves(); len(moves) != 1 || moves[0].Width() != 150 {
		t.Fatalf("moves = %v, want one 150px strip", moves)
	}
}

func TestPosChanged_DeferredSingleCycle(t *testing.T) {
	h := newHarness(t, Settings{Edge: platform.EdgeRight, Size: geometry.Size{Width: 180}})
	h.ctrl.Start()
	h.loop.RunPending()
	msg := h.ctrl.registrar.State(win).CallbackMessage

	var callsInsideHandler []string
	h.shell.OnCall = func(c platformtest.Call) {
		if h.ctrl.dispatcher.Dispatching() {
			callsInsideHandler = append(callsInsideHandler, c.Op)
		}
	}
	h.shell.Reset()

	// Another app reserved 60px on the right edge.
	h.shell.MonitorList[0].Work.Right = 1860
	h.shell.Notify(platform.Message{Window: win, ID: msg, WParam: platform.NotifyPosChanged})
	h.shell.Notify(platform.Message{Window: win, ID: msg, WParam: platform.NotifyPosChanged})
	h.loop.RunPending()

	if len(callsInsideHandler) != 0 {
		t.Fatalf("shell called synchronously from handler: %v", callsInsideHandler)
	}
	if n := len(h.shell.CallsOf("Remove")); n != 1 {
		t.Fatalf("Remove called %d times, want 1", n)
	}
	if n := len(h.shell.CallsOf("New")); n != 1 {
		t.Fatalf("New called %d times, want 1", n)
	}
	want := platform.Rect{Left: 1680, Top: 0, Right: 1860, Bottom: 1080}
	if moves := h.moves(); len(moves) != 1 || moves[0] != want {
		t.Fatalf("moves = %v, want [%s]", moves, want)
	}
}

func TestFullscreen_ZOrder(t *testing.T) {
	h := newHarness(t, Settings{Edge: platform.EdgeBottom, Size: geometry.Size{Height: 40}, AlwaysOnTop: true})
	h.ctrl.Start()
	h.loop.RunPending()
	msg := h.ctrl.registrar.State(win).CallbackMessage
	h.shell.Reset()

	h.shell.Notify(platform.Message{Window: win, ID: msg, WParam: platform.NotifyFullscreenApp, LParam: 1})
	h.loop.RunPending()
	h.shell.Notify(platform.Message{Window: win, ID: msg, WParam: platform.NotifyFullscreenApp, LParam: 0})
	h.loop.RunPending()

	z := h.shell.CallsOf("SetZOrder")
	if len(z) != 2 || z[0].ZOrder != platform.ZOrderBottom || z[1].ZOrder != platform.ZOrderTopMost {
		t.Fatalf("z-order calls = %v", z)
	}
	if n := len(h.shell.CallsOf("Remove")); n != 0 {
		t.Fatalf("fullscreen events must not touch the reservation, got %d removes", n)
	}
}

func TestFullscreenExit_WithoutAlwaysOnTopStaysPut(t *testing.T) {
	h := newHarness(t, Settings{Edge: platform.EdgeLeft, Size: geometry.Size{Width: 100}})
	h.ctrl.Start()
	h.loop.RunPending()
	msg := h.ctrl.registrar.State(win).CallbackMessage
	h.shell.Reset()

	h.shell.Notify(platform.Message{Window: win, ID: msg, WParam: platform.NotifyFullscreenApp, LParam: 0})
	h.loop.RunPending()
	if z := h.shell.CallsOf("SetZOrder"); len(z) != 0 {
		t.Fatalf("unexpected z-order calls %v", z)
	}
}

func TestClearAppBar_ForgetsFullscreen(t *testing.T) {
	h := newHarness(t, Settings{Edge: platform.EdgeRight, Size: geometry.Size{Width: 180}, AlwaysOnTop: true})
	h.ctrl.Start()
	h.loop.RunPending()
	msg := h.ctrl.registrar.State(win).CallbackMessage

	h.shell.Notify(platform.Message{Window: win, ID: msg, WParam: platform.NotifyFullscreenApp, LParam: 1})
	h.loop.RunPending()
	h.ctrl.ClearAppBar()
	h.loop.RunPending()

	// The exit arrives after the listener is gone and is dropped.
	h.shell.Notify(platform.Message{Window: win, ID: msg, WParam: platform.NotifyFullscreenApp, LParam: 0})
	h.loop.RunPending()
	h.shell.Reset()

	h.ctrl.SetAppBar(platform.EdgeRight)
	h.loop.RunPending()

	if h.ctrl.Status().Fullscreen {
		t.Fatal("fullscreen flag survived undock")
	}
	z := h.shell.CallsOf("SetZOrder")
	if len(z) == 0 || z[len(z)-1].ZOrder != platform.ZOrderTopMost {
		t.Fatalf("z-order calls = %v, want last topmost", z)
	}
}

func TestClose_Unregisters(t *testing.T) {
	h := newHarness(t, Settings{Edge: platform.EdgeLeft, Size: geometry.Size{Width: 100}})
	h.ctrl.Start()
	h.loop.RunPending()
	h.shell.Reset()

	h.ctrl.Close()
	h.ctrl.Close()
	if n := len(h.shell.CallsOf("Remove")); n != 1 {
		t.Fatalf("Remove called %d times, want 1", n)
	}
	if h.ctrl.Status().Registered {
		t.Fatal("expected registration removed on close")
	}

	h.ctrl.Reposition()
	h.loop.RunPending()
	if n := len(h.shell.CallsOf("New")); n != 0 {
		t.Fatal("closed controller must not register again")
	}
}
