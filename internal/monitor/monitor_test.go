package monitor

import (
	"testing"

	"github.com/1broseidon/edgedock/internal/platform"
	"github.com/1broseidon/edgedock/internal/platform/platformtest"
)

func twoMonitors() *platformtest.Shell {
	left := platformtest.Monitor(10, platform.Rect{Left: -1280, Top: 0, Right: 0, Bottom: 1024}, false)
	main := platformtest.Monitor(20, platform.Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1080}, true)
	return platformtest.NewShell(left, main)
}

func TestList_PrimaryFirst(t *testing.T) {
	e := NewEnumerator(twoMonitors(), nil)
	list, err := e.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 monitors, got %d", len(list))
	}
	if list[0].Handle != 20 || !list[0].Primary {
		t.Fatalf("expected primary handle 20 first, got %+v", list[0])
	}
	if list[1].Handle != 10 || list[1].Primary {
		t.Fatalf("expected secondary handle 10 second, got %+v", list[1])
	}
	if list[0].Index != 0 || list[1].Index != 1 {
		t.Fatalf("expected list positions as indexes, got %d and %d", list[0].Index, list[1].Index)
	}
}

func TestList_NoFlaggedPrimaryUsesFirst(t *testing.T) {
	a := platformtest.Monitor(1, platform.Rect{Right: 800, Bottom: 600}, false)
	b := platformtest.Monitor(2, platform.Rect{Left: 800, Right: 1600, Bottom: 600}, false)
	list, err := NewEnumerator(platformtest.NewShell(a, b), nil).List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if list[0].Handle != 1 || !list[0].Primary {
		t.Fatalf("expected first enumerated monitor as primary, got %+v", list[0])
	}
}

func TestResolve_OutOfRangeFallsBackToPrimary(t *testing.T) {
	e := NewEnumerator(twoMonitors(), nil)
	primary, err := e.Resolve(0)
	if err != nil {
		t.Fatalf("Resolve(0) error: %v", err)
	}
	for _, idx := range []int{2, 3, 17, -1} {
		got, err := e.Resolve(idx)
		if err != nil {
			t.Fatalf("Resolve(%d) error: %v", idx, err)
		}
		if got != primary {
			t.Fatalf("Resolve(%d) = %+v, want primary %+v", idx, got, primary)
		}
	}
	second, _ := e.Resolve(1)
	if second.Handle != 10 {
		t.Fatalf("Resolve(1) = handle %d, want 10", second.Handle)
	}
}

func TestResolve_NoMonitors(t *testing.T) {
	if _, err := NewEnumerator(platformtest.NewShell(), nil).Resolve(0); err == nil {
		t.Fatal("expected error with no monitors")
	}
}

func TestScaleFor(t *testing.T) {
	shell := twoMonitors()
	shell.SetDPI(20, 144, 144)
	r := NewDPIResolver(shell, nil)

	if x, y := r.ScaleFor(20); x != 1.5 || y != 1.5 {
		t.Fatalf("ScaleFor(20) = %v,%v, want 1.5,1.5", x, y)
	}
	if x, y := r.ScaleFor(10); x != 1 || y != 1 {
		t.Fatalf("ScaleFor(10) = %v,%v, want 1,1", x, y)
	}

	shell.DPIUnsupported = true
	if x, y := r.ScaleFor(20); x != 1 || y != 1 {
		t.Fatalf("unsupported DPI should give 1,1, got %v,%v", x, y)
	}
}

func TestList_ReflectsDPIChangesBetweenCalls(t *testing.T) {
	shell := twoMonitors()
	e := NewEnumerator(shell, nil)
	before, _ := e.Resolve(0)
	shell.SetDPI(20, 192, 192)
	after, _ := e.Resolve(0)
	if before.ScaleX != 1 || after.ScaleX != 2 {
		t.Fatalf("expected scale 1 then 2, got %v then %v", before.ScaleX, after.ScaleX)
	}
}
