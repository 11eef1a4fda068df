//go:build linux

package platform

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/edgedock/internal/x11"
)

func TestAdjustProposal(t *testing.T) {
	work := Rect{Left: 0, Top: 30, Right: 1920, Bottom: 1080}

	tests := []struct {
		name     string
		edge     Edge
		proposed Rect
		want     Rect
	}{
		{
			name:     "top shifted below panel",
			edge:     EdgeTop,
			proposed: Rect{Left: 0, Top: 0, Right: 1920, Bottom: 40},
			want:     Rect{Left: 0, Top: 30, Right: 1920, Bottom: 70},
		},
		{
			name:     "left clipped vertically",
			edge:     EdgeLeft,
			proposed: Rect{Left: 0, Top: 0, Right: 300, Bottom: 1080},
			want:     Rect{Left: 0, Top: 30, Right: 300, Bottom: 1080},
		},
		{
			name:     "right untouched horizontally",
			edge:     EdgeRight,
			proposed: Rect{Left: 1620, Top: 30, Right: 1920, Bottom: 1080},
			want:     Rect{Left: 1620, Top: 30, Right: 1920, Bottom: 1080},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adjustProposal(tt.edge, tt.proposed, work); got != tt.want {
				t.Fatalf("adjustProposal = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAdjustProposal_BottomAboveTaskbar(t *testing.T) {
	work := Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1040}
	got := adjustProposal(EdgeBottom, Rect{Left: 0, Top: 980, Right: 1920, Bottom: 1080}, work)
	want := Rect{Left: 0, Top: 940, Right: 1920, Bottom: 1040}
	if got != want {
		t.Fatalf("adjustProposal = %s, want %s", got, want)
	}
}

func TestStrutFor_RootRelative(t *testing.T) {
	// Right dock on the second of two 1920-wide monitors.
	sp := strutFor(EdgeRight, Rect{Left: 3540, Top: 0, Right: 3840, Bottom: 1080}, 3840, 1080)
	if sp.Right != 300 || sp.RightStartY != 0 || sp.RightEndY != 1079 {
		t.Fatalf("right strut = %+v", sp)
	}
	if sp.Left != 0 || sp.Top != 0 || sp.Bottom != 0 {
		t.Fatalf("unexpected other sides in %+v", sp)
	}

	sp = strutFor(EdgeTop, Rect{Left: 1920, Top: 0, Right: 3840, Bottom: 48}, 3840, 1080)
	if sp.Top != 48 || sp.TopStartX != 1920 || sp.TopEndX != 3839 {
		t.Fatalf("top strut = %+v", sp)
	}

	sp = strutFor(EdgeBottom, Rect{Left: 0, Top: 1000, Right: 1920, Bottom: 1080}, 3840, 1080)
	if sp.Bottom != 80 || sp.BottomEndX != 1919 {
		t.Fatalf("bottom strut = %+v", sp)
	}
}

func TestMonitorFor_LargestOverlap(t *testing.T) {
	mons := []x11.Monitor{
		{ID: 0, X: 0, Y: 0, Width: 1920, Height: 1080},
		{ID: 1, X: 1920, Y: 0, Width: 2560, Height: 1440},
	}
	m, ok := monitorFor(mons, Rect{Left: 1800, Top: 0, Right: 2300, Bottom: 100})
	if !ok || m.ID != 1 {
		t.Fatalf("monitorFor = %+v, %v; want monitor 1", m, ok)
	}
	if _, ok := monitorFor(mons, Rect{Left: -500, Top: -500, Right: -100, Bottom: -100}); ok {
		t.Fatal("disjoint rect should match no monitor")
	}
}

func TestWatchTarget_NeverRoot(t *testing.T) {
	const root xproto.Window = 0x1e1
	if got := watchTarget(root, root); got != 0 {
		t.Fatalf("watchTarget(root) = %#x, want 0", got)
	}
	if got := watchTarget(0x400007, root); got != 0x400007 {
		t.Fatalf("watchTarget(client) = %#x, want 0x400007", got)
	}
	if got := watchTarget(0, root); got != 0 {
		t.Fatalf("watchTarget(0) = %#x, want 0", got)
	}
}

func TestAppBarRemove_StaysOwnedUntilStrutCleared(t *testing.T) {
	const w WindowID = 0x400001
	s := &X11Shell{registered: map[WindowID]MessageID{w: firstCallbackMessage}}
	calls := 0
	s.clearStrut = func(win xproto.Window) error {
		calls++
		if !s.ownWindows()[win] {
			t.Fatalf("window %#x not owned while its strut is cleared", win)
		}
		return nil
	}

	if err := s.AppBarRemove(w); err != nil {
		t.Fatalf("AppBarRemove: %v", err)
	}
	if s.isRegistered(w) {
		t.Fatal("window still registered after remove")
	}
	if err := s.AppBarRemove(w); err != nil {
		t.Fatalf("second AppBarRemove: %v", err)
	}
	if calls != 1 {
		t.Fatalf("strut cleared %d times, want 1", calls)
	}
}
