package hotkeys

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/1broseidon/edgedock/internal/config"
	"github.com/1broseidon/edgedock/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
)

type recorder struct {
	calls []string
	err   error
}

func (r *recorder) Toggle(context.Context) (platform.Edge, error) {
	r.calls = append(r.calls, "toggle")
	return platform.EdgeRight, r.err
}

func (r *recorder) CycleEdge(context.Context) (platform.Edge, error) {
	r.calls = append(r.calls, "cycle_edge")
	return platform.EdgeTop, r.err
}

func (r *recorder) Reposition(context.Context) error {
	r.calls = append(r.calls, "reposition")
	return r.err
}

func TestBindings_SkipsEmptySequences(t *testing.T) {
	rec := &recorder{}
	got := Bindings(config.HotkeyConfig{Toggle: " Mod4-d ", Reposition: "Mod4-r"}, rec)

	if len(got) != 2 {
		t.Fatalf("got %d bindings, want 2", len(got))
	}
	if got[0].Name != "toggle" || got[0].Keys != "Mod4-d" {
		t.Fatalf("first binding = %s %q", got[0].Name, got[0].Keys)
	}
	if got[1].Name != "reposition" {
		t.Fatalf("second binding = %s", got[1].Name)
	}
}

func TestBindings_RunActions(t *testing.T) {
	rec := &recorder{}
	cfg := config.HotkeyConfig{Toggle: "a", CycleEdge: "b", Reposition: "c"}
	for _, b := range Bindings(cfg, rec) {
		if err := b.Run(context.Background()); err != nil {
			t.Fatalf("%s: %v", b.Name, err)
		}
	}
	want := []string{"toggle", "cycle_edge", "reposition"}
	if !slices.Equal(rec.calls, want) {
		t.Fatalf("calls = %v, want %v", rec.calls, want)
	}
}

func TestBindings_PropagateErrors(t *testing.T) {
	rec := &recorder{err: errors.New("engine stopped")}
	for _, b := range Bindings(config.DefaultConfig().Hotkeys, rec) {
		if err := b.Run(context.Background()); err == nil {
			t.Fatalf("%s: expected error", b.Name)
		}
	}
}

func TestIgnoreMasks(t *testing.T) {
	caps := uint16(xproto.ModMaskLock)
	num := uint16(xproto.ModMask2)

	got := ignoreMasks(caps, num, 0)
	slices.Sort(got)
	want := []uint16{0, caps, num, caps | num}
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Fatalf("ignoreMasks = %v, want %v", got, want)
	}

	if got := ignoreMasks(caps, caps, caps); len(got) != 2 {
		t.Fatalf("duplicate lock masks should collapse, got %v", got)
	}
}
