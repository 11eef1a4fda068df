package ipc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/1broseidon/edgedock/internal/platform"
)

type fakeEngine struct {
	mu       sync.Mutex
	edge     platform.Edge
	sizes    []SetSizePayload
	reloads  int
	repos    int
	failNext error
}

type engineState struct {
	edge    platform.Edge
	sizes   []SetSizePayload
	reloads int
	repos   int
}

func (f *fakeEngine) snapshot() engineState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return engineState{edge: f.edge, sizes: append([]SetSizePayload(nil), f.sizes...), reloads: f.reloads, repos: f.repos}
}

func (f *fakeEngine) fail(err error) {
	f.mu.Lock()
	f.failNext = err
	f.mu.Unlock()
}

func (f *fakeEngine) takeErr() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeEngine) Status(context.Context) (StatusData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return StatusData{Edge: f.edge.String(), Registered: f.edge != platform.EdgeNone, Width: 300}, nil
}

func (f *fakeEngine) Monitors(context.Context) ([]MonitorInfo, error) {
	return []MonitorInfo{
		{Index: 0, Name: "MON1", Primary: true, Bounds: platform.Rect{Right: 1920, Bottom: 1080}, ScaleX: 1, ScaleY: 1},
		{Index: 1, Name: "MON2", Bounds: platform.Rect{Left: 1920, Right: 3840, Bottom: 1080}, ScaleX: 1.5, ScaleY: 1.5},
	}, nil
}

func (f *fakeEngine) Reposition(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repos++
	return f.takeErr()
}

func (f *fakeEngine) SetEdge(_ context.Context, edge platform.Edge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edge = edge
	return nil
}

func (f *fakeEngine) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edge = platform.EdgeNone
	return nil
}

func (f *fakeEngine) CycleEdge(context.Context) (platform.Edge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edge = f.edge.Next()
	return f.edge, nil
}

func (f *fakeEngine) Toggle(context.Context) (platform.Edge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.edge == platform.EdgeNone {
		f.edge = platform.EdgeRight
	} else {
		f.edge = platform.EdgeNone
	}
	return f.edge, nil
}

func (f *fakeEngine) Resize(_ context.Context, req SetSizePayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sizes = append(f.sizes, req)
	return nil
}

func (f *fakeEngine) Reload(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return nil
}

func startServer(t *testing.T) (*fakeEngine, *Client) {
	t.Helper()
	dir, err := os.MkdirTemp("", "edgedock-ipc")
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	socket := filepath.Join(dir, "s.sock")
	engine := &fakeEngine{edge: platform.EdgeRight}
	srv := NewServerAt(socket, engine, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return engine, NewClientAt(socket)
}

func TestServer_StatusAndMonitors(t *testing.T) {
	_, client := startServer(t)

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Edge != "right" || !status.Registered || !status.DaemonRunning {
		t.Fatalf("unexpected status %+v", status)
	}

	mons, err := client.GetMonitors()
	if err != nil {
		t.Fatalf("GetMonitors: %v", err)
	}
	if len(mons.Monitors) != 2 || !mons.Monitors[0].Primary || mons.Monitors[1].ScaleX != 1.5 {
		t.Fatalf("unexpected monitors %+v", mons.Monitors)
	}
	if mons.Monitors[1].Bounds.Left != 1920 {
		t.Fatalf("bounds did not round-trip: %+v", mons.Monitors[1].Bounds)
	}
}

func TestServer_EdgeCommands(t *testing.T) {
	engine, client := startServer(t)

	if err := client.SetEdge("top"); err != nil {
		t.Fatalf("SetEdge: %v", err)
	}
	if engine.snapshot().edge != platform.EdgeTop {
		t.Fatalf("expected top, got %s", engine.snapshot().edge)
	}

	edge, err := client.CycleEdge()
	if err != nil {
		t.Fatalf("CycleEdge: %v", err)
	}
	if edge != "right" {
		t.Fatalf("expected cycle to right, got %q", edge)
	}

	if err := client.SetEdge("none"); err != nil {
		t.Fatalf("SetEdge none: %v", err)
	}
	if engine.snapshot().edge != platform.EdgeNone {
		t.Fatalf("expected floating after none, got %s", engine.snapshot().edge)
	}

	edge, err = client.Toggle()
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if edge != "right" {
		t.Fatalf("expected toggle to dock right, got %q", edge)
	}

	if err := client.SetEdge("diagonal"); err == nil {
		t.Fatalf("expected error for unknown edge")
	}
}

func TestServer_SetSize(t *testing.T) {
	engine, client := startServer(t)

	if err := client.SetSize(400, 0); err != nil {
		t.Fatalf("SetSize: %v", err)
	}
	if err := client.Grow(-10, 0); err != nil {
		t.Fatalf("Grow: %v", err)
	}
	if err := client.SetSize(0, 0); err == nil {
		t.Fatalf("expected error for empty size")
	}
	if err := client.SetSize(-5, 0); err == nil {
		t.Fatalf("expected error for negative absolute size")
	}

	sizes := engine.snapshot().sizes
	if len(sizes) != 2 {
		t.Fatalf("expected 2 resize calls, got %d", len(sizes))
	}
	if sizes[1].Width != -10 || !sizes[1].Delta {
		t.Fatalf("unexpected delta request %+v", sizes[1])
	}
}

func TestServer_RepositionErrorIsReported(t *testing.T) {
	engine, client := startServer(t)
	engine.fail(errors.New("loop stopped"))

	err := client.Reposition()
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := client.Reposition(); err != nil {
		t.Fatalf("second reposition: %v", err)
	}
	if got := engine.snapshot().repos; got != 2 {
		t.Fatalf("expected 2 reposition calls, got %d", got)
	}
}

func TestServer_ReloadAndUnknownCommand(t *testing.T) {
	engine, client := startServer(t)

	if err := client.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := engine.snapshot().reloads; got != 1 {
		t.Fatalf("expected 1 reload, got %d", got)
	}

	if _, err := client.send(CommandType("NOPE"), nil); err == nil {
		t.Fatalf("expected unknown command error")
	}
}

func TestClient_NoDaemon(t *testing.T) {
	client := NewClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	if err := client.Ping(); err == nil {
		t.Fatalf("expected connection error")
	}
}

func TestServer_ObserverSeesEveryRequest(t *testing.T) {
	dir, err := os.MkdirTemp("", "edgedock-ipc")
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	socket := filepath.Join(dir, "s.sock")
	engine := &fakeEngine{edge: platform.EdgeRight}
	srv := NewServerAt(socket, engine, nil)

	var (
		mu   sync.Mutex
		seen []string
	)
	srv.SetObserver(func(cmd CommandType, ok bool) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, fmt.Sprintf("%s:%v", cmd, ok))
	})
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(srv.Stop)

	client := NewClientAt(socket)
	if err := client.Reposition(); err != nil {
		t.Fatalf("Reposition: %v", err)
	}
	if err := client.SetEdge("diagonal"); err == nil {
		t.Fatalf("expected error for unknown edge")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"REPOSITION:true", "SET_EDGE:false"}
	if len(seen) != len(want) || seen[0] != want[0] || seen[1] != want[1] {
		t.Fatalf("observed %v, want %v", seen, want)
	}
}
