package mcp

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/1broseidon/edgedock/internal/ipc"
)

type fakeClient struct {
	calls  []string
	status ipc.StatusData
	edge   string
	err    error
}

func (f *fakeClient) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeClient) GetStatus() (*ipc.StatusData, error) {
	if err := f.record("status"); err != nil {
		return nil, err
	}
	st := f.status
	return &st, nil
}

func (f *fakeClient) GetMonitors() (*ipc.MonitorsData, error) {
	if err := f.record("monitors"); err != nil {
		return nil, err
	}
	return &ipc.MonitorsData{Monitors: []ipc.MonitorInfo{{Index: 0, Name: "MON1", Primary: true}}}, nil
}

func (f *fakeClient) SetEdge(edge string) error {
	f.edge = edge
	return f.record("set_edge")
}

func (f *fakeClient) Clear() error { return f.record("clear") }

func (f *fakeClient) CycleEdge() (string, error) { return "top", f.record("cycle") }

func (f *fakeClient) Toggle() (string, error) { return "none", f.record("toggle") }

func (f *fakeClient) SetSize(width, height int) error {
	f.status.Width, f.status.Height = width, height
	return f.record("set_size")
}

func (f *fakeClient) Grow(dw, dh int) error {
	f.status.Width += dw
	f.status.Height += dh
	f.status.PendingSettings = true
	return f.record("grow")
}

func (f *fakeClient) Reposition() error { return f.record("reposition") }

func (f *fakeClient) Reload() error { return f.record("reload") }

func TestNewServer_RegistersTools(t *testing.T) {
	if s := NewServer(&fakeClient{}, nil); s.mcpServer == nil {
		t.Fatalf("mcp server not created")
	}
}

func TestHandleSetEdge_NormalizesEdge(t *testing.T) {
	fc := &fakeClient{}
	s := NewServer(fc, nil)

	_, out, err := s.handleSetEdge(context.Background(), nil, SetEdgeInput{Edge: " Bottom "})
	if err != nil {
		t.Fatalf("handleSetEdge: %v", err)
	}
	if out.Edge != "bottom" || fc.edge != "bottom" {
		t.Fatalf("edge out=%q sent=%q, want bottom", out.Edge, fc.edge)
	}
}

func TestHandleSetEdge_RejectsInvalid(t *testing.T) {
	for _, edge := range []string{"", "middle"} {
		fc := &fakeClient{}
		s := NewServer(fc, nil)
		if _, _, err := s.handleSetEdge(context.Background(), nil, SetEdgeInput{Edge: edge}); err == nil {
			t.Fatalf("edge %q: expected error", edge)
		}
		if len(fc.calls) != 0 {
			t.Fatalf("edge %q: daemon was called: %v", edge, fc.calls)
		}
	}
}

func TestHandleSetSize(t *testing.T) {
	tests := []struct {
		name      string
		in        SetSizeInput
		wantCalls []string
		want      SetSizeOutput
		wantErr   bool
	}{
		{name: "absolute", in: SetSizeInput{Width: 300, Height: 40}, wantCalls: []string{"set_size", "status"}, want: SetSizeOutput{Width: 300, Height: 40}},
		{name: "delta", in: SetSizeInput{Width: 20, Delta: true}, wantCalls: []string{"grow", "status"}, want: SetSizeOutput{Width: 120, Height: 30, Pending: true}},
		{name: "empty", in: SetSizeInput{}, wantErr: true},
		{name: "negative absolute", in: SetSizeInput{Width: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{status: ipc.StatusData{Width: 100, Height: 30}}
			s := NewServer(fc, nil)
			_, out, err := s.handleSetSize(context.Background(), nil, tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("handleSetSize: %v", err)
			}
			if !slices.Equal(fc.calls, tt.wantCalls) {
				t.Fatalf("calls = %v, want %v", fc.calls, tt.wantCalls)
			}
			if out != tt.want {
				t.Fatalf("out = %+v, want %+v", out, tt.want)
			}
		})
	}
}

func TestHandlers_ForwardToDaemon(t *testing.T) {
	fc := &fakeClient{status: ipc.StatusData{Edge: "right", Registered: true}}
	s := NewServer(fc, nil)
	ctx := context.Background()

	if _, out, err := s.handleGetStatus(ctx, nil, GetStatusInput{}); err != nil || out.Status.Edge != "right" {
		t.Fatalf("get status = %+v, %v", out, err)
	}
	if _, out, err := s.handleListMonitors(ctx, nil, ListMonitorsInput{}); err != nil || len(out.Monitors) != 1 {
		t.Fatalf("list monitors = %+v, %v", out, err)
	}
	if _, out, err := s.handleUndock(ctx, nil, UndockInput{}); err != nil || out.Edge != "none" {
		t.Fatalf("undock = %+v, %v", out, err)
	}
	if _, out, err := s.handleCycleEdge(ctx, nil, CycleEdgeInput{}); err != nil || out.Edge != "top" {
		t.Fatalf("cycle = %+v, %v", out, err)
	}
	if _, out, err := s.handleToggleDock(ctx, nil, ToggleDockInput{}); err != nil || out.Edge != "none" {
		t.Fatalf("toggle = %+v, %v", out, err)
	}
	if _, out, err := s.handleReposition(ctx, nil, RepositionInput{}); err != nil || !out.OK {
		t.Fatalf("reposition = %+v, %v", out, err)
	}
	if _, out, err := s.handleReloadConfig(ctx, nil, ReloadConfigInput{}); err != nil || !out.OK {
		t.Fatalf("reload = %+v, %v", out, err)
	}

	want := []string{"status", "monitors", "clear", "cycle", "toggle", "reposition", "reload"}
	if !slices.Equal(fc.calls, want) {
		t.Fatalf("calls = %v, want %v", fc.calls, want)
	}
}

func TestHandlers_WrapDaemonErrors(t *testing.T) {
	daemonErr := errors.New("daemon not running")
	s := NewServer(&fakeClient{err: daemonErr}, nil)

	_, _, err := s.handleReposition(context.Background(), nil, RepositionInput{})
	if !errors.Is(err, daemonErr) {
		t.Fatalf("err = %v, want wrapped daemon error", err)
	}
	_, _, err = s.handleGetStatus(context.Background(), nil, GetStatusInput{})
	if !errors.Is(err, daemonErr) {
		t.Fatalf("err = %v, want wrapped daemon error", err)
	}
}
