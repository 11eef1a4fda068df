package metrics

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape status = %d", rec.Code)
	}
	return rec.Body.String()
}

func TestObserveCounters(t *testing.T) {
	m := New(nil)
	m.ObserveRequest("REPOSITION", true)
	m.ObserveRequest("REPOSITION", true)
	m.ObserveRequest("SET_EDGE", false)
	m.ObserveReload("sighup", nil)
	m.ObserveReload("file", errors.New("bad yaml"))
	m.TopologyChanges.Inc()

	body := scrape(t, m)
	for _, want := range []string{
		`edgedock_ipc_requests_total{command="REPOSITION",result="ok"} 2`,
		`edgedock_ipc_requests_total{command="SET_EDGE",result="error"} 1`,
		`edgedock_config_reloads_total{result="ok",trigger="sighup"} 1`,
		`edgedock_config_reloads_total{result="error",trigger="file"} 1`,
		"edgedock_topology_changes_total 1",
		"edgedock_uptime_seconds",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("scrape missing %q", want)
		}
	}
}

func TestDockCollector(t *testing.T) {
	m := New(func() (string, bool, bool) { return "top", true, true })
	body := scrape(t, m)
	for _, want := range []string{
		"edgedock_registered 1",
		`edgedock_edge{edge="top"} 1`,
		`edgedock_edge{edge="left"} 0`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("scrape missing %q:\n%s", want, body)
		}
	}
}

func TestDockCollector_SkipsWhenEngineSilent(t *testing.T) {
	m := New(func() (string, bool, bool) { return "", false, false })
	if body := scrape(t, m); strings.Contains(body, "edgedock_registered") {
		t.Fatalf("unexpected dock gauges when engine is silent")
	}
}

func TestServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	m := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, addr, nil) }()

	var body string
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err == nil {
			data, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			body = string(data)
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !strings.Contains(body, "edgedock_uptime_seconds") {
		t.Fatalf("metrics endpoint not served: %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("Serve did not stop")
	}
}
