// Package metrics exposes daemon counters in the Prometheus text format.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "edgedock"

// DockState reports the dock for scrape-time gauges. ok is false when the
// engine did not answer.
type DockState func() (edge string, registered bool, ok bool)

// Metrics holds the daemon's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	Reloads         *prometheus.CounterVec
	TopologyChanges prometheus.Counter
}

var edges = []string{"left", "top", "right", "bottom", "none"}

// New registers the collectors. state may be nil.
func New(state DockState) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ipc_requests_total",
			Help:      "IPC requests handled, by command and result.",
		}, []string{"command", "result"}),
		Reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_reloads_total",
			Help:      "Config reloads, by trigger and result.",
		}, []string{"trigger", "result"}),
		TopologyChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "topology_changes_total",
			Help:      "Monitor topology changes that forced a reposition.",
		}),
	}

	start := time.Now()
	m.registry.MustRegister(
		m.Requests,
		m.Reloads,
		m.TopologyChanges,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Seconds since the daemon started.",
		}, func() float64 { return time.Since(start).Seconds() }),
		collectors.NewGoCollector(),
	)
	if state != nil {
		m.registry.MustRegister(newDockCollector(state))
	}
	return m
}

// ObserveRequest counts one IPC request.
func (m *Metrics) ObserveRequest(command string, ok bool) {
	m.Requests.WithLabelValues(command, result(ok)).Inc()
}

// ObserveReload counts one reload attempt.
func (m *Metrics) ObserveReload(trigger string, err error) {
	m.Reloads.WithLabelValues(trigger, result(err == nil)).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve listens on addr and serves /metrics until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// dockCollector asks the engine for its state on every scrape.
type dockCollector struct {
	state      DockState
	registered *prometheus.Desc
	edge       *prometheus.Desc
}

func newDockCollector(state DockState) *dockCollector {
	return &dockCollector{
		state: state,
		registered: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "registered"),
			"1 while the window holds a shell reservation.",
			nil, nil,
		),
		edge: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "edge"),
			"1 for the edge the dock currently uses.",
			[]string{"edge"}, nil,
		),
	}
}

func (c *dockCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.registered
	ch <- c.edge
}

func (c *dockCollector) Collect(ch chan<- prometheus.Metric) {
	edge, registered, ok := c.state()
	if !ok {
		return
	}
	reg := 0.0
	if registered {
		reg = 1
	}
	ch <- prometheus.MustNewConstMetric(c.registered, prometheus.GaugeValue, reg)
	for _, e := range edges {
		v := 0.0
		if e == edge {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(c.edge, prometheus.GaugeValue, v, e)
	}
}
