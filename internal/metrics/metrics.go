// Package metrics implements the observability hooks with Prometheus
// collectors.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/PrismLauncher/mcmeta/pkg/observability"
)

const namespace = "mcmeta"

// Metrics holds every collector and implements [observability.SyncHooks],
// [observability.CacheHooks] and [observability.HTTPHooks].
type Metrics struct {
	// SyncPending is the pending work of a source's latest cycle.
	SyncPending *prometheus.GaugeVec
	// SyncCycleSeconds measures whole cycles. Labels: source
	SyncCycleSeconds *prometheus.HistogramVec
	// SyncItems counts finished tasks. Labels: source, result (ok or a class)
	SyncItems *prometheus.CounterVec
	// SyncItemSeconds measures single tasks. Labels: source
	SyncItemSeconds *prometheus.HistogramVec
	// GateDecisions counts change gate outcomes. Labels: source, decision
	GateDecisions *prometheus.CounterVec
	// Extractions counts installer profile parses. Labels: variant, result
	Extractions *prometheus.CounterVec

	CacheOps *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPSeconds  *prometheus.HistogramVec
	HTTPErrors   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SyncPending: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "sync", Name: "pending",
			Help: "Items pending in the latest sync cycle",
		}, []string{"source"}),
		SyncCycleSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "sync", Name: "cycle_duration_seconds",
			Help:    "Duration of sync cycles",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"source"}),
		SyncItems: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "sync", Name: "items_total",
			Help: "Sync tasks by outcome",
		}, []string{"source", "result"}),
		SyncItemSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "sync", Name: "item_duration_seconds",
			Help:    "Duration of single sync tasks",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		GateDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "sync", Name: "gate_decisions_total",
			Help: "Change gate decisions",
		}, []string{"source", "decision"}),
		Extractions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "forge", Name: "extractions_total",
			Help: "Installer profile extractions by matched variant",
		}, []string{"variant", "result"}),
		CacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "operations_total",
			Help: "Response cache operations",
		}, []string{"key_type", "op"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "upstream", Name: "responses_total",
			Help: "Upstream HTTP responses by status code",
		}, []string{"host", "code"}),
		HTTPSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "upstream", Name: "request_duration_seconds",
			Help:    "Upstream HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"host"}),
		HTTPErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "upstream", Name: "errors_total",
			Help: "Upstream HTTP transport failures",
		}, []string{"host"}),
	}
}

// Register creates collectors on reg and installs them as the process-wide
// observability hooks.
func Register(reg prometheus.Registerer) *Metrics {
	m := New(reg)
	observability.SetSyncHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
	return m
}

func (m *Metrics) OnSyncStart(_ context.Context, source string, pending int) {
	m.SyncPending.WithLabelValues(source).Set(float64(pending))
}

func (m *Metrics) OnItemComplete(_ context.Context, source, _ string, d time.Duration, class string) {
	result := class
	if result == "" {
		result = "ok"
	}
	m.SyncItems.WithLabelValues(source, result).Inc()
	m.SyncItemSeconds.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) OnSyncComplete(_ context.Context, source string, _, _ int, d time.Duration) {
	m.SyncCycleSeconds.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) OnGateDecision(_ context.Context, source string, regenerate bool) {
	decision := "skip"
	if regenerate {
		decision = "regenerate"
	}
	m.GateDecisions.WithLabelValues(source, decision).Inc()
}

func (m *Metrics) OnExtract(_ context.Context, _, variant string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Extractions.WithLabelValues(variant, result).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.CacheOps.WithLabelValues(keyType, "set").Inc()
}

// OnRequest is counted on response instead.
func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	m.HTTPSeconds.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.HTTPErrors.WithLabelValues(host).Inc()
}

var (
	_ observability.SyncHooks  = (*Metrics)(nil)
	_ observability.CacheHooks = (*Metrics)(nil)
	_ observability.HTTPHooks  = (*Metrics)(nil)
)
