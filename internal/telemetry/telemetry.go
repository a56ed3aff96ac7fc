// Package telemetry exposes the dashboard's Prometheus collectors.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "campaign_dashboard"

// Telemetry owns a private registry so that several dashboards (tests, the
// TUI next to the server) never collide on the global one.
type Telemetry struct {
	reg *prometheus.Registry

	derivations  *prometheus.CounterVec
	loads        *prometheus.CounterVec
	loadDuration prometheus.Histogram
	records      prometheus.Gauge
}

func New() *Telemetry {
	t := &Telemetry{
		reg: prometheus.NewRegistry(),
		derivations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "derivations_total",
			Help:      "Derived view reads by node and result (hit = served from cache).",
		}, []string{"node", "result"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_loads_total",
			Help:      "Snapshot loads by outcome.",
		}, []string{"outcome"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_load_duration_seconds",
			Help:      "Time spent fetching and decoding the snapshot.",
			Buckets:   prometheus.DefBuckets,
		}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_records",
			Help:      "Records in the current snapshot.",
		}),
	}
	t.reg.MustRegister(
		t.derivations, t.loads, t.loadDuration, t.records,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return t
}

// Observe implements memo.Observer.
func (t *Telemetry) Observe(node string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	t.derivations.WithLabelValues(node, result).Inc()
}

func (t *Telemetry) LoadSucceeded(d time.Duration, records int) {
	t.loads.WithLabelValues("success").Inc()
	t.loadDuration.Observe(d.Seconds())
	t.records.Set(float64(records))
}

func (t *Telemetry) LoadFailed(d time.Duration) {
	t.loads.WithLabelValues("failure").Inc()
	t.loadDuration.Observe(d.Seconds())
}

func (t *Telemetry) Registry() *prometheus.Registry { return t.reg }

func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.reg, promhttp.HandlerOpts{Registry: t.reg})
}
