package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements ports.MetricsCollector using Prometheus
type Collector struct {
	modsCreated  *prometheus.CounterVec
	modsDeleted  prometheus.Counter
	likes        prometheus.Counter
	imports      prometheus.Counter
	importedMods prometheus.Counter
	modCount     prometheus.Gauge
	uploads      *prometheus.CounterVec

	upstreamCalls   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewCollector creates a collector whose metrics are registered on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		modsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modhub_mods_created_total",
				Help: "Total number of mods created",
			},
			[]string{"origin"},
		),
		modsDeleted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "modhub_mods_deleted_total",
				Help: "Total number of mods deleted",
			},
		),
		likes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "modhub_likes_total",
				Help: "Total number of likes recorded",
			},
		),
		imports: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "modhub_imports_total",
				Help: "Total number of full catalog imports",
			},
		),
		importedMods: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "modhub_imported_mods_total",
				Help: "Total number of mods loaded through catalog imports",
			},
		),
		modCount: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "modhub_mods",
				Help: "Current number of mods in the catalog",
			},
		),
		uploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modhub_uploads_total",
				Help: "Total number of uploaded files",
			},
			[]string{"kind"},
		),
		upstreamCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modhub_upstream_requests_total",
				Help: "Total number of requests to the external catalog",
			},
			[]string{"operation", "status"},
		),
		upstreamLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modhub_upstream_latency_seconds",
				Help:    "External catalog request latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"operation"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modhub_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modhub_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"method", "route"},
		),
	}
}

// RecordModCreated counts a new mod. origin is "public", "admin" or "gamebanana".
func (c *Collector) RecordModCreated(origin string) {
	c.modsCreated.WithLabelValues(origin).Inc()
}

// RecordModDeleted counts a deleted mod
func (c *Collector) RecordModDeleted() {
	c.modsDeleted.Inc()
}

// RecordLike counts a like
func (c *Collector) RecordLike() {
	c.likes.Inc()
}

// RecordImport counts a full import of count mods
func (c *Collector) RecordImport(count int) {
	c.imports.Inc()
	c.importedMods.Add(float64(count))
}

// SetModCount sets the current catalog size
func (c *Collector) SetModCount(count int) {
	c.modCount.Set(float64(count))
}

// RecordUpload counts a stored upload of the given kind
func (c *Collector) RecordUpload(kind string) {
	c.uploads.WithLabelValues(kind).Inc()
}

// RecordUpstreamCall records an external catalog request
func (c *Collector) RecordUpstreamCall(operation, status string, duration time.Duration) {
	c.upstreamCalls.WithLabelValues(operation, status).Inc()
	c.upstreamLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records a served HTTP request
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
