// Package metrics exposes Prometheus instrumentation for normalization,
// imports and the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"gigsafe/internal/safe"
)

// Import outcomes
const (
	OutcomeCreated   = "created"
	OutcomeUpdated   = "updated"
	OutcomeUnchanged = "unchanged"
	OutcomeSkipped   = "skipped"
)

// Metrics provides observability for the content pipeline.
// Tracks normalized records, fallback substitutions, imports and requests.
type Metrics struct {
	RecordsNormalized *prometheus.CounterVec
	Fallbacks         *prometheus.CounterVec
	RecordsImported   *prometheus.CounterVec
	ImportDuration    prometheus.Histogram
	HTTPRequests      *prometheus.CounterVec
	SSEClients        prometheus.Gauge
}

// New creates a new Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a Metrics instance registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsNormalized: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gigsafe_records_normalized_total",
			Help: "Total number of raw records normalized, by kind",
		}, []string{"kind"}),
		Fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gigsafe_fallbacks_total",
			Help: "Total number of fallback values substituted for missing or malformed fields",
		}, []string{"field_kind"}),
		RecordsImported: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gigsafe_import_records_total",
			Help: "Total number of imported records, by outcome",
		}, []string{"outcome"}),
		ImportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gigsafe_import_duration_seconds",
			Help:    "Duration of content imports",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gigsafe_http_requests_total",
			Help: "Total number of HTTP requests, by route pattern and status code",
		}, []string{"route", "code"}),
		SSEClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gigsafe_sse_clients",
			Help: "Number of connected event stream clients",
		}),
	}
}

// ObserveFallback counts one fallback substitution. It satisfies
// safe.FallbackObserver.
func (m *Metrics) ObserveFallback(kind safe.FieldKind) {
	m.Fallbacks.WithLabelValues(string(kind)).Inc()
}

// IncrementNormalized records one normalized record of the given kind.
func (m *Metrics) IncrementNormalized(kind string) {
	m.RecordsNormalized.WithLabelValues(kind).Inc()
}

// AddImported records n imported records with the given outcome.
func (m *Metrics) AddImported(outcome string, n int) {
	if n > 0 {
		m.RecordsImported.WithLabelValues(outcome).Add(float64(n))
	}
}

// ObserveImport records the duration of an import.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveImport(start time.Time) {
	m.ImportDuration.Observe(time.Since(start).Seconds())
}

// IncrementRequest records one served HTTP request.
func (m *Metrics) IncrementRequest(route string, code int) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// SetSSEClients records the number of connected event stream clients.
func (m *Metrics) SetSSEClients(n int) {
	m.SSEClients.Set(float64(n))
}

var _ safe.FallbackObserver = (*Metrics)(nil)
