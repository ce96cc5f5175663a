package s3

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	s3errors "github.com/vudodov/aws.s3/errors"
	"github.com/vudodov/aws.s3/s3types"
)

const metricsNamespace = "s3walk"

// Metrics exposes walk telemetry as Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	pages    *prometheus.CounterVec
	objects  *prometheus.CounterVec
	walks    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

var _ s3types.Recorder = (*Metrics)(nil)

// NewMetrics creates the walk collectors and registers them with reg.
// A nil reg leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pages_total",
			Help:      "Listing pages requested, by outcome.",
		}, []string{"outcome"}),
		objects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "objects_total",
			Help:      "Listed objects, by outcome.",
		}, []string{"outcome"}),
		walks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "walks_total",
			Help:      "Completed walks, by variant and outcome.",
		}, []string{"variant", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "walk_duration_seconds",
			Help:      "Walk duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
		}, []string{"variant"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "operations_in_flight",
			Help:      "Per-object operations currently running.",
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.pages, m.objects, m.walks, m.duration, m.inFlight} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// RecordPage counts a listing request.
func (m *Metrics) RecordPage(succeeded bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !succeeded {
		outcome = "failure"
	}
	m.pages.WithLabelValues(outcome).Inc()
}

// RecordObject counts a listed object.
func (m *Metrics) RecordObject(outcome s3types.ObjectOutcome) {
	if m == nil {
		return
	}
	m.objects.WithLabelValues(string(outcome)).Inc()
}

// OperationStarted marks a per-object operation as running.
func (m *Metrics) OperationStarted() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

// OperationFinished marks a per-object operation as done.
func (m *Metrics) OperationFinished() {
	if m == nil {
		return
	}
	m.inFlight.Dec()
}

// RecordWalk counts a finished walk and observes its duration.
func (m *Metrics) RecordWalk(variant string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.walks.WithLabelValues(variant, walkOutcome(err)).Inc()
	m.duration.WithLabelValues(variant).Observe(d.Seconds())
}

// walkOutcome maps a walk error onto a low-cardinality label value.
func walkOutcome(err error) string {
	if err == nil {
		return "success"
	}
	return strings.ToLower(string(s3errors.CodeOf(err)))
}
