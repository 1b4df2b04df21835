// Package metrics exposes batch and lookup-API measurements as Prometheus
// collectors. Each Recorder owns a private registry so concurrent runs and tests
// never share state.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	"github.com/fdkg-lab/fdkg-advisor/advisor"
	"github.com/fdkg-lab/fdkg-advisor/advisor/trace"
)

const namespace = "fdkg_advisor"

// TextfileName is the artifact name of the rendered metrics.
const TextfileName = "metrics.prom"

// Recorder holds the collectors of one process.
type Recorder struct {
	registry *prometheus.Registry

	recordsLoaded  *prometheus.GaugeVec
	scenarios      *prometheus.CounterVec
	qualifying     *prometheus.HistogramVec
	chosenGuards   *prometheus.HistogramVec
	batchDuration  *prometheus.GaugeVec
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		recordsLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_loaded",
			Help:      "Simulation records held per dataset after duplicate resolution",
		}, []string{"dataset"}),
		scenarios: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenarios_total",
			Help:      "Grid scenarios evaluated, by outcome",
		}, []string{"dataset", "outcome"}),
		qualifying: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "qualifying_configurations",
			Help:      "Configurations meeting the success threshold per recommended scenario",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"dataset"}),
		chosenGuards: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommended_guardians",
			Help:      "Guardian count of the recommended configuration",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"dataset"}),
		batchDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of the last batch run per dataset",
		}, []string{"dataset"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Lookup API requests by route and status code",
		}, []string{"route", "code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Lookup API request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	r.registry.MustRegister(
		r.recordsLoaded,
		r.scenarios,
		r.qualifying,
		r.chosenGuards,
		r.batchDuration,
		r.requests,
		r.requestLatency,
	)
	return r
}

// ObserveBatch records one dataset's batch run: its record count, every scenario
// decision of the trace and the elapsed time.
func (r *Recorder) ObserveBatch(res *advisor.BatchResult, records int, elapsed time.Duration) {
	r.recordsLoaded.WithLabelValues(res.Dataset).Set(float64(records))
	r.batchDuration.WithLabelValues(res.Dataset).Set(elapsed.Seconds())
	if res.Trace == nil {
		return
	}
	for _, d := range res.Trace.Decisions {
		r.scenarios.WithLabelValues(res.Dataset, string(d.Outcome)).Inc()
		if d.Outcome != trace.OutcomeRecommended {
			continue
		}
		r.qualifying.WithLabelValues(res.Dataset).Observe(float64(d.QualifyingCount))
		r.chosenGuards.WithLabelValues(res.Dataset).Observe(float64(d.Guardians))
	}
}

// ObserveRequest records one served API request. route is the matched route
// pattern, not the raw path, to keep label cardinality bounded.
func (r *Recorder) ObserveRequest(route string, status int, elapsed time.Duration) {
	r.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	r.requestLatency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Render writes the current values in the text exposition format, suitable for a
// node-exporter textfile collector.
func (r *Recorder) Render(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encoding %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
