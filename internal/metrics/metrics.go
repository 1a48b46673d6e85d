// Package metrics exposes Prometheus counters for segment analysis runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"surveyinsight/internal/segment"
)

const namespace = "surveyinsight"

// Recorder collects analysis metrics on its own registry so several
// recorders can coexist in one process
type Recorder struct {
	registry *prometheus.Registry

	// runs counts completed engine runs
	runs prometheus.Counter

	// pairs counts evaluated source/target pairs
	pairs prometheus.Counter

	// insights counts significant pairs
	insights prometheus.Counter

	// skips counts pairs that produced no insight. Labels: reason
	skips *prometheus.CounterVec

	// runDuration measures wall time per run
	runDuration prometheus.Histogram
}

// NewRecorder registers the analysis metrics on a fresh registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		runs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Completed segment analysis runs",
		}),
		pairs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "pairs_total",
			Help:      "Source/target pairs evaluated",
		}),
		insights: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "insights_total",
			Help:      "Significant source/target pairs",
		}),
		skips: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "skips_total",
			Help:      "Pairs that produced no insight, by reason",
		}, []string{"reason"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "run_duration_seconds",
			Help:      "Wall time of one analysis run",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// ObserveSkip implements segment.SkipObserver
func (r *Recorder) ObserveSkip(skip segment.Skip) {
	r.skips.WithLabelValues(string(skip.Reason)).Inc()
}

// ObserveRun records a finished run
func (r *Recorder) ObserveRun(result *segment.Result) {
	if result == nil {
		return
	}
	r.runs.Inc()
	r.pairs.Add(float64(result.Stats.PairsTested))
	r.insights.Add(float64(result.Stats.Insights))
	r.runDuration.Observe(result.Stats.Duration.Seconds())
}

// Registry returns the registry the metrics live on
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the metrics in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
