package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	pipelineRuns    *prometheus.CounterVec
	pipelineLatency *prometheus.HistogramVec
	phaseLatency    *prometheus.HistogramVec
	analystFailures *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	fetches         *prometheus.CounterVec
}

// New registers the pipeline metrics on the default registry. Call it once per process.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers on reg; a nil reg leaves the collectors unregistered.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		pipelineRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpilot_pipeline_runs_total",
				Help: "Pipeline runs by final status",
			},
			[]string{"status"},
		),
		pipelineLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpilot_pipeline_duration_seconds",
				Help:    "End to end pipeline duration",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"status"},
		),
		phaseLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpilot_pipeline_phase_duration_seconds",
				Help:    "Duration of each pipeline phase",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"phase"},
		),
		analystFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpilot_analyst_failures_total",
				Help: "Analysts that failed or timed out and fell back to neutral",
			},
			[]string{"analyst"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpilot_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpilot_http_client_fetches_total",
				Help: "Outbound provider fetches by outcome (cache_hit, success, retry, failure)",
			},
			[]string{"outcome"},
		),
	}
}

func (r *Recorder) RecordPipelineRun(status string, seconds float64) {
	r.pipelineRuns.WithLabelValues(status).Inc()
	r.pipelineLatency.WithLabelValues(status).Observe(seconds)
}

func (r *Recorder) RecordPhaseLatency(phase string, seconds float64) {
	r.phaseLatency.WithLabelValues(phase).Observe(seconds)
}

func (r *Recorder) RecordAnalystFailure(analyst string) {
	r.analystFailures.WithLabelValues(analyst).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordFetch matches the HTTP client observer signature.
func (r *Recorder) RecordFetch(outcome string) {
	r.fetches.WithLabelValues(outcome).Inc()
}

// Noop discards everything.
type Noop struct{}

func (Noop) RecordPipelineRun(string, float64)  {}
func (Noop) RecordPhaseLatency(string, float64) {}
func (Noop) RecordAnalystFailure(string)        {}
func (Noop) RecordError(string)                 {}
func (Noop) RecordFetch(string)                 {}
