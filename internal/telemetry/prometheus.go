package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	m "sieve.dev/pkg/sieve/internal/model"
)

// Metrics aggregates events into Prometheus collectors on a private registry.
// WriteTextfile exports them for the node_exporter textfile collector.
type Metrics struct {
	registry *prometheus.Registry

	sessions          prometheus.Counter
	baselineLines     prometheus.Gauge
	generated         *prometheus.CounterVec
	generationFailure *prometheus.CounterVec
	rejections        *prometheus.CounterVec
	survivors         *prometheus.CounterVec
	stageDuration     *prometheus.HistogramVec
}

// NewMetrics registers the sieve collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		sessions: factory.NewCounter(prometheus.CounterOpts{
			Name: "sieve_sessions_total",
			Help: "Number of improvement sessions started.",
		}),
		baselineLines: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sieve_baseline_covered_lines",
			Help: "Covered lines of the original test file.",
		}),
		generated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sieve_candidates_generated_total",
			Help: "Candidates extracted from generation responses.",
		}, []string{"strategy"}),
		generationFailure: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sieve_generation_failures_total",
			Help: "Generation calls that failed or returned no test.",
		}, []string{"strategy", "kind"}),
		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sieve_rejections_total",
			Help: "Rejected candidates by stage and reason.",
		}, []string{"stage", "reason"}),
		survivors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sieve_survivors_total",
			Help: "Candidates that passed every stage.",
		}, []string{"strategy"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sieve_stage_duration_seconds",
			Help:    "Time spent per filtration stage.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"stage"}),
	}
}

// Emit implements Sink.
func (mt *Metrics) Emit(event Event) {
	switch event.Kind {
	case KindSessionStarted:
		mt.sessions.Inc()
	case KindBaseline:
		if lines, ok := event.Data["lines"].(int); ok {
			mt.baselineLines.Set(float64(lines))
		}
	case KindCandidateGenerated:
		mt.generated.WithLabelValues(event.Strategy).Inc()
	case KindGenerationFailed, KindGenerationEmpty:
		mt.generationFailure.WithLabelValues(event.Strategy, string(event.Kind)).Inc()
	case KindStagePassed:
		mt.stageDuration.WithLabelValues(string(event.Stage)).Observe(event.Duration.Seconds())
	case KindStageRejected:
		mt.stageDuration.WithLabelValues(string(event.Stage)).Observe(event.Duration.Seconds())
		mt.rejections.WithLabelValues(string(event.Stage), string(event.Reason)).Inc()
	case KindVerdict:
		if event.Stage == m.StageSurvived {
			mt.survivors.WithLabelValues(event.Strategy).Inc()
		}
	}
}

// Registry exposes the underlying registry.
func (mt *Metrics) Registry() *prometheus.Registry {
	return mt.registry
}

// WriteTextfile writes the current values in the text exposition format.
func (mt *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, mt.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}
