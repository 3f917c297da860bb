package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns the service's Prometheus collectors. Constructing a fresh
// registry per process keeps tests free of global collector state.
type Registry struct {
	reg *prometheus.Registry

	PredictionsTotal   prometheus.Counter
	PredictionFailures prometheus.Counter
	PredictLatencySec  prometheus.Histogram

	AnomalyVerdicts       *prometheus.CounterVec
	ModerationTransitions *prometheus.CounterVec
	ModerationConflicts   prometheus.Counter
	SubmissionsTotal      prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	predictions := prometheus.NewCounter(prometheus.CounterOpts{Name: "motoprice_predictions_total"})
	predictionFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "motoprice_prediction_failures_total"})
	predictLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "motoprice_predict_latency_seconds",
		Buckets: prometheus.DefBuckets,
	})
	anomalyVerdicts := prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "motoprice_anomaly_verdicts_total"},
		[]string{"classification"},
	)
	moderationTransitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "motoprice_moderation_transitions_total"},
		[]string{"action"},
	)
	moderationConflicts := prometheus.NewCounter(prometheus.CounterOpts{Name: "motoprice_moderation_conflicts_total"})
	submissions := prometheus.NewCounter(prometheus.CounterOpts{Name: "motoprice_submissions_total"})

	r.MustRegister(predictions, predictionFailures, predictLatency,
		anomalyVerdicts, moderationTransitions, moderationConflicts, submissions)

	return &Registry{
		reg:                   r,
		PredictionsTotal:      predictions,
		PredictionFailures:    predictionFailures,
		PredictLatencySec:     predictLatency,
		AnomalyVerdicts:       anomalyVerdicts,
		ModerationTransitions: moderationTransitions,
		ModerationConflicts:   moderationConflicts,
		SubmissionsTotal:      submissions,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
