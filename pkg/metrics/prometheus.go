package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictionsTotal *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	cacheHitsTotal   *prometheus.CounterVec
	probability      prometheus.Histogram
	inferenceLatency prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		predictionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fraudsight_predictions_total",
				Help: "Total number of scored transactions by classification",
			},
			[]string{"classification"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fraudsight_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		cacheHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fraudsight_prediction_cache_total",
				Help: "Prediction cache lookups by outcome",
			},
			[]string{"outcome"},
		),
		probability: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fraudsight_fraud_probability",
				Help:    "Distribution of scored fraud probabilities",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 0.75, 0.9, 0.99},
			},
		),
		inferenceLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fraudsight_inference_duration_seconds",
				Help:    "Duration of encode+infer in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordPrediction records a scored transaction.
func (r *Recorder) RecordPrediction(classification string, probability float64) {
	r.predictionsTotal.WithLabelValues(classification).Inc()
	r.probability.Observe(probability)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheLookup records a prediction cache hit or miss.
func (r *Recorder) RecordCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	r.cacheHitsTotal.WithLabelValues(outcome).Inc()
}

// RecordInferenceLatency records encode+infer latency in seconds.
func (r *Recorder) RecordInferenceLatency(seconds float64) {
	r.inferenceLatency.Observe(seconds)
}
