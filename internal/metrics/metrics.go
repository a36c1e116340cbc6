package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EstimatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeenergy_estimates_total",
			Help: "Total estimation requests by outcome",
		},
		[]string{"outcome"},
	)

	EstimateLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "homeenergy_estimate_latency_seconds",
			Help:    "Time spent encoding features and calling the model",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		},
	)

	PredictedKWh = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "homeenergy_predicted_kwh",
			Help:    "Distribution of predicted monthly consumption in kWh",
			Buckets: prometheus.LinearBuckets(100, 100, 15),
		},
	)

	ArtifactFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeenergy_artifact_fetches_total",
			Help: "Model artifact fetch attempts by source scheme and status",
		},
		[]string{"scheme", "status"},
	)

	ModelInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "homeenergy_model_info",
			Help: "Loaded model artifact, value is always 1",
		},
		[]string{"name", "kind"},
	)

	InsightsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeenergy_insights_total",
			Help: "Narrative insight generation attempts by status",
		},
		[]string{"status"},
	)
)
