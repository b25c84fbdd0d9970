package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssessmentsScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fundable_assessments_scored_total",
			Help: "Total number of fundability scoring passes",
		},
	)

	OverallScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fundable_overall_score",
			Help:    "Distribution of overall fundability scores",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
	)

	RecommendationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundable_recommendations_generated_total",
			Help: "Total number of recommendations generated by priority",
		},
		[]string{"priority"},
	)

	LenderMatches = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fundable_lender_matches",
			Help:    "Number of lenders returned per matching request",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
		},
	)

	LendersEvaluated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fundable_lenders_evaluated_total",
			Help: "Total number of lenders scored by the matcher",
		},
	)

	DirectoryRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundable_directory_requests_total",
			Help: "Lender directory lookups by source and result",
		},
		[]string{"source", "result"},
	)
)
