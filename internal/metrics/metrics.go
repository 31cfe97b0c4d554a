package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmatch_searches_total",
			Help: "Total number of searches run, by entry point",
		},
		[]string{"mode"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobmatch_search_duration_seconds",
			Help:    "End-to-end search latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40},
		},
		[]string{"mode"},
	)

	SourceJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmatch_source_jobs_total",
			Help: "Raw job records collected per source",
		},
		[]string{"source"},
	)

	SourceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "jobmatch_source_duration_seconds",
			Help: "Time spent collecting from one source in seconds",
		},
		[]string{"source"},
	)

	RankedJobs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobmatch_ranked_jobs_total",
			Help: "Job records that passed the relevance threshold",
		},
	)

	EmbeddingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobmatch_embedding_failures_total",
			Help: "Records excluded because their embedding failed",
		},
	)
)

// ObserveSource records one source's contribution to a search.
func ObserveSource(source string, count int, seconds float64) {
	SourceJobs.WithLabelValues(source).Add(float64(count))
	SourceDuration.WithLabelValues(source).Observe(seconds)
}
