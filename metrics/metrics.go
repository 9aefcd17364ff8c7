package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobscore_records_read_total",
			Help: "Total number of raw records read from the input",
		},
	)

	RecordsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscore_records_dropped_total",
			Help: "Total number of records excluded by the quality filter",
		},
		[]string{"reason"},
	)

	ParseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscore_parse_failures_total",
			Help: "Total number of field values that failed to parse",
		},
		[]string{"field"},
	)

	JobsScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobscore_jobs_scored_total",
			Help: "Total number of jobs that received an opportunity score",
		},
	)

	GoldenScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobscore_golden_score",
			Help:    "Distribution of computed golden scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
)
