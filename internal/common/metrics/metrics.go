// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_submissions_total",
			Help: "Total number of loan submissions by outcome",
		},
		[]string{"outcome"},
	)

	SubmissionsBlocked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_submissions_blocked_total",
			Help: "Submissions stopped locally before any network call",
		},
		[]string{"reason"},
	)

	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loan_submission_duration_seconds",
			Help:    "Duration of the decision service round trip in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	SubmissionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loan_submissions_in_flight",
			Help: "Number of submissions awaiting a decision",
		},
	)

	IdentifierChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_identifier_checks_total",
			Help: "Identifier validations run on field blur",
		},
		[]string{"kind", "result"},
	)
)
