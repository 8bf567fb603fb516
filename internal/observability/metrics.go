// Package observability exposes prometheus metrics for the import pipeline.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/przemyslaw-muller/allworkouts/internal/domain"
)

var (
	parsesCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "allworkouts",
		Subsystem: "importer",
		Name:      "plan_parses_total",
		Help:      "Number of workout-plan parse invocations that produced a result.",
	})

	matchedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "allworkouts",
		Subsystem: "importer",
		Name:      "exercises_matched_total",
		Help:      "Parsed exercises by confidence tier (or unmatched).",
	}, []string{"tier"})

	extractionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "allworkouts",
		Subsystem: "importer",
		Name:      "extraction_duration_seconds",
		Help:      "Latency of the external extraction service call.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"outcome"})

	substitutionCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "allworkouts",
		Subsystem: "matching",
		Name:      "substitution_requests_total",
		Help:      "Number of substitute-exercise lookups served.",
	})
)

func init() {
	prometheus.MustRegister(parsesCounter, matchedCounter, extractionDuration, substitutionCounter)
}

// RecordParse updates per-tier counters for one completed parse.
func RecordParse(summary domain.ConfidenceSummary) {
	parsesCounter.Inc()
	matchedCounter.WithLabelValues("high").Add(float64(summary.High))
	matchedCounter.WithLabelValues("medium").Add(float64(summary.Medium))
	matchedCounter.WithLabelValues("low").Add(float64(summary.Low))
	matchedCounter.WithLabelValues("unmatched").Add(float64(summary.Unmatched))
}

// RecordExtraction observes one extraction call.
func RecordExtraction(d time.Duration, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	extractionDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// RecordSubstitution counts a substitution lookup.
func RecordSubstitution() {
	substitutionCounter.Inc()
}
