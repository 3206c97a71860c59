// Package metrics provides Prometheus metrics for the news pipeline.
package metrics

import (
	"strconv"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchAttemptsTotal counts outbound HTTP attempts by retry policy and outcome.
	FetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tickernews",
			Name:      "fetch_attempts_total",
			Help:      "Total number of outbound fetch attempts",
		},
		[]string{"policy", "outcome"},
	)

	// FetchBackoffSeconds observes waits scheduled between retries.
	FetchBackoffSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tickernews",
			Name:      "fetch_backoff_seconds",
			Help:      "Backoff waits scheduled between fetch retries",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 16, 32},
		},
	)

	// TickerResultsTotal counts per-ticker fetch results.
	TickerResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tickernews",
			Name:      "ticker_results_total",
			Help:      "Total number of per-ticker news results",
		},
		[]string{"partial"},
	)

	// AggregationsTotal counts aggregation stage transitions.
	AggregationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tickernews",
			Name:      "aggregations_total",
			Help:      "Total number of aggregation stage transitions",
		},
		[]string{"stage"},
	)
)

// FetchObserver records every fetch attempt reported by the backoff client.
type FetchObserver struct{}

func (FetchObserver) ObserveAttempt(policy string, attempt model.FetchAttempt) {
	FetchAttemptsTotal.WithLabelValues(policy, attempt.Outcome).Inc()
	if attempt.Wait > 0 {
		FetchBackoffSeconds.Observe(attempt.Wait.Seconds())
	}
}

func RecordTickerResult(partial bool) {
	TickerResultsTotal.WithLabelValues(strconv.FormatBool(partial)).Inc()
}

func RecordStage(stage string) {
	AggregationsTotal.WithLabelValues(stage).Inc()
}
