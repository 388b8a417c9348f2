// Package metrics exposes Prometheus instrumentation for the scrape
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScrapeUnits counts per-(student, platform) scrape outcomes.
	ScrapeUnits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tracker",
		Name:      "scrape_units_total",
		Help:      "Scrape units processed, by platform and outcome.",
	}, []string{"platform", "outcome"})

	// BatchDuration tracks how long full batch runs take.
	BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tracker",
		Name:      "batch_duration_seconds",
		Help:      "Duration of full batch scrape runs.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	// LastBatchTime records when the last batch finished.
	LastBatchTime = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tracker",
		Name:      "last_batch_timestamp_seconds",
		Help:      "Unix time of the last completed batch run.",
	})

	// BatchStudents reports the aggregate counters of the last batch.
	BatchStudents = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tracker",
		Name:      "batch_students",
		Help:      "Student counts from the last batch run, by status.",
	}, []string{"status"})
)

// RecordUnit tallies one scrape unit outcome.
func RecordUnit(platform string, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	ScrapeUnits.WithLabelValues(platform, outcome).Inc()
}

// RecordBatch publishes the aggregate outcome of one batch run.
func RecordBatch(duration time.Duration, updated, failed, total int) {
	BatchDuration.Observe(duration.Seconds())
	LastBatchTime.SetToCurrentTime()
	BatchStudents.WithLabelValues("updated").Set(float64(updated))
	BatchStudents.WithLabelValues("failed").Set(float64(failed))
	BatchStudents.WithLabelValues("total").Set(float64(total))
}
