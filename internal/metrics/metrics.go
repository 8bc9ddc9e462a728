// Package metrics exposes prometheus instrumentation for the ledger
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntriesInserted counts entries written by single adds and batches.
	EntriesInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "munim_entries_inserted_total",
		Help: "Number of ledger entries inserted.",
	})

	// EntriesSkipped counts bulk-import entries skipped as duplicates.
	EntriesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "munim_entries_skipped_total",
		Help: "Number of batch entries skipped as duplicates.",
	})

	// LinesFailed counts shorthand lines that failed to parse.
	LinesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "munim_lines_failed_total",
		Help: "Number of shorthand lines rejected with a parse error.",
	})

	// BatchDuration observes end-to-end batch application time.
	BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "munim_batch_duration_seconds",
		Help:    "Time to parse and apply one shorthand batch.",
		Buckets: prometheus.DefBuckets,
	})
)
