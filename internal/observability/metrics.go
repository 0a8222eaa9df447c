// Package observability declares the report service's Prometheus collectors.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	cycleCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "report_service",
		Subsystem: "controller",
		Name:      "cycles_total",
		Help:      "Completed load cycles partitioned by outcome.",
	}, []string{"outcome"})
	staleCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "report_service",
		Subsystem: "controller",
		Name:      "stale_responses_total",
		Help:      "Fetch results discarded because a newer cycle had started.",
	})
	summaryFallbackCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "report_service",
		Subsystem: "controller",
		Name:      "summary_fallbacks_total",
		Help:      "External summaries replaced by local aggregation because they did not reconcile.",
	})
	fetchLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "report_service",
		Subsystem: "source",
		Name:      "fetch_duration_seconds",
		Help:      "Latency of record and summary fetches.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind", "outcome"})
	rejectedRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "report_service",
		Subsystem: "source",
		Name:      "rejected_records_total",
		Help:      "Records dropped at ingestion because they failed validation.",
	}, []string{"source"})
	exportCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "report_service",
		Subsystem: "export",
		Name:      "documents_total",
		Help:      "Rendered report documents partitioned by format.",
	}, []string{"format"})
	lastExportGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "report_service",
		Subsystem: "export",
		Name:      "last_export_timestamp_seconds",
		Help:      "Unix timestamp of the most recent document export.",
	})
)

func init() {
	prometheus.MustRegister(cycleCounter, staleCounter, summaryFallbackCounter, fetchLatency, rejectedRecords, exportCounter, lastExportGauge)
}

// RecordCycle counts a finished load cycle; outcome is "ready" or "error".
func RecordCycle(outcome string) {
	cycleCounter.WithLabelValues(outcome).Inc()
}

// RecordStale counts a discarded out-of-date fetch result.
func RecordStale() {
	staleCounter.Inc()
}

// RecordSummaryFallback counts an external summary that was replaced.
func RecordSummaryFallback() {
	summaryFallbackCounter.Inc()
}

// ObserveFetch records how long a fetch of kind ("records" or "summary") took.
func ObserveFetch(kind string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	fetchLatency.WithLabelValues(kind, outcome).Observe(time.Since(started).Seconds())
}

// RecordRejected counts records dropped by a source's ingestion validation.
func RecordRejected(source string, n int) {
	if n <= 0 {
		return
	}
	rejectedRecords.WithLabelValues(source).Add(float64(n))
}

// RecordExport counts a rendered document and updates the export watermark.
func RecordExport(format string, ts time.Time) {
	exportCounter.WithLabelValues(format).Inc()
	if !ts.IsZero() {
		lastExportGauge.Set(float64(ts.Unix()))
	}
}
