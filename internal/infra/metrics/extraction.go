package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		extractionBatches,
		extractionRecords,
		extractionTokensIn,
		extractionLatencyMs,
		inboxBatchesSpooled,
	)
}

var (
	extractionBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_batches_total",
			Help: "Analyzed batches per provider and outcome.",
		},
		[]string{"provider", "success"},
	)

	extractionRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_records_total",
			Help: "Job records produced by the extractor per provider.",
		},
		[]string{"provider"},
	)

	extractionTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_tokens_in",
			Help: "Sum of prompt (input) tokens per provider.",
		},
		[]string{"provider"},
	)

	extractionLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "extraction_latency_ms",
			Help:    "Extractor call latency distribution in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 20000, 45000},
		},
		[]string{"provider", "success"},
	)

	inboxBatchesSpooled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "inbox_batches_spooled_total",
			Help: "Raw alert batches pulled from the inbox into the spool.",
		},
	)
)

func ObserveExtraction(provider string, records, latencyMs int, success bool) {
	ok := strconv.FormatBool(success)
	extractionBatches.WithLabelValues(norm(provider), ok).Inc()
	extractionLatencyMs.WithLabelValues(norm(provider), ok).Observe(float64(latencyMs))
	if records > 0 {
		extractionRecords.WithLabelValues(norm(provider)).Add(float64(records))
	}
}

func ObserveExtractionTokens(provider string, tokens int) {
	if tokens > 0 {
		extractionTokensIn.WithLabelValues(norm(provider)).Add(float64(tokens))
	}
}

func IncInboxBatches(n int) {
	if n > 0 {
		inboxBatchesSpooled.Add(float64(n))
	}
}

func norm(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "unknown"
	}
	return s
}
