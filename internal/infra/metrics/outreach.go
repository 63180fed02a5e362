package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		reconcileEligible,
		reconcileDropped,
		sendLatencyMs,
		sendOutcomes,
		duplicateBlocks,
		ledgerWriteAfterSend,
	)
}

var (
	reconcileEligible = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reconcile_eligible_records",
			Help:    "Eligible records per reconcile pass.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	reconcileDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_dropped_total",
			Help: "Records dropped during reconcile by reason.",
		},
		[]string{"reason"}, // 'malformed_address', 'already_sent'
	)

	sendLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "send_latency_ms",
			Help:    "Send path latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"outcome"},
	)

	sendOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "send_outcomes_total",
			Help: "Send attempts by outcome.",
		},
		[]string{"outcome"}, // 'sent', 'mailer_error', 'ledger_write_failed'
	)

	duplicateBlocks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duplicate_send_blocks_total",
			Help: "Sends refused by the duplicate guard, by guard stage.",
		},
		[]string{"stage"}, // 'ledger', 'inflight'
	)

	// A non-zero value here means the ledger is missing rows for mail
	// that actually went out. Alert on any increase.
	ledgerWriteAfterSend = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_write_after_send_failures_total",
			Help: "Ledger appends that failed after a successful delivery.",
		},
	)
)

func ObserveReconcile(eligible, droppedMalformed, droppedSent int) {
	reconcileEligible.Observe(float64(eligible))
	if droppedMalformed > 0 {
		reconcileDropped.WithLabelValues("malformed_address").Add(float64(droppedMalformed))
	}
	if droppedSent > 0 {
		reconcileDropped.WithLabelValues("already_sent").Add(float64(droppedSent))
	}
}

func ObserveSend(latencyMs int, outcome string) {
	sendOutcomes.WithLabelValues(norm(outcome)).Inc()
	sendLatencyMs.WithLabelValues(norm(outcome)).Observe(float64(latencyMs))
}

func IncDuplicateBlocked(stage string) {
	duplicateBlocks.WithLabelValues(norm(stage)).Inc()
}

func IncLedgerWriteAfterSend() {
	ledgerWriteAfterSend.Inc()
}
