package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		ledgerOpLatencyMs,
		ledgerRows,
	)
}

var (
	ledgerOpLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_op_latency_ms",
			Help:    "Ledger backend operation latency in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"backend", "op", "success"}, // op: 'append', 'sent_addresses', 'entries'
	)

	ledgerRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ledger_rows",
			Help: "Rows observed on the last full ledger read, per backend.",
		},
		[]string{"backend"},
	)
)

func ObserveLedgerOp(backend, op string, success bool, d time.Duration) {
	ledgerOpLatencyMs.
		WithLabelValues(norm(backend), norm(op), strconv.FormatBool(success)).
		Observe(float64(d.Milliseconds()))
}

func SetLedgerRows(backend string, n int) {
	ledgerRows.WithLabelValues(norm(backend)).Set(float64(n))
}
