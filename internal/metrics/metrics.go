package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the receipt subsystem and the ledger.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Coordinator transitions by target state
	TransferTransitions *prometheus.CounterVec

	// Receipt polls needed before a seal, or before giving up
	SealAttempts *prometheus.HistogramVec

	// Verdicts by mode and validity
	Verifications *prometheus.CounterVec

	// Signer backend substitutions by reason
	SignerFallbacks *prometheus.CounterVec

	// Ledger client request latencies by operation and outcome
	LedgerRequestLatency *prometheus.HistogramVec

	// Blocks sealed by the reference ledger and their size
	BlocksSealed prometheus.Counter
	BlockSize    prometheus.Histogram
}

// New registers all metrics with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TransferTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qrg_transfer_transitions_total",
			Help: "Transfer state transitions by target state",
		}, []string{"state"}),

		SealAttempts: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qrg_seal_poll_attempts",
			Help:    "Receipt polls per awaitSeal call by outcome",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16},
		}, []string{"outcome"}), // outcome: "sealed", "timeout", "cancelled", "error"

		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qrg_verifications_total",
			Help: "Receipt verifications by mode and validity",
		}, []string{"mode", "valid"}),

		SignerFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qrg_signer_fallbacks_total",
			Help: "Remote signer calls replaced by the local fallback generator",
		}, []string{"operation"}),

		LedgerRequestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qrg_ledger_request_duration_seconds",
			Help:    "Duration of ledger HTTP requests including retries",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation", "outcome"}),

		BlocksSealed: f.NewCounter(prometheus.CounterOpts{
			Name: "qrg_ledger_blocks_sealed_total",
			Help: "Blocks sealed by the ledger",
		}),

		BlockSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "qrg_ledger_block_transactions",
			Help:    "Transactions per sealed block",
			Buckets: []float64{1, 2, 3, 5, 10, 25, 50, 100},
		}),
	}
}

// ObserveTransition records a transfer entering state.
func (m *Metrics) ObserveTransition(state string) {
	if m != nil {
		m.TransferTransitions.WithLabelValues(state).Inc()
	}
}

// ObserveSealAttempts records how many polls an awaitSeal call made.
func (m *Metrics) ObserveSealAttempts(outcome string, attempts int) {
	if m != nil {
		m.SealAttempts.WithLabelValues(outcome).Observe(float64(attempts))
	}
}

// ObserveVerification records a verdict.
func (m *Metrics) ObserveVerification(mode string, valid bool) {
	if m != nil {
		v := "false"
		if valid {
			v = "true"
		}
		m.Verifications.WithLabelValues(mode, v).Inc()
	}
}

// IncrementFallback records a fallback substitution for operation.
func (m *Metrics) IncrementFallback(operation string) {
	if m != nil {
		m.SignerFallbacks.WithLabelValues(operation).Inc()
	}
}

// ObserveLedgerRequest records a ledger client call.
func (m *Metrics) ObserveLedgerRequest(operation, outcome string, d time.Duration) {
	if m != nil {
		m.LedgerRequestLatency.WithLabelValues(operation, outcome).Observe(d.Seconds())
	}
}

// ObserveBlock records a sealed block of n transactions.
func (m *Metrics) ObserveBlock(n int) {
	if m != nil {
		m.BlocksSealed.Inc()
		m.BlockSize.Observe(float64(n))
	}
}
