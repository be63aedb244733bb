package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveTransition("sealed")
	m.ObserveTransition("sealed")
	m.ObserveVerification("offline", false)
	m.IncrementFallback("sign")
	m.ObserveBlock(3)
	m.ObserveSealAttempts("sealed", 2)
	m.ObserveLedgerRequest("prepare", "ok", 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TransferTransitions.WithLabelValues("sealed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verifications.WithLabelValues("offline", "false")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Verifications.WithLabelValues("offline", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SignerFallbacks.WithLabelValues("sign")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BlocksSealed))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SealAttempts))
	assert.Equal(t, 1, testutil.CollectAndCount(m.LedgerRequestLatency))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveTransition("failed")
		m.ObserveSealAttempts("timeout", 8)
		m.ObserveVerification("remote", true)
		m.IncrementFallback("keypair")
		m.ObserveLedgerRequest("submit", "error", time.Second)
		m.ObserveBlock(1)
	})
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	}, "independent registries must not collide")
}
