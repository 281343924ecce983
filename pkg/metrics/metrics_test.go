package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New("test")
	require.NoError(t, m.Register(prometheus.NewRegistry()))

	m.RecordOrderPlaced(20 * time.Millisecond)
	m.RecordOrderFailure("INSUFFICIENT_STOCK")
	m.RecordOrderFailure("INSUFFICIENT_STOCK")
	m.RecordCartMutation("add", nil)
	m.RecordCartMutation("add", errors.New("x"))
	m.RecordOutboxPublished(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersPlacedTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrderFailuresTotal.WithLabelValues("INSUFFICIENT_STOCK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartMutationsTotal.WithLabelValues("add", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartMutationsTotal.WithLabelValues("add", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.OutboxPublishedTotal))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordOrderPlaced(time.Second)
		m.RecordOrderFailure("x")
		m.RecordCartMutation("add", nil)
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
		m.RecordGRPCRequest("/x", "OK", time.Millisecond)
		m.RecordOutboxPublished(1)
	})
}

func TestRegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, New("a").Register(reg))
	assert.Error(t, New("a").Register(reg))
}
