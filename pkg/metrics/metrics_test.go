package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegisters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	require.NotNil(t, m)

	m.RecordConnection("admitted")
	m.SessionOpened()
	m.RecordFrame("read")
	m.RecordPersisted("direct")
	m.RecordDelivered("direct", 3)
	m.RecordAuth("login", "success")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectionsTotal.WithLabelValues("admitted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.MessagesDelivered.WithLabelValues("direct")))

	m.SessionClosed()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SessionsActive))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics

	// None of these may panic on a nil receiver.
	m.RecordConnection("admitted")
	m.SessionOpened()
	m.SessionClosed()
	m.RecordFrame("written")
	m.RecordPersisted("group")
	m.RecordDelivered("group", 2)
	m.RecordAuth("register", "failure")
}
