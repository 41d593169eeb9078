package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.CodeCollisions.Inc()
	a.ReportsCreated.WithLabelValues("CRITICAL").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.CodeCollisions))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CodeCollisions))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.ReportsCreated.WithLabelValues("CRITICAL")))
}

func TestNewMetricsWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(reg)
	m.CoordinatesProcessed.WithLabelValues("invalid").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "watersafe_coordinates_normalized_total")
}
