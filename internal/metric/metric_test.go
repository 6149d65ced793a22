package metric_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/digital-store/internal/metric"
)

func TestNew(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metric.New(reg)

	m.FileCleanupFailures.WithLabelValues("update").Inc()
	m.RequestsTotal.WithLabelValues("GET", "/api/products", "200").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
		if f.GetName() == "digital_store_file_cleanup_failures_total" {
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, float64(1), f.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.Contains(t, names, "digital_store_file_cleanup_failures_total")
	assert.Contains(t, names, "digital_store_http_requests_total")

	assert.Panics(t, func() { metric.New(reg) }, "registering twice on one registry must fail")
}
