package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector_Counter(t *testing.T) {
	collector := NewPrometheusCollector()

	collector.IncrementCounter("api_requests_total", "operation", "get_design")
	collector.IncrementCounter("api_requests_total", "operation", "get_design")
	collector.IncrementCounter("api_requests_total", "operation", "get_table")

	families, err := collector.Registry().Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "api_requests_total", families[0].GetName())

	total := 0.0
	for _, m := range families[0].GetMetric() {
		total += m.GetCounter().GetValue()
	}
	assert.Equal(t, 3.0, total)
}

func TestPrometheusCollector_Gauge(t *testing.T) {
	collector := NewPrometheusCollector()

	collector.AddGauge("api_requests_in_flight", 1)
	collector.AddGauge("api_requests_in_flight", 1)
	collector.AddGauge("api_requests_in_flight", -1)

	families, err := collector.Registry().Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, 1.0, families[0].GetMetric()[0].GetGauge().GetValue())

	collector.RecordGauge("api_requests_in_flight", 5)
	families, err = collector.Registry().Gather()
	require.NoError(t, err)
	assert.Equal(t, 5.0, families[0].GetMetric()[0].GetGauge().GetValue())
}

func TestPrometheusCollector_Timer(t *testing.T) {
	collector := NewPrometheusCollector()

	timer := collector.StartTimer("api_request_duration")
	time.Sleep(5 * time.Millisecond)
	elapsed := timer.Stop()
	assert.Greater(t, elapsed, 0.0)

	families, err := collector.Registry().Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "api_request_duration_seconds", families[0].GetName())
	assert.Equal(t, uint64(1), families[0].GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestPrometheusCollector_SeparateRegistries(t *testing.T) {
	a := NewPrometheusCollector()
	b := NewPrometheusCollector()

	a.IncrementCounter("api_requests_total")

	families, err := b.Registry().Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
}

func TestParseLabelPairs(t *testing.T) {
	names, values := parseLabelPairs([]string{"operation", "get_design", "status", "200"})
	assert.Equal(t, []string{"operation", "status"}, names)
	assert.Equal(t, []string{"get_design", "200"}, values)

	// odd trailing label is dropped
	names, values = parseLabelPairs([]string{"operation", "get_design", "dangling"})
	assert.Equal(t, []string{"operation"}, names)
	assert.Equal(t, []string{"get_design"}, values)
}

func TestNoOpCollector(t *testing.T) {
	collector := NewNoOpCollector()

	collector.IncrementCounter("ignored")
	collector.RecordHistogram("ignored", 1.0)
	collector.RecordGauge("ignored", 1.0)
	collector.AddGauge("ignored", 1.0)

	timer := collector.StartTimer("ignored")
	assert.GreaterOrEqual(t, timer.Stop(), 0.0)
}
