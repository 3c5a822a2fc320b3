package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronJobMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewCronJobMetrics(registry)

	m.ObserveDuration("monthly-deduction", 250*time.Millisecond)
	m.IncSuccess("monthly-deduction")
	m.IncFailure("monthly-deduction")

	families, err := registry.Gather()
	require.NoError(t, err)

	assert.Equal(t, float64(1), fetchCounterValue(t, families, "coop_cron_job_success", "monthly-deduction"))
	assert.Equal(t, float64(1), fetchCounterValue(t, families, "coop_cron_job_failure", "monthly-deduction"))
	assert.Greater(t, fetchHistogramSum(t, families, "coop_cron_job_duration_seconds", "monthly-deduction"), float64(0))
}

func TestCronJobMetricsNilReceiver(t *testing.T) {
	var m *CronJobMetrics

	assert.NotPanics(t, func() {
		m.ObserveDuration("noop", time.Second)
		m.IncSuccess("noop")
		m.IncFailure("noop")
	})
}

func fetchCounterValue(t *testing.T, families []*dto.MetricFamily, name, job string) float64 {
	t.Helper()

	family := findMetricFamily(families, name)
	require.NotNil(t, family, "metric family %s not found", name)

	for _, metric := range family.GetMetric() {
		if matchesJobLabel(metric, job) {
			return metric.GetCounter().GetValue()
		}
	}

	t.Fatalf("no %s series for job %s", name, job)
	return 0
}

func fetchHistogramSum(t *testing.T, families []*dto.MetricFamily, name, job string) float64 {
	t.Helper()

	family := findMetricFamily(families, name)
	require.NotNil(t, family, "metric family %s not found", name)

	for _, metric := range family.GetMetric() {
		if matchesJobLabel(metric, job) {
			return metric.GetHistogram().GetSampleSum()
		}
	}

	t.Fatalf("no %s series for job %s", name, job)
	return 0
}

func findMetricFamily(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}
	return nil
}

func matchesJobLabel(metric *dto.Metric, job string) bool {
	for _, label := range metric.GetLabel() {
		if label.GetName() == "job" && label.GetValue() == job {
			return true
		}
	}
	return false
}
