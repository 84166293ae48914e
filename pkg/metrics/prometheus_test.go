package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	r := NewWithRegistry(prometheus.NewRegistry())

	r.RecordPipelineRun("completed", 1.5)
	r.RecordPipelineRun("completed", 0.5)
	r.RecordPipelineRun("failed", 0.1)
	r.RecordAnalystFailure("news")
	r.RecordFetch("cache_hit")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.pipelineRuns.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.pipelineRuns.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.analystFailures.WithLabelValues("news")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetches.WithLabelValues("cache_hit")))
}

func TestRegistriesAreIndependent(t *testing.T) {
	assert.NotPanics(t, func() {
		NewWithRegistry(prometheus.NewRegistry())
		NewWithRegistry(prometheus.NewRegistry())
	})
}
