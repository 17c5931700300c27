package callback

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrometheusCallback_Singleton(t *testing.T) {
	first := NewPrometheusCallback()
	second := NewPrometheusCallback()

	require.NotNil(t, first)
	assert.Same(t, first, second)
}

func TestPrometheusCallback_RecordsOutcomes(t *testing.T) {
	cb := NewPrometheusCallback()

	cb.LogSuccess(LogData{
		Method:     "GET",
		StatusCode: 200,
		Latency:    10 * time.Millisecond,
		BytesIn:    512,
	})
	cb.LogFailure(LogData{
		Method:     "GET",
		StatusCode: 500,
		Latency:    5 * time.Millisecond,
	})
	cb.LogFailure(LogData{
		Method:  "POST",
		Latency: time.Millisecond,
	})

	// 200 and 500 for GET, "error" for the status-less POST failure.
	assert.GreaterOrEqual(t, testutil.CollectAndCount(cb.requestCounter), 3)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(cb.latency), 2)
}

func TestHandler(t *testing.T) {
	assert.NotNil(t, Handler())
}
