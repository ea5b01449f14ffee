package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Counters(t *testing.T) {
	p := NewPrometheus(prometheus.NewRegistry())

	p.RecordOperationResult("charge", ResultSuccess)
	p.RecordOperationResult("charge", ResultSuccess)
	p.RecordOperationResult("charge", ResultRejected)
	p.RecordCacheHit("payment_token")
	p.RecordCacheMiss("payment_token")
	p.RecordCacheMiss("payment_token")
	p.RecordOperationDuration("charge", 150*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.results.WithLabelValues("charge", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.results.WithLabelValues("charge", ResultRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.cache.WithLabelValues("payment_token", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.cache.WithLabelValues("payment_token", "miss")))
	assert.Equal(t, 1, testutil.CollectAndCount(p.duration))
}

func TestPrometheus_Handler(t *testing.T) {
	p := NewPrometheus(prometheus.NewRegistry())
	p.RecordOperationResult("add_token", ResultSuccess)

	app := fiber.New()
	app.Get("/metrics", p.Handler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `paygate_operation_results_total{operation="add_token",result="success"} 1`)
}

func TestNoop(t *testing.T) {
	var c Collector = Noop{}
	assert.NotPanics(t, func() {
		c.RecordOperationDuration("x", time.Second)
		c.RecordOperationResult("x", ResultFailure)
		c.RecordCacheHit("x")
		c.RecordCacheMiss("x")
	})
}
