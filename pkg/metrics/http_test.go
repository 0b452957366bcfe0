package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHTTPMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics(reg)

	metrics.ObserveRequest("POST", "/api/v1/storefront/checkout", "200", 120*time.Millisecond)
	metrics.ObserveRequest("POST", "/api/v1/storefront/checkout", "200", 80*time.Millisecond)
	metrics.IncOrderSubmitted("rest-1")

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.requests.WithLabelValues("POST", "/api/v1/storefront/checkout", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.orders.WithLabelValues("rest-1")))
}

func TestHTTPMetricsNilSafe(t *testing.T) {
	var metrics *HTTPMetrics
	metrics.ObserveRequest("GET", "/x", "200", time.Millisecond)
	metrics.IncOrderSubmitted("rest-1")

	empty := NewHTTPMetrics(nil)
	empty.ObserveRequest("GET", "/x", "200", time.Millisecond)
	empty.IncOrderSubmitted("")
}
