package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.CartMutation("add", true)
	m.CartMutation("add", false)
	m.CartMutation("add", false)
	m.OrderPlaced(5025000)
	m.EventPublished("orders.placed", nil)
	m.EventPublished("orders.placed", errors.New("down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartMutations.WithLabelValues("add", "guest")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cartMutations.WithLabelValues("add", "user")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersPlaced))
	assert.Equal(t, 5025000.0, testutil.ToFloat64(m.orderRevenue))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsPublished.WithLabelValues("orders.placed", "error")))
}

func TestMetrics_HandlerExposesSeries(t *testing.T) {
	m := New()
	m.ObserveHTTP("GET", "/products", 200, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `fixiestore_http_request_duration_seconds_count{method="GET",route="/products",status="200"} 1`), body)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.CartMutation("add", true)
	m.OrderPlaced(1)
	m.EventPublished("x", nil)
	m.ObserveHTTP("GET", "", 200, time.Second)
	assert.Nil(t, m.Registry())
}
