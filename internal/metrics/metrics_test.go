package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func newTestMetrics() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry(), nil)
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 201: "2xx", 302: "3xx", 404: "4xx", 503: "5xx", 42: "unknown", 600: "unknown"}
	for code, want := range tests {
		assert.Equal(t, want, statusClass(code), code)
	}
}

func TestObserveRequest(t *testing.T) {
	m := newTestMetrics()
	m.ObserveRequest(HTTPRequest{Method: "GET", Route: "/api/questions/get-all", Status: 200, Duration: 15 * time.Millisecond})
	m.ObserveRequest(HTTPRequest{Method: "GET", Route: "/api/questions/get-all", Status: 404, Duration: time.Millisecond})
	m.ObserveRequest(HTTPRequest{Method: "GET", Status: 404, Duration: time.Millisecond})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/questions/get-all", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/questions/get-all", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "4xx")))
}

func TestBusinessMetrics(t *testing.T) {
	m := newTestMetrics()
	m.RecordListing("questions", 3)
	m.RecordProfileLookup("fallback")
	m.RecordLikeToggle("question", false)
	m.RecordCascadeDelete("answer")
	m.RecordCleanup(map[string]int64{"likes": 2}, nil)
	m.RecordCleanup(nil, errors.New("boom"))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.ListingItemsTotal.WithLabelValues("questions")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProfileLookupsTotal.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LikeTogglesTotal.WithLabelValues("question", "down")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CascadeDeletesTotal.WithLabelValues("answer")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CleanupRowsRemoved.WithLabelValues("likes")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CleanupRunsTotal.WithLabelValues("error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest(HTTPRequest{Method: "GET", Route: "/x", Status: 200})
		m.RecordListing("tags", 1)
		m.RecordCleanup(nil, nil)
	})
}

func TestRouteSet(t *testing.T) {
	s := NewRouteSet("/health", "/metrics")
	assert.True(t, s.Contains("/metrics"))
	assert.True(t, s.Contains("/health"))
	assert.False(t, s.Contains("/api/tags/getAll"))
	assert.False(t, NewRouteSet().Contains(""))
}
