package metrics

import (
	"strconv"
	"time"
)

const unmatchedRoute = "unmatched"

// HTTPRequest is one finished request as seen by the router. Route is the
// registered pattern, empty when no route matched.
type HTTPRequest struct {
	Method   string
	Route    string
	Status   int
	Duration time.Duration
}

// ObserveRequest counts the request by route pattern and status class and records its latency.
func (m *Metrics) ObserveRequest(r HTTPRequest) {
	m.safeExecute("ObserveRequest", func() {
		route := r.Route
		if route == "" {
			route = unmatchedRoute
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, statusClass(r.Status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(r.Duration.Seconds())
	})
}

// statusClass folds a status code into 1xx..5xx.
func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}

// RouteSet is a set of route patterns excluded from request metrics.
type RouteSet map[string]struct{}

func NewRouteSet(routes ...string) RouteSet {
	s := make(RouteSet, len(routes))
	for _, r := range routes {
		s[r] = struct{}{}
	}
	return s
}

func (s RouteSet) Contains(route string) bool {
	_, ok := s[route]
	return ok
}
