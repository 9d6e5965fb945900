package middleware

import (
	"time"
	"upscoverflow/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics observes every request whose route pattern is not in skip. Unmatched
// requests are grouped under one label so scanners cannot inflate cardinality.
func Metrics(m *metrics.Metrics, skip ...string) gin.HandlerFunc {
	skipped := metrics.NewRouteSet(skip...)
	return func(c *gin.Context) {
		route := c.FullPath()
		if m == nil || skipped.Contains(route) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		m.ObserveRequest(metrics.HTTPRequest{
			Method:   c.Request.Method,
			Route:    route,
			Status:   c.Writer.Status(),
			Duration: time.Since(start),
		})
	}
}
