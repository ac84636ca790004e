package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/graphein/graphein/internal/metrics"
)

// Metrics records request counts and latencies per route pattern. The route
// pattern keeps label cardinality bounded; raw URLs would mint a new series
// for every distinct id.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		status := strconv.Itoa(c.Writer.Status())
		elapsed := time.Since(start).Seconds()

		metrics.RequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(elapsed)
	}
}
