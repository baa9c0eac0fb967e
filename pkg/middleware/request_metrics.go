package middleware

import (
	"strconv"
	"time"

	"github.com/Ayush22-04/xetor-backen/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// RequestMetrics records request counts and latency per matched route template.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
