package middleware

import (
	"strconv"
	"time"

	"github.com/blogposts/blogposts-api/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// RequestMetrics records a counter and latency histogram per matched route.
// Unmatched paths share the "unmatched" label to keep cardinality bounded.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		metrics.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}
