package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/courses-api/internal/service"
)

// Metrics records request duration and count per route template, so
// /courses/1 and /courses/2 share one series.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
