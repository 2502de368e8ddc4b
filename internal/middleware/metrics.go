package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classgrid/classgrid-api/internal/service"
)

// Metrics returns middleware that captures request metrics using the provided service.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), duration)
	}
}
