package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/25Devmaker/coursehub/pkg/metrics"
)

// Metrics Prometheus 请求指标中间件
// 使用路由模板作为 path 标签，未匹配路由统一记为 unmatched
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RequestCount.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
