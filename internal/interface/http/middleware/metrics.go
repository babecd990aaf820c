package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookshop/pkg/metrics"
)

// Metrics HTTP指标中间件
// 设计说明:
// 1. 统计请求总数(method/path/status三个维度)和耗时分布
// 2. path用路由模板(c.FullPath())而不是真实URL,
//    避免/api/v1/books/123这类高基数标签把Prometheus撑爆
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.HTTPRequestsInProgress.Inc()
		defer metrics.HTTPRequestsInProgress.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched" // 404等未命中路由的请求归到一起
		}

		labels := map[string]string{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		metrics.IncCounterVec(metrics.HTTPRequestsTotal, labels)

		metrics.ObserveHistogramVec(metrics.HTTPRequestDuration,
			map[string]string{"method": c.Request.Method, "path": path},
			time.Since(start).Seconds())
	}
}
