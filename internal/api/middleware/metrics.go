package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPObserver 网关请求指标采集
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
}

// Metrics 按路由模板记录请求数与耗时，obs 为 nil 时不记录
func Metrics(obs HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if obs == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		obs.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
