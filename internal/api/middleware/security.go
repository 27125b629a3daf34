package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityHeaders 安全响应头
// 网关只返回 JSON 与文件下载；/api 下需认证的响应禁止缓存
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if c.GetHeader("Authorization") != "" || strings.HasSuffix(c.Request.URL.Path, "/auth/login") {
			h.Set("Cache-Control", "no-store")
		}

		c.Next()
	}
}
