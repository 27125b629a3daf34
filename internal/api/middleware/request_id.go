package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"college-schedule/backend/internal/upstream"
)

const requestIDKey = "request_id"

// requestIDMaxLen 外部传入的 Request-ID 最大长度
const requestIDMaxLen = 64

// RequestID 请求追踪 ID 中间件
// 从请求头 X-Request-ID 读取，不存在或过长时生成 UUID；
// 结果注入 gin.Context 并写入响应头，上游请求沿用同一 ID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)
		c.Request = c.Request.WithContext(upstream.WithRequestID(c.Request.Context(), rid))

		c.Next()
	}
}
