package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BodyLimit 全局请求体大小限制中间件
// maxBytes: JSON 等普通请求体上限；uploadBytes: multipart 上传上限（课表文件）
// 超限时 ShouldBind/FormFile 返回 *http.MaxBytesError，由 Handler 映射为 413
func BodyLimit(maxBytes, uploadBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			limit := maxBytes
			if strings.HasPrefix(c.ContentType(), "multipart/") && uploadBytes > 0 {
				// 额外预留 multipart 边界与表单字段
				limit = uploadBytes + 64<<10
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		c.Next()
	}
}
