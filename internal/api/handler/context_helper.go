package handler

import (
	"github.com/gin-gonic/gin"

	"college-schedule/backend/internal/model"
	"college-schedule/backend/pkg/jwt"
	"college-schedule/backend/pkg/response"
)

// 会话鉴权中间件写入 gin.Context 的键
const (
	CtxSession = "session"
	CtxClaims  = "claims"
)

// MustGetSession 从 Gin 上下文中安全提取会话。
// 鉴权中间件未注入会话时写入 401 响应，调用方应在 ok=false 时直接 return。
func MustGetSession(c *gin.Context) (*model.Session, bool) {
	v, exists := c.Get(CtxSession)
	if !exists {
		response.Unauthorized(c, CodeUnauthenticated, msgUnauthenticated)
		return nil, false
	}
	sess, ok := v.(*model.Session)
	if !ok || sess == nil {
		response.Unauthorized(c, CodeUnauthenticated, msgUnauthenticated)
		return nil, false
	}
	return sess, true
}

// GetClaims 提取会话 Token 声明（可能为空）
func GetClaims(c *gin.Context) *jwt.Claims {
	v, exists := c.Get(CtxClaims)
	if !exists {
		return nil
	}
	claims, _ := v.(*jwt.Claims)
	return claims
}

// pathID 读取路径中的 ID 参数
func pathID(c *gin.Context, name string) (model.ID, bool) {
	id := c.Param(name)
	if id == "" {
		response.BadRequest(c, CodeInvalidParams, msgInvalidParams)
		return "", false
	}
	return model.ID(id), true
}
