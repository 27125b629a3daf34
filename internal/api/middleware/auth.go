package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"college-schedule/backend/internal/api/handler"
	"college-schedule/backend/internal/model"
	"college-schedule/backend/internal/service"
	apperrors "college-schedule/backend/pkg/errors"
	"college-schedule/backend/pkg/jwt"
	"college-schedule/backend/pkg/response"
)

// Authenticator 解析会话 Token 并加载会话（AuthService 实现）
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Session, *jwt.Claims, error)
}

// SessionAuth 会话认证中间件
// 从 Authorization: Bearer <token> 中提取网关 Token，加载服务端会话并注入上下文
func SessionAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, handler.CodeUnauthenticated, "يرجى تسجيل الدخول")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Unauthorized(c, handler.CodeUnauthenticated, "ترويسة المصادقة غير صالحة")
			c.Abort()
			return
		}

		sess, claims, err := auth.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenRevoked):
				response.Unauthorized(c, handler.CodeTokenRevoked, err.Error())
			case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, apperrors.ErrSessionExpired):
				response.Unauthorized(c, handler.CodeSessionExpired, apperrors.ErrSessionExpired.Error())
			case errors.Is(err, jwt.ErrTokenInvalid):
				response.Unauthorized(c, handler.CodeUnauthenticated, "رمز الجلسة غير صالح")
			default:
				_ = c.Error(err)
				response.InternalError(c)
			}
			c.Abort()
			return
		}

		// 将会话信息注入上下文
		c.Set(handler.CtxSession, sess)
		c.Set(handler.CtxClaims, claims)
		c.Set("user_id", sess.UserID)
		c.Set("role", sess.Role)
		c.Set("department_id", sess.Department())

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, handler.CodeUnauthenticated, "يرجى تسجيل الدخول")
			c.Abort()
			return
		}

		userRole, _ := role.(string)
		for _, r := range allowedRoles {
			if userRole == string(r) {
				c.Next()
				return
			}
		}

		response.Forbidden(c, handler.CodeForbidden, "ليس لديك صلاحية للوصول")
		c.Abort()
	}
}
