package handler

import (
	"github.com/gin-gonic/gin"

	"college-schedule/backend/internal/dto"
	"college-schedule/backend/internal/service"
	"college-schedule/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), sess, GetClaims(c)); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}

// Me 当前用户
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	user, err := h.authSvc.Me(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, user)
}
