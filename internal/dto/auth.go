package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求（凭据原样转发后端）
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Password string `json:"password" binding:"required,max=128"`
}

// UserResponse 当前用户
type UserResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	Role         string `json:"role"`
	DepartmentID string `json:"department_id,omitempty"`
}

// LoginResponse 登录成功响应
type LoginResponse struct {
	Token     string       `json:"token"`      // 网关会话 JWT
	ExpiresAt string       `json:"expires_at"` // RFC3339
	ExpiresIn int          `json:"expires_in"` // 秒
	User      UserResponse `json:"user"`
}
