package dto

// ── 用户 / 院系 / 督导 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=dean department_head supervisor"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// CreateUserRequest 院长创建用户
type CreateUserRequest struct {
	Username     string `json:"username"      binding:"required,min=3,max=150"`
	Password     string `json:"password"      binding:"required,min=8,max=128"`
	FullName     string `json:"full_name"     binding:"required,min=2,max=200"`
	Email        string `json:"email"         binding:"omitempty,email"`
	Role         string `json:"role"          binding:"required,oneof=dean department_head supervisor"`
	DepartmentID string `json:"department_id" binding:"omitempty,max=64"`
}

// UpdateUserRequest 院长更新用户
type UpdateUserRequest struct {
	Username     string `json:"username"      binding:"required,min=3,max=150"`
	Password     string `json:"password"      binding:"omitempty,min=8,max=128"`
	FullName     string `json:"full_name"     binding:"required,min=2,max=200"`
	Email        string `json:"email"         binding:"omitempty,email"`
	Role         string `json:"role"          binding:"required,oneof=dean department_head supervisor"`
	DepartmentID string `json:"department_id" binding:"omitempty,max=64"`
	IsActive     *bool  `json:"is_active"`
}

// DepartmentRequest 创建院系
type DepartmentRequest struct {
	Name string `json:"name" binding:"required,min=2,max=200"`
	Code string `json:"code" binding:"omitempty,max=20"`
}

// SupervisorRequest 系主任创建督导
type SupervisorRequest struct {
	Username string `json:"username"  binding:"required,min=3,max=150"`
	Password string `json:"password"  binding:"required,min=8,max=128"`
	FullName string `json:"full_name" binding:"required,min=2,max=200"`
	Email    string `json:"email"     binding:"omitempty,email"`
}
