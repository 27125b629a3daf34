package dto

// ── 教室模块 DTO ──

// RoomRequest 创建/更新教室
type RoomRequest struct {
	Name         string `json:"name"          binding:"required,min=1,max=100"`
	Code         string `json:"code"          binding:"required,min=1,max=50"`
	DepartmentID string `json:"department_id" binding:"omitempty,max=64"`
	Capacity     int    `json:"capacity"      binding:"omitempty,min=1,max=2000"`
	Description  string `json:"description"   binding:"omitempty,max=500"`
	IsActive     *bool  `json:"is_active"`
}
