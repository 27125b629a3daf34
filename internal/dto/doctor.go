package dto

import "college-schedule/backend/internal/timetable"

// ── 教师模块 DTO ──

// DoctorRequest 创建/更新教师
type DoctorRequest struct {
	Name         string `json:"name"          binding:"required,min=2,max=200"`
	Email        string `json:"email"         binding:"omitempty,email"`
	DepartmentID string `json:"department_id" binding:"omitempty,max=64"`
	IsActive     *bool  `json:"is_active"`
}

// DoctorListRequest 教师列表查询参数
type DoctorListRequest struct {
	PaginationRequest
	DepartmentID string `form:"department_id" binding:"omitempty,max=64"`
	Keyword      string `form:"keyword"       binding:"omitempty,max=50"`
}

// AvailabilityRequest 批量检查教师可用性
// 表单状态不完整时（星期或时间为空）直接返回全部可用
type AvailabilityRequest struct {
	DoctorIDs         []string `json:"doctor_ids"          binding:"required,min=1,max=200,dive,required"`
	DayOfWeek         string   `json:"day_of_week"         binding:"omitempty,oneof=sunday monday tuesday wednesday thursday friday saturday"`
	StartTime         string   `json:"start_time"          binding:"omitempty,hhmm"`
	EndTime           string   `json:"end_time"            binding:"omitempty,hhmm"`
	StudyType         string   `json:"study_type"          binding:"omitempty,oneof=morning evening night"`
	ExcludeScheduleID string   `json:"exclude_schedule_id" binding:"omitempty,max=64"`
}

// AvailabilityResponse 每位教师的可用性
type AvailabilityResponse struct {
	Results map[string]timetable.AvailabilityResult `json:"results"`
}

// CalendarQuery 日历导出参数
type CalendarQuery struct {
	From  string `form:"from"  binding:"omitempty,datetime=2006-01-02"`
	Weeks int    `form:"weeks" binding:"omitempty,min=1,max=52"`
}
