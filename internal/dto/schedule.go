package dto

import (
	"college-schedule/backend/internal/model"
	"college-schedule/backend/internal/timetable"
)

// ── 课表模块 DTO ──

// ScheduleRequest 创建/更新课程
// has_multiple_doctors 为 true 时使用 doctor_ids + primary_doctor_id，否则使用 doctor_id
type ScheduleRequest struct {
	DayOfWeek          string   `json:"day_of_week"       binding:"required,oneof=sunday monday tuesday wednesday thursday friday saturday"`
	StartTime          string   `json:"start_time"        binding:"required,hhmm"`
	EndTime            string   `json:"end_time"          binding:"required,hhmm"`
	StudyType          string   `json:"study_type"        binding:"required,oneof=morning evening night"`
	AcademicStage      string   `json:"academic_stage"    binding:"required,oneof=first second third fourth"`
	LectureType        string   `json:"lecture_type"      binding:"required,oneof=theoretical practical"`
	Section            *int     `json:"section"           binding:"omitempty,min=1,max=50"`
	Group              *string  `json:"group"             binding:"omitempty,min=1,max=5"`
	SubjectName        string   `json:"subject_name"      binding:"required,max=200"`
	DoctorID           string   `json:"doctor_id"         binding:"omitempty,max=64"`
	InstructorName     string   `json:"instructor_name"   binding:"omitempty,max=200"`
	HasMultipleDoctors bool     `json:"has_multiple_doctors"`
	DoctorIDs          []string `json:"doctor_ids"        binding:"omitempty,dive,required"`
	PrimaryDoctorID    string   `json:"primary_doctor_id" binding:"omitempty,max=64"`
	Notes              string   `json:"notes"             binding:"omitempty,max=500"`
}

// PostponeRequest 延期课程
type PostponeRequest struct {
	PostponedDate      string `json:"postponed_date"       binding:"required,datetime=2006-01-02"`
	PostponedStartTime string `json:"postponed_start_time" binding:"required,hhmm"`
	PostponedEndTime   string `json:"postponed_end_time"   binding:"required,hhmm"`
	PostponedToRoomID  string `json:"postponed_to_room_id" binding:"required,max=64"`
	PostponedReason    string `json:"postponed_reason"     binding:"omitempty,max=500"`
}

// MatrixQuery 课表矩阵查询参数
type MatrixQuery struct {
	StudyType string `form:"study_type" binding:"omitempty,oneof=morning evening night"`
	Stage     string `form:"stage"      binding:"omitempty,oneof=first second third fourth"`
}

// WeeklyMatrixQuery 多教室周视图查询参数
type WeeklyMatrixQuery struct {
	MatrixQuery
	RoomIDs []string `form:"room_ids"`
}

// ── 响应 ──

// MatrixResponse 渲染用的周课表
type MatrixResponse struct {
	Rooms       []model.Room         `json:"rooms,omitempty"`
	Days        []DayColumn          `json:"days"`
	Slots       []timetable.TimeSlot `json:"slots"`
	Matrix      timetable.Matrix     `json:"matrix"`
	Total       int                  `json:"total"`
	FailedRooms []string             `json:"failed_rooms,omitempty"` // 拉取失败被跳过的教室
}

// DayColumn 展示日及其标签
type DayColumn struct {
	Day   model.DayToken `json:"day"`
	Label string         `json:"label"`
}

// ConflictResponse 409 冲突详情，界面据此打开迁移流程
type ConflictResponse struct {
	Lecture *model.LectureRecord       `json:"lecture,omitempty"`
	Summary *timetable.ConflictSummary `json:"summary,omitempty"`
}

// UploadResponse 课表文件导入结果
type UploadResponse struct {
	Sheet  string      `json:"sheet"`
	Rows   int         `json:"rows"`
	Result interface{} `json:"result,omitempty"`
}
