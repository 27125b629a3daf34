package upstream

import (
	"encoding/json"

	"college-schedule/backend/internal/model"
)

// LoginResult /auth/login 响应
// 不同版本的后端使用 token 或 access_token
type LoginResult struct {
	Token       string     `json:"token"`
	AccessToken string     `json:"access_token"`
	User        model.User `json:"user"`
}

// BearerToken 返回实际的访问令牌
func (r *LoginResult) BearerToken() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

// RoomInput 创建/更新教室
type RoomInput struct {
	Name         string   `json:"name"`
	Code         string   `json:"code"`
	DepartmentID model.ID `json:"department_id,omitempty"`
	Capacity     int      `json:"capacity,omitempty"`
	Description  string   `json:"description,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

// ScheduleInput 创建/更新课程
// 单教师使用 doctor_id；多教师使用 doctor_ids + primary_doctor_id
type ScheduleInput struct {
	DayOfWeek       model.DayToken    `json:"day_of_week"`
	StartTime       string            `json:"start_time"`
	EndTime         string            `json:"end_time"`
	StudyType       model.StudyType   `json:"study_type"`
	AcademicStage   model.Stage       `json:"academic_stage"`
	LectureType     model.LectureType `json:"lecture_type"`
	Section         *int              `json:"section,omitempty"`
	Group           *string           `json:"group,omitempty"`
	SubjectName     string            `json:"subject_name"`
	DoctorID        model.ID          `json:"doctor_id,omitempty"`
	InstructorName  string            `json:"instructor_name,omitempty"`
	DoctorIDs       []model.ID        `json:"doctor_ids,omitempty"`
	PrimaryDoctorID model.ID          `json:"primary_doctor_id,omitempty"`
	Notes           string            `json:"notes,omitempty"`
}

// PostponeInput 延期课程
type PostponeInput struct {
	PostponedDate      string   `json:"postponed_date"`
	PostponedStartTime string   `json:"postponed_start_time"`
	PostponedEndTime   string   `json:"postponed_end_time"`
	PostponedToRoomID  model.ID `json:"postponed_to_room_id"`
	PostponedReason    string   `json:"postponed_reason,omitempty"`
}

// DoctorInput 创建/更新教师
type DoctorInput struct {
	Name         string   `json:"name"`
	Email        string   `json:"email,omitempty"`
	DepartmentID model.ID `json:"department_id,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

// AvailabilityInput 后端教师可用性检查
type AvailabilityInput struct {
	DayOfWeek         model.DayToken  `json:"day_of_week"`
	StartTime         string          `json:"start_time"`
	EndTime           string          `json:"end_time"`
	StudyType         model.StudyType `json:"study_type,omitempty"`
	ExcludeScheduleID model.ID        `json:"exclude_schedule_id,omitempty"`
}

// UserInput 院长创建/更新用户
type UserInput struct {
	Username     string     `json:"username"`
	Password     string     `json:"password,omitempty"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email,omitempty"`
	Role         model.Role `json:"role"`
	DepartmentID model.ID   `json:"department_id,omitempty"`
	IsActive     *bool      `json:"is_active,omitempty"`
}

// DepartmentInput 创建/更新院系
type DepartmentInput struct {
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// SupervisorInput 系主任创建督导
type SupervisorInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
}

// StudentScheduleQuery 学生课表查询条件
type StudentScheduleQuery struct {
	DepartmentID model.ID
	Stage        model.Stage
	StudyType    model.StudyType
	Section      string
	Group        string
}

// PublicRoom /public/room/{code} 响应
type PublicRoom struct {
	Room      model.Room            `json:"room"`
	Schedules []model.LectureRecord `json:"schedules"`
}

// UploadResult 课表文件导入结果（结构由后端决定，原样透传）
type UploadResult = json.RawMessage
