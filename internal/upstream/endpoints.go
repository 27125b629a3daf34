package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"college-schedule/backend/internal/model"
)

// ── 认证 ──

// Login 登录后端，返回后端 Token 与用户信息
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var out LoginResult
	body := map[string]string{"username": username, "password": password}
	if err := c.Do(ctx, nil, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me 当前用户信息
func (c *Client) Me(ctx context.Context, sess *model.Session) (*model.User, error) {
	var out model.User
	if err := c.Do(ctx, sess, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── 教室 ──

// ListRooms 全部教室
func (c *Client) ListRooms(ctx context.Context, sess *model.Session) ([]model.Room, error) {
	var out []model.Room
	if err := c.Do(ctx, sess, http.MethodGet, "/rooms", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDepartmentRooms 当前系主任所在院系的教室
func (c *Client) ListDepartmentRooms(ctx context.Context, sess *model.Session) ([]model.Room, error) {
	var out []model.Room
	if err := c.Do(ctx, sess, http.MethodGet, "/department/rooms", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRoom 教室详情
func (c *Client) GetRoom(ctx context.Context, sess *model.Session, id model.ID) (*model.Room, error) {
	var out model.Room
	if err := c.Do(ctx, sess, http.MethodGet, roomPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRoom 创建教室
func (c *Client) CreateRoom(ctx context.Context, sess *model.Session, in *RoomInput) (*model.Room, error) {
	var out model.Room
	if err := c.Do(ctx, sess, http.MethodPost, "/rooms", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRoom 更新教室
func (c *Client) UpdateRoom(ctx context.Context, sess *model.Session, id model.ID, in *RoomInput) (*model.Room, error) {
	var out model.Room
	if err := c.Do(ctx, sess, http.MethodPut, roomPath(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRoom 删除教室
func (c *Client) DeleteRoom(ctx context.Context, sess *model.Session, id model.ID) error {
	return c.Do(ctx, sess, http.MethodDelete, roomPath(id), nil, nil)
}

// RoomQR 教室二维码元数据（原样透传）
func (c *Client) RoomQR(ctx context.Context, sess *model.Session, id model.ID) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.Do(ctx, sess, http.MethodGet, roomPath(id)+"/qr", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RegenerateRoomQR 重新生成教室二维码
func (c *Client) RegenerateRoomQR(ctx context.Context, sess *model.Session, id model.ID) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.Do(ctx, sess, http.MethodPost, roomPath(id)+"/qr/regenerate", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ── 课程 ──

// ListRoomSchedules 教室的全部课程
func (c *Client) ListRoomSchedules(ctx context.Context, sess *model.Session, roomID model.ID) ([]model.LectureRecord, error) {
	var out []model.LectureRecord
	if err := c.Do(ctx, sess, http.MethodGet, schedulesPath(roomID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSchedule 创建单教师课程；冲突时返回携带 Conflict 的 *APIError
func (c *Client) CreateSchedule(ctx context.Context, sess *model.Session, roomID model.ID, in *ScheduleInput) (*model.LectureRecord, error) {
	var out model.LectureRecord
	if err := c.Do(ctx, sess, http.MethodPost, schedulesPath(roomID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateMultiDoctorSchedule 创建多教师课程
func (c *Client) CreateMultiDoctorSchedule(ctx context.Context, sess *model.Session, roomID model.ID, in *ScheduleInput) (*model.LectureRecord, error) {
	var out model.LectureRecord
	if err := c.Do(ctx, sess, http.MethodPost, schedulesPath(roomID)+"/multi-doctor", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSchedule 更新课程
func (c *Client) UpdateSchedule(ctx context.Context, sess *model.Session, roomID, scheduleID model.ID, in *ScheduleInput) (*model.LectureRecord, error) {
	var out model.LectureRecord
	if err := c.Do(ctx, sess, http.MethodPut, schedulePath(roomID, scheduleID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSchedule 删除课程
func (c *Client) DeleteSchedule(ctx context.Context, sess *model.Session, roomID, scheduleID model.ID) error {
	return c.Do(ctx, sess, http.MethodDelete, schedulePath(roomID, scheduleID), nil, nil)
}

// PostponeSchedule 延期课程
func (c *Client) PostponeSchedule(ctx context.Context, sess *model.Session, roomID, scheduleID model.ID, in *PostponeInput) (*model.LectureRecord, error) {
	var out model.LectureRecord
	if err := c.Do(ctx, sess, http.MethodPost, schedulePath(roomID, scheduleID)+"/postpone", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadSchedules 上传课表文件，由后端解析导入
func (c *Client) UploadSchedules(ctx context.Context, sess *model.Session, roomID model.ID, filename string, file io.Reader) (UploadResult, error) {
	var out json.RawMessage
	if err := c.Upload(ctx, sess, schedulesPath(roomID)+"/upload", "file", filename, file, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAllSchedules 清空教室课程
func (c *Client) DeleteAllSchedules(ctx context.Context, sess *model.Session, roomID model.ID) error {
	return c.Do(ctx, sess, http.MethodDelete, schedulesPath(roomID)+"/all", nil, nil)
}

// ── 教师 ──

// ListDoctors 教师列表
func (c *Client) ListDoctors(ctx context.Context, sess *model.Session) ([]model.Doctor, error) {
	var out []model.Doctor
	if err := c.Do(ctx, sess, http.MethodGet, "/doctors/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DoctorsByDepartment 按院系分组的教师
func (c *Client) DoctorsByDepartment(ctx context.Context, sess *model.Session) ([]model.DoctorsByDepartment, error) {
	var out []model.DoctorsByDepartment
	if err := c.Do(ctx, sess, http.MethodGet, "/doctors/departments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateDoctor 创建教师
func (c *Client) CreateDoctor(ctx context.Context, sess *model.Session, in *DoctorInput) (*model.Doctor, error) {
	var out model.Doctor
	if err := c.Do(ctx, sess, http.MethodPost, "/doctors/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDoctor 更新教师
func (c *Client) UpdateDoctor(ctx context.Context, sess *model.Session, id model.ID, in *DoctorInput) (*model.Doctor, error) {
	var out model.Doctor
	if err := c.Do(ctx, sess, http.MethodPut, doctorPath(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDoctor 删除教师
func (c *Client) DeleteDoctor(ctx context.Context, sess *model.Session, id model.ID) error {
	return c.Do(ctx, sess, http.MethodDelete, doctorPath(id), nil, nil)
}

// DoctorLectures 教师的全部课程（跨教室）
func (c *Client) DoctorLectures(ctx context.Context, sess *model.Session, id model.ID) ([]model.LectureRecord, error) {
	var out []model.LectureRecord
	if err := c.Do(ctx, sess, http.MethodGet, doctorPath(id)+"/lectures", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckDoctorAvailability 后端侧的可用性检查（原样透传）
func (c *Client) CheckDoctorAvailability(ctx context.Context, sess *model.Session, id model.ID, in *AvailabilityInput) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.Do(ctx, sess, http.MethodPost, doctorPath(id)+"/check-availability", in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ── 院长 / 系主任 ──

// ListUsers 用户列表
func (c *Client) ListUsers(ctx context.Context, sess *model.Session) ([]model.User, error) {
	var out []model.User
	if err := c.Do(ctx, sess, http.MethodGet, "/dean/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateUser 创建用户
func (c *Client) CreateUser(ctx context.Context, sess *model.Session, in *UserInput) (*model.User, error) {
	var out model.User
	if err := c.Do(ctx, sess, http.MethodPost, "/dean/users", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser 更新用户
func (c *Client) UpdateUser(ctx context.Context, sess *model.Session, id model.ID, in *UserInput) (*model.User, error) {
	var out model.User
	if err := c.Do(ctx, sess, http.MethodPut, "/dean/users/"+url.PathEscape(id.String()), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser 删除用户
func (c *Client) DeleteUser(ctx context.Context, sess *model.Session, id model.ID) error {
	return c.Do(ctx, sess, http.MethodDelete, "/dean/users/"+url.PathEscape(id.String()), nil, nil)
}

// ListDepartments 院系列表
func (c *Client) ListDepartments(ctx context.Context, sess *model.Session) ([]model.Department, error) {
	var out []model.Department
	if err := c.Do(ctx, sess, http.MethodGet, "/dean/departments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateDepartment 创建院系
func (c *Client) CreateDepartment(ctx context.Context, sess *model.Session, in *DepartmentInput) (*model.Department, error) {
	var out model.Department
	if err := c.Do(ctx, sess, http.MethodPost, "/dean/departments", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDepartment 删除院系
func (c *Client) DeleteDepartment(ctx context.Context, sess *model.Session, id model.ID) error {
	return c.Do(ctx, sess, http.MethodDelete, "/dean/departments/"+url.PathEscape(id.String()), nil, nil)
}

// ListSupervisors 系主任名下的督导
func (c *Client) ListSupervisors(ctx context.Context, sess *model.Session) ([]model.User, error) {
	var out []model.User
	if err := c.Do(ctx, sess, http.MethodGet, "/department/supervisors", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSupervisor 创建督导
func (c *Client) CreateSupervisor(ctx context.Context, sess *model.Session, in *SupervisorInput) (*model.User, error) {
	var out model.User
	if err := c.Do(ctx, sess, http.MethodPost, "/department/supervisors", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSupervisor 删除督导
func (c *Client) DeleteSupervisor(ctx context.Context, sess *model.Session, id model.ID) error {
	return c.Do(ctx, sess, http.MethodDelete, "/department/supervisors/"+url.PathEscape(id.String()), nil, nil)
}

// ── 学生 / 公开 ──

// LookupStudent 按学号查询学生
func (c *Client) LookupStudent(ctx context.Context, studentID string) (*model.Student, error) {
	var out model.Student
	q := url.Values{"student_id": {studentID}}
	if err := c.DoQuery(ctx, nil, http.MethodGet, "/students/lookup", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StudentSchedule 按院系/阶段/学习类型查询课表
func (c *Client) StudentSchedule(ctx context.Context, q StudentScheduleQuery) ([]model.LectureRecord, error) {
	params := url.Values{}
	if !q.DepartmentID.Empty() {
		params.Set("department_id", q.DepartmentID.String())
	}
	if q.Stage != "" {
		params.Set("academic_stage", string(q.Stage))
	}
	if q.StudyType != "" {
		params.Set("study_type", string(q.StudyType))
	}
	if q.Section != "" {
		params.Set("section", q.Section)
	}
	if q.Group != "" {
		params.Set("group", q.Group)
	}

	var out []model.LectureRecord
	if err := c.DoQuery(ctx, nil, http.MethodGet, "/students/schedule", params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PublicRoom 公开教室页（扫码访问，无需登录）
func (c *Client) PublicRoom(ctx context.Context, code string) (*PublicRoom, error) {
	var out PublicRoom
	if err := c.Do(ctx, nil, http.MethodGet, "/public/room/"+url.PathEscape(code), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func roomPath(id model.ID) string {
	return "/rooms/" + url.PathEscape(id.String())
}

func schedulesPath(roomID model.ID) string {
	return roomPath(roomID) + "/schedules"
}

func schedulePath(roomID, scheduleID model.ID) string {
	return fmt.Sprintf("%s/%s", schedulesPath(roomID), url.PathEscape(scheduleID.String()))
}

func doctorPath(id model.ID) string {
	return "/doctors/" + url.PathEscape(id.String())
}
