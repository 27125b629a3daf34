package service

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"college-schedule/backend/internal/model"
	"college-schedule/backend/internal/upstream"
)

// ── 依赖接口 ──
// upstream.Client 与 redis.Client 分别实现，测试中使用手写 mock

// AuthBackend 认证相关后端接口
type AuthBackend interface {
	Login(ctx context.Context, username, password string) (*upstream.LoginResult, error)
	Me(ctx context.Context, sess *model.Session) (*model.User, error)
}

// RoomBackend 教室相关后端接口
type RoomBackend interface {
	ListRooms(ctx context.Context, sess *model.Session) ([]model.Room, error)
	ListDepartmentRooms(ctx context.Context, sess *model.Session) ([]model.Room, error)
	GetRoom(ctx context.Context, sess *model.Session, id model.ID) (*model.Room, error)
	CreateRoom(ctx context.Context, sess *model.Session, in *upstream.RoomInput) (*model.Room, error)
	UpdateRoom(ctx context.Context, sess *model.Session, id model.ID, in *upstream.RoomInput) (*model.Room, error)
	DeleteRoom(ctx context.Context, sess *model.Session, id model.ID) error
	RoomQR(ctx context.Context, sess *model.Session, id model.ID) (json.RawMessage, error)
	RegenerateRoomQR(ctx context.Context, sess *model.Session, id model.ID) (json.RawMessage, error)
}

// ScheduleBackend 课程相关后端接口
type ScheduleBackend interface {
	ListRoomSchedules(ctx context.Context, sess *model.Session, roomID model.ID) ([]model.LectureRecord, error)
	CreateSchedule(ctx context.Context, sess *model.Session, roomID model.ID, in *upstream.ScheduleInput) (*model.LectureRecord, error)
	CreateMultiDoctorSchedule(ctx context.Context, sess *model.Session, roomID model.ID, in *upstream.ScheduleInput) (*model.LectureRecord, error)
	UpdateSchedule(ctx context.Context, sess *model.Session, roomID, scheduleID model.ID, in *upstream.ScheduleInput) (*model.LectureRecord, error)
	DeleteSchedule(ctx context.Context, sess *model.Session, roomID, scheduleID model.ID) error
	PostponeSchedule(ctx context.Context, sess *model.Session, roomID, scheduleID model.ID, in *upstream.PostponeInput) (*model.LectureRecord, error)
	UploadSchedules(ctx context.Context, sess *model.Session, roomID model.ID, filename string, file io.Reader) (upstream.UploadResult, error)
	DeleteAllSchedules(ctx context.Context, sess *model.Session, roomID model.ID) error
}

// DoctorBackend 教师相关后端接口
type DoctorBackend interface {
	ListDoctors(ctx context.Context, sess *model.Session) ([]model.Doctor, error)
	DoctorsByDepartment(ctx context.Context, sess *model.Session) ([]model.DoctorsByDepartment, error)
	CreateDoctor(ctx context.Context, sess *model.Session, in *upstream.DoctorInput) (*model.Doctor, error)
	UpdateDoctor(ctx context.Context, sess *model.Session, id model.ID, in *upstream.DoctorInput) (*model.Doctor, error)
	DeleteDoctor(ctx context.Context, sess *model.Session, id model.ID) error
	DoctorLectures(ctx context.Context, sess *model.Session, id model.ID) ([]model.LectureRecord, error)
}

// DirectoryBackend 用户/院系/督导后端接口
type DirectoryBackend interface {
	ListUsers(ctx context.Context, sess *model.Session) ([]model.User, error)
	CreateUser(ctx context.Context, sess *model.Session, in *upstream.UserInput) (*model.User, error)
	UpdateUser(ctx context.Context, sess *model.Session, id model.ID, in *upstream.UserInput) (*model.User, error)
	DeleteUser(ctx context.Context, sess *model.Session, id model.ID) error
	ListDepartments(ctx context.Context, sess *model.Session) ([]model.Department, error)
	CreateDepartment(ctx context.Context, sess *model.Session, in *upstream.DepartmentInput) (*model.Department, error)
	DeleteDepartment(ctx context.Context, sess *model.Session, id model.ID) error
	ListSupervisors(ctx context.Context, sess *model.Session) ([]model.User, error)
	CreateSupervisor(ctx context.Context, sess *model.Session, in *upstream.SupervisorInput) (*model.User, error)
	DeleteSupervisor(ctx context.Context, sess *model.Session, id model.ID) error
}

// PublicBackend 公开查询后端接口
type PublicBackend interface {
	PublicRoom(ctx context.Context, code string) (*upstream.PublicRoom, error)
	StudentSchedule(ctx context.Context, q upstream.StudentScheduleQuery) ([]model.LectureRecord, error)
	LookupStudent(ctx context.Context, studentID string) (*model.Student, error)
}

// Backend 网关使用的全部后端接口
type Backend interface {
	AuthBackend
	RoomBackend
	ScheduleBackend
	DoctorBackend
	DirectoryBackend
	PublicBackend
}

var _ Backend = (*upstream.Client)(nil)

// Cache JSON 缓存
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) error
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// TokenBlacklist 会话 Token 黑名单
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}
