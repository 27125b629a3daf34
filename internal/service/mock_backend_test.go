package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"college-schedule/backend/internal/model"
	"college-schedule/backend/internal/upstream"
	"college-schedule/backend/pkg/redis"
)

// ── Mock Backend ──

type mockBackend struct {
	mu sync.Mutex

	users       map[string]*model.User // key: username
	passwords   map[string]string
	tokens      map[string]string // key: username → 后端 Token
	rooms       []model.Room
	schedules   map[model.ID][]model.LectureRecord // key: room_id
	failRooms   map[model.ID]bool
	doctors     []model.Doctor
	directory   []model.User
	departments []model.Department
	students    map[string]*model.Student
	studentRecs []model.LectureRecord

	// 调用记录
	createCalls  int
	multiCalls   int
	lastInput    *upstream.ScheduleInput
	lastPostpone *upstream.PostponeInput
	uploads      []string
	publicCalls  int
	studentCalls int

	// 注入错误
	createErr error
	meErr     error
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		users:     make(map[string]*model.User),
		passwords: make(map[string]string),
		tokens:    make(map[string]string),
		schedules: make(map[model.ID][]model.LectureRecord),
		failRooms: make(map[model.ID]bool),
		students:  make(map[string]*model.Student),
	}
}

func (m *mockBackend) addUser(u *model.User, password, token string) {
	m.users[u.Username] = u
	m.passwords[u.Username] = password
	m.tokens[u.Username] = token
}

func (m *mockBackend) addRoom(room model.Room, recs ...model.LectureRecord) {
	m.rooms = append(m.rooms, room)
	m.schedules[room.ID] = recs
}

func httpErr(status int, msg string) error {
	return &upstream.APIError{Status: status, Message: msg}
}

func (m *mockBackend) Login(_ context.Context, username, password string) (*upstream.LoginResult, error) {
	u, ok := m.users[username]
	if !ok || m.passwords[username] != password {
		return nil, httpErr(http.StatusUnauthorized, "invalid credentials")
	}
	return &upstream.LoginResult{Token: m.tokens[username], User: *u}, nil
}

func (m *mockBackend) Me(_ context.Context, sess *model.Session) (*model.User, error) {
	if m.meErr != nil {
		return nil, m.meErr
	}
	if u, ok := m.users[sess.Username]; ok {
		return u, nil
	}
	return nil, httpErr(http.StatusUnauthorized, "")
}

func (m *mockBackend) ListRooms(_ context.Context, _ *model.Session) ([]model.Room, error) {
	return append([]model.Room(nil), m.rooms...), nil
}

func (m *mockBackend) ListDepartmentRooms(_ context.Context, sess *model.Session) ([]model.Room, error) {
	var out []model.Room
	for _, r := range m.rooms {
		if r.DepartmentID.String() == sess.Department() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockBackend) GetRoom(_ context.Context, _ *model.Session, id model.ID) (*model.Room, error) {
	for i := range m.rooms {
		if m.rooms[i].ID == id {
			r := m.rooms[i]
			return &r, nil
		}
	}
	return nil, httpErr(http.StatusNotFound, "room not found")
}

func (m *mockBackend) CreateRoom(_ context.Context, _ *model.Session, in *upstream.RoomInput) (*model.Room, error) {
	r := model.Room{
		ID:           model.ID(fmt.Sprintf("%d", len(m.rooms)+100)),
		Name:         in.Name,
		Code:         in.Code,
		DepartmentID: in.DepartmentID,
	}
	m.rooms = append(m.rooms, r)
	return &r, nil
}

func (m *mockBackend) UpdateRoom(_ context.Context, _ *model.Session, id model.ID, in *upstream.RoomInput) (*model.Room, error) {
	for i := range m.rooms {
		if m.rooms[i].ID == id {
			m.rooms[i].Name = in.Name
			m.rooms[i].Code = in.Code
			m.rooms[i].DepartmentID = in.DepartmentID
			r := m.rooms[i]
			return &r, nil
		}
	}
	return nil, httpErr(http.StatusNotFound, "")
}

func (m *mockBackend) DeleteRoom(_ context.Context, _ *model.Session, id model.ID) error {
	for i := range m.rooms {
		if m.rooms[i].ID == id {
			m.rooms = append(m.rooms[:i], m.rooms[i+1:]...)
			return nil
		}
	}
	return httpErr(http.StatusNotFound, "")
}

func (m *mockBackend) RoomQR(_ context.Context, _ *model.Session, id model.ID) (json.RawMessage, error) {
	return json.RawMessage(`{"qr_code_path":"/qr/` + id.String() + `.png"}`), nil
}

func (m *mockBackend) RegenerateRoomQR(ctx context.Context, sess *model.Session, id model.ID) (json.RawMessage, error) {
	return m.RoomQR(ctx, sess, id)
}

func (m *mockBackend) ListRoomSchedules(_ context.Context, _ *model.Session, roomID model.ID) ([]model.LectureRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRooms[roomID] {
		return nil, &upstream.APIError{Message: "timeout", Err: context.DeadlineExceeded}
	}
	return append([]model.LectureRecord(nil), m.schedules[roomID]...), nil
}

func (m *mockBackend) CreateSchedule(_ context.Context, _ *model.Session, roomID model.ID, in *upstream.ScheduleInput) (*model.LectureRecord, error) {
	m.createCalls++
	m.lastInput = in
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &model.LectureRecord{ID: "900", RoomID: roomID, DayOfWeek: in.DayOfWeek, StartTime: in.StartTime, EndTime: in.EndTime}, nil
}

func (m *mockBackend) CreateMultiDoctorSchedule(_ context.Context, _ *model.Session, roomID model.ID, in *upstream.ScheduleInput) (*model.LectureRecord, error) {
	m.multiCalls++
	m.lastInput = in
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &model.LectureRecord{ID: "901", RoomID: roomID, HasMultipleDoctors: true}, nil
}

func (m *mockBackend) UpdateSchedule(ctx context.Context, sess *model.Session, roomID, _ model.ID, in *upstream.ScheduleInput) (*model.LectureRecord, error) {
	return m.CreateSchedule(ctx, sess, roomID, in)
}

func (m *mockBackend) DeleteSchedule(_ context.Context, _ *model.Session, _, _ model.ID) error {
	return nil
}

func (m *mockBackend) PostponeSchedule(_ context.Context, _ *model.Session, roomID, scheduleID model.ID, in *upstream.PostponeInput) (*model.LectureRecord, error) {
	m.lastPostpone = in
	return &model.LectureRecord{ID: scheduleID, RoomID: roomID, IsPostponed: true, PostponedDate: in.PostponedDate}, nil
}

func (m *mockBackend) UploadSchedules(_ context.Context, _ *model.Session, _ model.ID, filename string, file io.Reader) (upstream.UploadResult, error) {
	if _, err := io.ReadAll(file); err != nil {
		return nil, err
	}
	m.uploads = append(m.uploads, filename)
	return upstream.UploadResult(`{"created":3}`), nil
}

func (m *mockBackend) DeleteAllSchedules(_ context.Context, _ *model.Session, roomID model.ID) error {
	m.schedules[roomID] = nil
	return nil
}

func (m *mockBackend) ListDoctors(_ context.Context, _ *model.Session) ([]model.Doctor, error) {
	return append([]model.Doctor(nil), m.doctors...), nil
}

func (m *mockBackend) DoctorsByDepartment(_ context.Context, _ *model.Session) ([]model.DoctorsByDepartment, error) {
	return nil, nil
}

func (m *mockBackend) CreateDoctor(_ context.Context, _ *model.Session, in *upstream.DoctorInput) (*model.Doctor, error) {
	d := model.Doctor{ID: model.ID(fmt.Sprintf("%d", len(m.doctors)+1)), Name: in.Name, DepartmentID: in.DepartmentID}
	m.doctors = append(m.doctors, d)
	return &d, nil
}

func (m *mockBackend) UpdateDoctor(_ context.Context, _ *model.Session, id model.ID, in *upstream.DoctorInput) (*model.Doctor, error) {
	return &model.Doctor{ID: id, Name: in.Name}, nil
}

func (m *mockBackend) DeleteDoctor(_ context.Context, _ *model.Session, _ model.ID) error {
	return nil
}

func (m *mockBackend) DoctorLectures(_ context.Context, _ *model.Session, id model.ID) ([]model.LectureRecord, error) {
	var out []model.LectureRecord
	for _, recs := range m.schedules {
		for _, r := range recs {
			if r.TaughtBy(id) {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (m *mockBackend) ListUsers(_ context.Context, _ *model.Session) ([]model.User, error) {
	return append([]model.User(nil), m.directory...), nil
}

func (m *mockBackend) CreateUser(_ context.Context, _ *model.Session, in *upstream.UserInput) (*model.User, error) {
	u := model.User{ID: model.ID(fmt.Sprintf("%d", len(m.directory)+1)), Username: in.Username, FullName: in.FullName, Role: in.Role}
	m.directory = append(m.directory, u)
	return &u, nil
}

func (m *mockBackend) UpdateUser(_ context.Context, _ *model.Session, id model.ID, in *upstream.UserInput) (*model.User, error) {
	return &model.User{ID: id, Username: in.Username, Role: in.Role}, nil
}

func (m *mockBackend) DeleteUser(_ context.Context, _ *model.Session, _ model.ID) error {
	return nil
}

func (m *mockBackend) ListDepartments(_ context.Context, _ *model.Session) ([]model.Department, error) {
	return m.departments, nil
}

func (m *mockBackend) CreateDepartment(_ context.Context, _ *model.Session, in *upstream.DepartmentInput) (*model.Department, error) {
	d := model.Department{ID: model.ID(fmt.Sprintf("%d", len(m.departments)+1)), Name: in.Name, Code: in.Code}
	m.departments = append(m.departments, d)
	return &d, nil
}

func (m *mockBackend) DeleteDepartment(_ context.Context, _ *model.Session, _ model.ID) error {
	return nil
}

func (m *mockBackend) ListSupervisors(_ context.Context, _ *model.Session) ([]model.User, error) {
	return nil, nil
}

func (m *mockBackend) CreateSupervisor(_ context.Context, _ *model.Session, in *upstream.SupervisorInput) (*model.User, error) {
	return &model.User{ID: "77", Username: in.Username, Role: model.RoleSupervisor}, nil
}

func (m *mockBackend) DeleteSupervisor(_ context.Context, _ *model.Session, _ model.ID) error {
	return nil
}

func (m *mockBackend) PublicRoom(_ context.Context, code string) (*upstream.PublicRoom, error) {
	m.publicCalls++
	for _, r := range m.rooms {
		if r.Code == code {
			return &upstream.PublicRoom{Room: r, Schedules: m.schedules[r.ID]}, nil
		}
	}
	return nil, httpErr(http.StatusNotFound, "")
}

func (m *mockBackend) StudentSchedule(_ context.Context, _ upstream.StudentScheduleQuery) ([]model.LectureRecord, error) {
	m.studentCalls++
	return m.studentRecs, nil
}

func (m *mockBackend) LookupStudent(_ context.Context, studentID string) (*model.Student, error) {
	if s, ok := m.students[studentID]; ok {
		return s, nil
	}
	return nil, httpErr(http.StatusNotFound, "")
}

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	sessions map[string]*model.Session
	touched  int
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.Session)}
}

func (m *mockSessionRepo) Create(_ context.Context, sess *model.Session) error {
	m.sessions[sess.SessionID] = sess
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	if s, ok := m.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) Touch(_ context.Context, id string, at time.Time) error {
	if s, ok := m.sessions[id]; ok {
		s.LastSeenAt = at
		m.touched++
	}
	return nil
}

func (m *mockSessionRepo) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionRepo) DeleteByUser(_ context.Context, userID string) error {
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// ── Mock Store（缓存 + 黑名单） ──

type mockStore struct {
	data      map[string][]byte
	blacklist map[string]time.Duration
	deleted   []string
	failGet   bool
}

func newMockStore() *mockStore {
	return &mockStore{
		data:      make(map[string][]byte),
		blacklist: make(map[string]time.Duration),
	}
}

func (m *mockStore) GetJSON(_ context.Context, key string, dst interface{}) error {
	if m.failGet {
		return fmt.Errorf("redis: connection refused")
	}
	raw, ok := m.data[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dst)
}

func (m *mockStore) SetJSON(_ context.Context, key string, v interface{}, _ time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *mockStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
		m.deleted = append(m.deleted, k)
	}
	return nil
}

func (m *mockStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	n := 0
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			m.deleted = append(m.deleted, k)
			n++
		}
	}
	return n, nil
}

func (m *mockStore) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.blacklist[jti] = ttl
	return nil
}

func (m *mockStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m.blacklist[jti]
	return ok, nil
}
