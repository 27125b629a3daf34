package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"college-schedule/backend/internal/dto"
	"college-schedule/backend/internal/model"
	"college-schedule/backend/internal/timetable"
	"college-schedule/backend/internal/upstream"
)

// 日历导出默认重复周数（一个学期）
const defaultCalendarWeeks = 16

// DoctorService 教师业务接口
type DoctorService interface {
	List(ctx context.Context, sess *model.Session, req *dto.DoctorListRequest) ([]model.Doctor, int64, error)
	ByDepartment(ctx context.Context, sess *model.Session) ([]model.DoctorsByDepartment, error)
	Create(ctx context.Context, sess *model.Session, req *dto.DoctorRequest) (*model.Doctor, error)
	Update(ctx context.Context, sess *model.Session, id model.ID, req *dto.DoctorRequest) (*model.Doctor, error)
	Delete(ctx context.Context, sess *model.Session, id model.ID) error
	Lectures(ctx context.Context, sess *model.Session, id model.ID) ([]model.LectureRecord, error)
	// Availability 对全系统课程运行可用性检查，为每位教师给出结果
	Availability(ctx context.Context, sess *model.Session, req *dto.AvailabilityRequest) (*dto.AvailabilityResponse, error)
	Calendar(ctx context.Context, sess *model.Session, id model.ID, q *dto.CalendarQuery) (*bytes.Buffer, string, error)
}

type doctorService struct {
	backend   DoctorBackend
	collector *lectureCollector
	location  *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewDoctorService 创建 DoctorService 实例
func NewDoctorService(backend DoctorBackend, collector *lectureCollector, location *time.Location, logger *zap.Logger) DoctorService {
	if location == nil {
		location = time.UTC
	}
	return &doctorService{
		backend:   backend,
		collector: collector,
		location:  location,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *doctorService) List(ctx context.Context, sess *model.Session, req *dto.DoctorListRequest) ([]model.Doctor, int64, error) {
	doctors, err := s.backend.ListDoctors(ctx, sess)
	if err != nil {
		return nil, 0, err
	}

	keyword := strings.ToLower(strings.TrimSpace(req.Keyword))
	filtered := make([]model.Doctor, 0, len(doctors))
	for _, d := range doctors {
		if req.DepartmentID != "" && d.DepartmentID.String() != req.DepartmentID {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(d.Name), keyword) &&
			!strings.Contains(strings.ToLower(d.Email), keyword) {
			continue
		}
		filtered = append(filtered, d)
	}

	page, total := dto.Paginate(filtered, &req.PaginationRequest)
	return page, total, nil
}

func (s *doctorService) ByDepartment(ctx context.Context, sess *model.Session) ([]model.DoctorsByDepartment, error) {
	return s.backend.DoctorsByDepartment(ctx, sess)
}

func (s *doctorService) Create(ctx context.Context, sess *model.Session, req *dto.DoctorRequest) (*model.Doctor, error) {
	in := doctorInput(req)
	if model.Role(sess.Role) != model.RoleDean && in.DepartmentID.Empty() {
		in.DepartmentID = model.ID(sess.Department())
	}
	return s.backend.CreateDoctor(ctx, sess, in)
}

func (s *doctorService) Update(ctx context.Context, sess *model.Session, id model.ID, req *dto.DoctorRequest) (*model.Doctor, error) {
	return s.backend.UpdateDoctor(ctx, sess, id, doctorInput(req))
}

func (s *doctorService) Delete(ctx context.Context, sess *model.Session, id model.ID) error {
	return s.backend.DeleteDoctor(ctx, sess, id)
}

func (s *doctorService) Lectures(ctx context.Context, sess *model.Session, id model.ID) ([]model.LectureRecord, error) {
	records, err := s.backend.DoctorLectures(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	// 按星期、开始时间排序
	out := make([]model.LectureRecord, len(records))
	for i := range records {
		out[i] = model.NormalizeClockFields(records[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := dayIndex(out[i].DayOfWeek), dayIndex(out[j].DayOfWeek)
		if di != dj {
			return di < dj
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (s *doctorService) Availability(ctx context.Context, sess *model.Session, req *dto.AvailabilityRequest) (*dto.AvailabilityResponse, error) {
	ids := make([]model.ID, 0, len(req.DoctorIDs))
	for _, raw := range req.DoctorIDs {
		ids = append(ids, model.ID(strings.TrimSpace(raw)))
	}
	c := timetable.Candidate{
		Day:       model.DayToken(req.DayOfWeek),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		StudyType: model.StudyType(req.StudyType),
		ExcludeID: model.ID(req.ExcludeScheduleID),
	}

	// 表单不完整时无需拉取课程
	var all []model.LectureRecord
	if c.Day != "" && c.StartTime != "" && c.EndTime != "" {
		rooms, err := s.collector.allRooms(ctx, sess)
		if err != nil {
			return nil, err
		}
		all = s.collector.collect(ctx, sess, rooms).records
	}

	results := timetable.CheckMany(all, ids, c)
	out := make(map[string]timetable.AvailabilityResult, len(results))
	for id, r := range results {
		out[id.String()] = r
	}
	return &dto.AvailabilityResponse{Results: out}, nil
}

func (s *doctorService) Calendar(ctx context.Context, sess *model.Session, id model.ID, q *dto.CalendarQuery) (*bytes.Buffer, string, error) {
	records, err := s.backend.DoctorLectures(ctx, sess, id)
	if err != nil {
		return nil, "", err
	}

	from := s.now().In(s.location)
	if q.From != "" {
		if d, err := time.ParseInLocation(model.DateLayout, q.From, s.location); err == nil {
			from = d
		}
	}
	weeks := q.Weeks
	if weeks <= 0 {
		weeks = defaultCalendarWeeks
	}

	name := ""
	for i := range records {
		if _, n := records[i].PrimaryDoctor(); n != "" && records[i].DoctorID == id {
			name = n
			break
		}
	}

	cal := timetable.DoctorCalendar(records, timetable.CalendarOptions{
		Name:     name,
		From:     from,
		Weeks:    weeks,
		Location: s.location,
		Now:      s.now(),
	})

	buf := bytes.NewBufferString(cal.Serialize())
	s.logger.Debug("生成教师日历", zap.String("doctor_id", id.String()), zap.Int("events", len(cal.Events())))
	return buf, fmt.Sprintf("doctor-%s.ics", id), nil
}

func doctorInput(req *dto.DoctorRequest) *upstream.DoctorInput {
	return &upstream.DoctorInput{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		DepartmentID: model.ID(req.DepartmentID),
		IsActive:     req.IsActive,
	}
}

func dayIndex(d model.DayToken) int {
	for i, x := range model.AllDays {
		if x == d {
			return i
		}
	}
	return len(model.AllDays)
}
