package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"college-schedule/backend/internal/dto"
	"college-schedule/backend/internal/model"
	"college-schedule/backend/internal/timetable"
	"college-schedule/backend/internal/upstream"
	apperrors "college-schedule/backend/pkg/errors"
)

// 本地校验错误，均可用 errors.Is(err, apperrors.ErrValidation) 判断
var (
	ErrEmptyDoctorList   = fmt.Errorf("%w: يجب اختيار دكتور واحد على الأقل", apperrors.ErrValidation)
	ErrDuplicateDoctor   = fmt.Errorf("%w: لا يمكن تكرار الدكتور نفسه", apperrors.ErrValidation)
	ErrPrimaryNotInList  = fmt.Errorf("%w: الدكتور الأساسي يجب أن يكون ضمن القائمة", apperrors.ErrValidation)
	ErrDoctorRequired    = fmt.Errorf("%w: يجب اختيار الدكتور", apperrors.ErrValidation)
	ErrSectionRequired   = fmt.Errorf("%w: المحاضرة النظرية تتطلب رقم الشعبة", apperrors.ErrValidation)
	ErrGroupRequired     = fmt.Errorf("%w: المحاضرة العملية تتطلب المجموعة", apperrors.ErrValidation)
	ErrSectionGroupMixed = fmt.Errorf("%w: لا يمكن تحديد الشعبة والمجموعة معاً", apperrors.ErrValidation)
	ErrPostponeRoom      = fmt.Errorf("%w: يجب اختيار القاعة البديلة", apperrors.ErrValidation)
	ErrLectureType       = fmt.Errorf("%w: نوع المحاضرة غير معروف", apperrors.ErrValidation)
)

// ConflictError 后端 409：排课与已有课程冲突
// 携带冲突课程，界面据此打开迁移流程
type ConflictError struct {
	Message string
	Lecture *model.LectureRecord
	Summary *timetable.ConflictSummary
}

func (e *ConflictError) Error() string { return e.Message }

// ScheduleRoomBackend 课表服务所需的后端接口
type ScheduleRoomBackend interface {
	RoomBackend
	ScheduleBackend
}

// ScheduleService 课表业务接口
type ScheduleService interface {
	RoomMatrix(ctx context.Context, sess *model.Session, roomID model.ID, q *dto.MatrixQuery) (*dto.MatrixResponse, error)
	WeeklyMatrix(ctx context.Context, sess *model.Session, q *dto.WeeklyMatrixQuery) (*dto.MatrixResponse, error)
	List(ctx context.Context, sess *model.Session, roomID model.ID) ([]model.LectureRecord, error)
	Create(ctx context.Context, sess *model.Session, roomID model.ID, req *dto.ScheduleRequest) (*model.LectureRecord, error)
	Update(ctx context.Context, sess *model.Session, roomID, scheduleID model.ID, req *dto.ScheduleRequest) (*model.LectureRecord, error)
	Delete(ctx context.Context, sess *model.Session, roomID, scheduleID model.ID) error
	Postpone(ctx context.Context, sess *model.Session, roomID, scheduleID model.ID, req *dto.PostponeRequest) (*model.LectureRecord, error)
	Upload(ctx context.Context, sess *model.Session, roomID model.ID, filename string, data []byte) (*dto.UploadResponse, error)
	DeleteAll(ctx context.Context, sess *model.Session, roomID model.ID) error
}

type scheduleService struct {
	backend   ScheduleRoomBackend
	collector *lectureCollector
	cache     Cache
	logger    *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(backend ScheduleRoomBackend, collector *lectureCollector, cache Cache, logger *zap.Logger) ScheduleService {
	return &scheduleService{
		backend:   backend,
		collector: collector,
		cache:     cache,
		logger:    logger,
	}
}

// ── 矩阵视图 ──

func (s *scheduleService) RoomMatrix(ctx context.Context, sess *model.Session, roomID model.ID, q *dto.MatrixQuery) (*dto.MatrixResponse, error) {
	room, err := s.backend.GetRoom(ctx, sess, roomID)
	if err != nil {
		return nil, err
	}
	records, err := s.backend.ListRoomSchedules(ctx, sess, roomID)
	if err != nil {
		return nil, err
	}
	for i := range records {
		fillRoom(&records[i], room)
	}
	records = filterRecords(records, model.StudyType(q.StudyType), model.Stage(q.Stage))

	rooms := []model.Room{*room}
	if needsRoomLookup(records) {
		if all, err := s.collector.allRooms(ctx, sess); err == nil {
			rooms = all
		} else {
			s.logger.Warn("加载教室列表失败，延期教室名称将使用占位", zap.Error(err))
		}
	}

	m, slots, days := buildMatrix(records, rooms)
	return matrixResponse([]model.Room{*room}, m, slots, days, nil), nil
}

func (s *scheduleService) WeeklyMatrix(ctx context.Context, sess *model.Session, q *dto.WeeklyMatrixQuery) (*dto.MatrixResponse, error) {
	rooms, err := s.collector.visibleRooms(ctx, sess)
	if err != nil {
		return nil, err
	}
	rooms = selectRooms(rooms, q.RoomIDs)

	got := s.collector.collect(ctx, sess, rooms)
	records := filterRecords(got.records, model.StudyType(q.StudyType), model.Stage(q.Stage))

	m, slots, days := buildMatrix(records, rooms)
	return matrixResponse(rooms, m, slots, days, got.failed), nil
}

// selectRooms 按请求的 ID 过滤，保留列表顺序；ids 为空时返回全部
func selectRooms(rooms []model.Room, ids []string) []model.Room {
	if len(ids) == 0 {
		return rooms
	}
	want := make(map[model.ID]bool, len(ids))
	for _, raw := range ids {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				want[model.ID(id)] = true
			}
		}
	}
	out := make([]model.Room, 0, len(want))
	for _, r := range rooms {
		if want[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

func matrixResponse(rooms []model.Room, m timetable.Matrix, slots []timetable.TimeSlot, days []model.DayToken, failed []model.ID) *dto.MatrixResponse {
	cols := make([]dto.DayColumn, 0, len(days))
	for _, d := range days {
		cols = append(cols, dto.DayColumn{Day: d, Label: timetable.DayLabel(d)})
	}
	var failedIDs []string
	for _, id := range failed {
		failedIDs = append(failedIDs, id.String())
	}
	if slots == nil {
		slots = []timetable.TimeSlot{}
	}
	return &dto.MatrixResponse{
		Rooms:       rooms,
		Days:        cols,
		Slots:       slots,
		Matrix:      m,
		Total:       m.Count(),
		FailedRooms: failedIDs,
	}
}

// ── 课程增删改 ──

func (s *scheduleService) List(ctx context.Context, sess *model.Session, roomID model.ID) ([]model.LectureRecord, error) {
	records, err := s.backend.ListRoomSchedules(ctx, sess, roomID)
	if err != nil {
		return nil, err
	}
	return timetable.SortForDisplay(records), nil
}

func (s *scheduleService) Create(ctx context.Context, sess *model.Session, roomID model.ID, req *dto.ScheduleRequest) (*model.LectureRecord, error) {
	in, err := scheduleInput(req)
	if err != nil {
		return nil, err
	}

	var rec *model.LectureRecord
	if req.HasMultipleDoctors {
		rec, err = s.backend.CreateMultiDoctorSchedule(ctx, sess, roomID, in)
	} else {
		rec, err = s.backend.CreateSchedule(ctx, sess, roomID, in)
	}
	if err != nil {
		return nil, asConflict(err)
	}
	s.invalidateRoom(ctx, sess, roomID)
	return rec, nil
}

func (s *scheduleService) Update(ctx context.Context, sess *model.Session, roomID, scheduleID model.ID, req *dto.ScheduleRequest) (*model.LectureRecord, error) {
	in, err := scheduleInput(req)
	if err != nil {
		return nil, err
	}
	rec, err := s.backend.UpdateSchedule(ctx, sess, roomID, scheduleID, in)
	if err != nil {
		return nil, asConflict(err)
	}
	s.invalidateRoom(ctx, sess, roomID)
	return rec, nil
}

func (s *scheduleService) Delete(ctx context.Context, sess *model.Session, roomID, scheduleID model.ID) error {
	if err := s.backend.DeleteSchedule(ctx, sess, roomID, scheduleID); err != nil {
		return err
	}
	s.invalidateRoom(ctx, sess, roomID)
	return nil
}

func (s *scheduleService) Postpone(ctx context.Context, sess *model.Session, roomID, scheduleID model.ID, req *dto.PostponeRequest) (*model.LectureRecord, error) {
	start := strings.TrimSpace(req.PostponedStartTime)
	end := strings.TrimSpace(req.PostponedEndTime)
	if err := model.ValidateTimeRange(start, end); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	if _, err := model.ParseDate(req.PostponedDate); err != nil {
		return nil, fmt.Errorf("%w: postponed_date", apperrors.ErrValidation)
	}
	if strings.TrimSpace(req.PostponedToRoomID) == "" {
		return nil, ErrPostponeRoom
	}

	in := &upstream.PostponeInput{
		PostponedDate:      req.PostponedDate,
		PostponedStartTime: start,
		PostponedEndTime:   end,
		PostponedToRoomID:  model.ID(req.PostponedToRoomID),
		PostponedReason:    strings.TrimSpace(req.PostponedReason),
	}
	rec, err := s.backend.PostponeSchedule(ctx, sess, roomID, scheduleID, in)
	if err != nil {
		return nil, asConflict(err)
	}
	s.invalidateRoom(ctx, sess, roomID, in.PostponedToRoomID)
	return rec, nil
}

func (s *scheduleService) Upload(ctx context.Context, sess *model.Session, roomID model.ID, filename string, data []byte) (*dto.UploadResponse, error) {
	sheet, rows, err := InspectSpreadsheet(filename, data)
	if err != nil {
		return nil, err
	}

	result, err := s.backend.UploadSchedules(ctx, sess, roomID, filename, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	s.invalidateRoom(ctx, sess, roomID)

	s.logger.Info("课表文件已导入",
		zap.String("room_id", roomID.String()),
		zap.String("sheet", sheet),
		zap.Int("rows", rows),
	)
	return &dto.UploadResponse{Sheet: sheet, Rows: rows, Result: result}, nil
}

func (s *scheduleService) DeleteAll(ctx context.Context, sess *model.Session, roomID model.ID) error {
	if err := s.backend.DeleteAllSchedules(ctx, sess, roomID); err != nil {
		return err
	}
	s.invalidateRoom(ctx, sess, roomID)
	s.logger.Info("已清空教室课程", zap.String("room_id", roomID.String()), zap.String("user_id", sess.UserID))
	return nil
}

// invalidateRoom 课程变更后清除相关教室的公开页缓存与全部学生课表缓存
func (s *scheduleService) invalidateRoom(ctx context.Context, sess *model.Session, roomIDs ...model.ID) {
	var keys []string
	for _, id := range roomIDs {
		if id.Empty() {
			continue
		}
		room, err := s.backend.GetRoom(ctx, sess, id)
		if err != nil || room.Code == "" {
			continue
		}
		keys = append(keys, publicRoomKey(room.Code))
	}
	if len(keys) > 0 {
		if err := s.cache.Delete(ctx, keys...); err != nil {
			s.logger.Warn("清除教室缓存失败", zap.Strings("keys", keys), zap.Error(err))
		}
	}

	if _, err := s.cache.DeletePrefix(ctx, publicStudentsPrefix); err != nil {
		s.logger.Warn("清除学生课表缓存失败", zap.Error(err))
	}
}

// asConflict 将 409 转为 ConflictError，其他错误原样返回
func asConflict(err error) error {
	apiErr, ok := upstream.AsAPIError(err)
	if !ok || !apiErr.IsConflict() {
		return err
	}
	ce := &ConflictError{Message: apiErr.Message, Lecture: apiErr.Conflict}
	if apiErr.Conflict != nil {
		rec := model.NormalizeClockFields(*apiErr.Conflict)
		ce.Lecture = &rec
		ce.Summary = timetable.Summarize(&rec)
	}
	return ce
}

// scheduleInput 本地校验并转换为后端请求
// 所有校验在发起网络请求之前完成
func scheduleInput(req *dto.ScheduleRequest) (*upstream.ScheduleInput, error) {
	start := strings.TrimSpace(req.StartTime)
	end := strings.TrimSpace(req.EndTime)
	if err := model.ValidateTimeRange(start, end); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	lt := model.LectureType(req.LectureType)
	switch {
	case req.Section != nil && req.Group != nil:
		return nil, ErrSectionGroupMixed
	case lt == model.LectureTheoretical && req.Section == nil:
		return nil, ErrSectionRequired
	case lt == model.LecturePractical && (req.Group == nil || strings.TrimSpace(*req.Group) == ""):
		return nil, ErrGroupRequired
	case lt != model.LectureTheoretical && lt != model.LecturePractical:
		return nil, ErrLectureType
	}

	in := &upstream.ScheduleInput{
		DayOfWeek:     model.DayToken(req.DayOfWeek),
		StartTime:     start,
		EndTime:       end,
		StudyType:     model.StudyType(req.StudyType),
		AcademicStage: model.Stage(req.AcademicStage),
		LectureType:   lt,
		SubjectName:   strings.TrimSpace(req.SubjectName),
		Notes:         strings.TrimSpace(req.Notes),
	}
	switch lt {
	case model.LectureTheoretical:
		in.Section = req.Section
	case model.LecturePractical:
		g := strings.ToUpper(strings.TrimSpace(*req.Group))
		in.Group = &g
	}

	if !req.HasMultipleDoctors {
		if strings.TrimSpace(req.DoctorID) == "" {
			return nil, ErrDoctorRequired
		}
		in.DoctorID = model.ID(strings.TrimSpace(req.DoctorID))
		in.InstructorName = strings.TrimSpace(req.InstructorName)
		return in, nil
	}

	if len(req.DoctorIDs) == 0 {
		return nil, ErrEmptyDoctorList
	}
	seen := make(map[string]bool, len(req.DoctorIDs))
	for _, raw := range req.DoctorIDs {
		id := strings.TrimSpace(raw)
		if id == "" {
			return nil, ErrEmptyDoctorList
		}
		if seen[id] {
			return nil, ErrDuplicateDoctor
		}
		seen[id] = true
		in.DoctorIDs = append(in.DoctorIDs, model.ID(id))
	}

	primary := strings.TrimSpace(req.PrimaryDoctorID)
	if primary == "" {
		primary = in.DoctorIDs[0].String()
	}
	if !seen[primary] {
		return nil, ErrPrimaryNotInList
	}
	in.PrimaryDoctorID = model.ID(primary)
	return in, nil
}

// IsValidation 是否为本地校验错误
func IsValidation(err error) bool {
	return errors.Is(err, apperrors.ErrValidation)
}
