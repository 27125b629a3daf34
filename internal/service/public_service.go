package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"college-schedule/backend/internal/dto"
	"college-schedule/backend/internal/model"
	"college-schedule/backend/internal/upstream"
	"college-schedule/backend/pkg/redis"
)

// PublicService 无需登录的课表查询（扫码查看教室、学生查课表）
// 结果缓存在 Redis，缓存不可用时直接回源
type PublicService interface {
	RoomMatrix(ctx context.Context, code string) (*dto.MatrixResponse, error)
	StudentSchedule(ctx context.Context, q *dto.StudentScheduleQuery) (*dto.MatrixResponse, error)
	LookupStudent(ctx context.Context, studentID string) (*model.Student, error)
}

type publicService struct {
	backend PublicBackend
	cache   Cache
	ttl     time.Duration
	logger  *zap.Logger
}

// NewPublicService 创建 PublicService 实例
func NewPublicService(backend PublicBackend, cache Cache, ttl time.Duration, logger *zap.Logger) PublicService {
	return &publicService{
		backend: backend,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

func publicRoomKey(code string) string {
	return "public:room:" + strings.ToLower(code)
}

// publicStudentsPrefix 学生课表缓存键前缀，任一课程变更都可能影响
const publicStudentsPrefix = "public:students:"

func studentScheduleKey(q *dto.StudentScheduleQuery) string {
	return fmt.Sprintf(publicStudentsPrefix+"%s:%s:%s:%s:%s",
		q.DepartmentID, q.Stage, q.StudyType, strings.ToUpper(q.Section), strings.ToUpper(q.Group))
}

func (s *publicService) RoomMatrix(ctx context.Context, code string) (*dto.MatrixResponse, error) {
	key := publicRoomKey(code)
	return s.cached(ctx, key, func() (*dto.MatrixResponse, error) {
		pr, err := s.backend.PublicRoom(ctx, code)
		if err != nil {
			return nil, err
		}
		records := pr.Schedules
		for i := range records {
			fillRoom(&records[i], &pr.Room)
		}
		m, slots, days := buildMatrix(records, []model.Room{pr.Room})
		return matrixResponse([]model.Room{pr.Room}, m, slots, days, nil), nil
	})
}

func (s *publicService) StudentSchedule(ctx context.Context, q *dto.StudentScheduleQuery) (*dto.MatrixResponse, error) {
	key := studentScheduleKey(q)
	return s.cached(ctx, key, func() (*dto.MatrixResponse, error) {
		records, err := s.backend.StudentSchedule(ctx, upstream.StudentScheduleQuery{
			DepartmentID: model.ID(q.DepartmentID),
			Stage:        model.Stage(q.Stage),
			StudyType:    model.StudyType(q.StudyType),
			Section:      q.Section,
			Group:        q.Group,
		})
		if err != nil {
			return nil, err
		}
		records = filterRecords(records, model.StudyType(q.StudyType), model.Stage(q.Stage))
		m, slots, days := buildMatrix(records, nil)
		return matrixResponse(nil, m, slots, days, nil), nil
	})
}

func (s *publicService) LookupStudent(ctx context.Context, studentID string) (*model.Student, error) {
	return s.backend.LookupStudent(ctx, strings.TrimSpace(studentID))
}

// cached 读缓存，未命中时回源并写回
func (s *publicService) cached(ctx context.Context, key string, load func() (*dto.MatrixResponse, error)) (*dto.MatrixResponse, error) {
	var hit dto.MatrixResponse
	err := s.cache.GetJSON(ctx, key, &hit)
	if err == nil {
		return &hit, nil
	}
	if !errors.Is(err, redis.ErrCacheMiss) {
		s.logger.Warn("读取缓存失败", zap.String("key", key), zap.Error(err))
	}

	resp, err := load()
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, key, resp, s.ttl); err != nil {
		s.logger.Warn("写入缓存失败", zap.String("key", key), zap.Error(err))
	}
	return resp, nil
}
