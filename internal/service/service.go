package service

import (
	"time"

	"go.uber.org/zap"

	"college-schedule/backend/config"
	"college-schedule/backend/internal/repository"
	"college-schedule/backend/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth      AuthService
	Room      RoomService
	Schedule  ScheduleService
	Doctor    DoctorService
	Directory DirectoryService
	Public    PublicService
	Export    ExportService
}

// Store 会话黑名单与公开查询缓存（redis.Client 实现）
type Store interface {
	Cache
	TokenBlacklist
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	backend Backend,
	repo *repository.Repository,
	store Store,
	jwtMgr *jwt.Manager,
	logger *zap.Logger,
) *Service {
	loc, err := time.LoadLocation(cfg.Database.Timezone)
	if err != nil {
		logger.Warn("加载时区失败，使用 UTC", zap.String("timezone", cfg.Database.Timezone), zap.Error(err))
		loc = time.UTC
	}

	collector := &lectureCollector{
		rooms:     backend,
		schedules: backend,
		workers:   cfg.Server.FetchWorkers,
		logger:    logger,
	}

	schedule := NewScheduleService(backend, collector, store, logger)
	return &Service{
		Auth:      NewAuthService(backend, repo, jwtMgr, store, logger),
		Room:      NewRoomService(backend, collector, store, logger),
		Schedule:  schedule,
		Doctor:    NewDoctorService(backend, collector, loc, logger),
		Directory: NewDirectoryService(backend, logger),
		Public:    NewPublicService(backend, store, cfg.Public.CacheTTL, logger),
		Export:    NewExportService(schedule, logger),
	}
}
