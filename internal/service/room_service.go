package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"college-schedule/backend/internal/dto"
	"college-schedule/backend/internal/model"
	"college-schedule/backend/internal/upstream"
)

var ErrRoomForbidden = errors.New("لا يمكنك إدارة قاعة خارج قسمك")

// RoomService 教室业务接口
type RoomService interface {
	List(ctx context.Context, sess *model.Session) ([]model.Room, error)
	Get(ctx context.Context, sess *model.Session, id model.ID) (*model.Room, error)
	Create(ctx context.Context, sess *model.Session, req *dto.RoomRequest) (*model.Room, error)
	Update(ctx context.Context, sess *model.Session, id model.ID, req *dto.RoomRequest) (*model.Room, error)
	Delete(ctx context.Context, sess *model.Session, id model.ID) error
	QR(ctx context.Context, sess *model.Session, id model.ID) (json.RawMessage, error)
	RegenerateQR(ctx context.Context, sess *model.Session, id model.ID) (json.RawMessage, error)
}

type roomService struct {
	backend   RoomBackend
	collector *lectureCollector
	cache     Cache
	logger    *zap.Logger
}

// NewRoomService 创建 RoomService 实例
func NewRoomService(backend RoomBackend, collector *lectureCollector, cache Cache, logger *zap.Logger) RoomService {
	return &roomService{
		backend:   backend,
		collector: collector,
		cache:     cache,
		logger:    logger,
	}
}

func (s *roomService) List(ctx context.Context, sess *model.Session) ([]model.Room, error) {
	return s.collector.visibleRooms(ctx, sess)
}

func (s *roomService) Get(ctx context.Context, sess *model.Session, id model.ID) (*model.Room, error) {
	return s.backend.GetRoom(ctx, sess, id)
}

func (s *roomService) Create(ctx context.Context, sess *model.Session, req *dto.RoomRequest) (*model.Room, error) {
	in := roomInput(req)
	// 系主任只能在本院系下创建
	if model.Role(sess.Role) != model.RoleDean {
		dept := model.ID(sess.Department())
		if !in.DepartmentID.Empty() && in.DepartmentID != dept {
			return nil, ErrRoomForbidden
		}
		in.DepartmentID = dept
	}
	return s.backend.CreateRoom(ctx, sess, in)
}

func (s *roomService) Update(ctx context.Context, sess *model.Session, id model.ID, req *dto.RoomRequest) (*model.Room, error) {
	before, err := s.backend.GetRoom(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if err := checkRoomScope(sess, before); err != nil {
		return nil, err
	}

	in := roomInput(req)
	if model.Role(sess.Role) != model.RoleDean {
		in.DepartmentID = before.DepartmentID
	}
	room, err := s.backend.UpdateRoom(ctx, sess, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidateRoom(ctx, before.Code, room.Code)
	return room, nil
}

func (s *roomService) Delete(ctx context.Context, sess *model.Session, id model.ID) error {
	room, err := s.backend.GetRoom(ctx, sess, id)
	if err != nil {
		return err
	}
	if err := checkRoomScope(sess, room); err != nil {
		return err
	}
	if err := s.backend.DeleteRoom(ctx, sess, id); err != nil {
		return err
	}
	s.invalidateRoom(ctx, room.Code)
	return nil
}

func (s *roomService) QR(ctx context.Context, sess *model.Session, id model.ID) (json.RawMessage, error) {
	return s.backend.RoomQR(ctx, sess, id)
}

func (s *roomService) RegenerateQR(ctx context.Context, sess *model.Session, id model.ID) (json.RawMessage, error) {
	return s.backend.RegenerateRoomQR(ctx, sess, id)
}

// invalidateRoom 清除公开教室页缓存
func (s *roomService) invalidateRoom(ctx context.Context, codes ...string) {
	keys := make([]string, 0, len(codes))
	for _, c := range codes {
		if c != "" {
			keys = append(keys, publicRoomKey(c))
		}
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("清除教室缓存失败", zap.Strings("keys", keys), zap.Error(err))
	}
}

func checkRoomScope(sess *model.Session, room *model.Room) error {
	if model.Role(sess.Role) == model.RoleDean {
		return nil
	}
	if room.DepartmentID.Empty() || room.DepartmentID.String() != sess.Department() {
		return ErrRoomForbidden
	}
	return nil
}

func roomInput(req *dto.RoomRequest) *upstream.RoomInput {
	return &upstream.RoomInput{
		Name:         strings.TrimSpace(req.Name),
		Code:         strings.TrimSpace(req.Code),
		DepartmentID: model.ID(req.DepartmentID),
		Capacity:     req.Capacity,
		Description:  req.Description,
		IsActive:     req.IsActive,
	}
}
