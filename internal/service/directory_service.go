package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"college-schedule/backend/internal/dto"
	"college-schedule/backend/internal/model"
	"college-schedule/backend/internal/upstream"
)

var ErrCannotDeleteSelf = errors.New("لا يمكنك حذف حسابك الخاص")

// DirectoryService 用户、院系与督导管理接口
type DirectoryService interface {
	ListUsers(ctx context.Context, sess *model.Session, req *dto.UserListRequest) ([]model.User, int64, error)
	CreateUser(ctx context.Context, sess *model.Session, req *dto.CreateUserRequest) (*model.User, error)
	UpdateUser(ctx context.Context, sess *model.Session, id model.ID, req *dto.UpdateUserRequest) (*model.User, error)
	DeleteUser(ctx context.Context, sess *model.Session, id model.ID) error

	ListDepartments(ctx context.Context, sess *model.Session) ([]model.Department, error)
	CreateDepartment(ctx context.Context, sess *model.Session, req *dto.DepartmentRequest) (*model.Department, error)
	DeleteDepartment(ctx context.Context, sess *model.Session, id model.ID) error

	ListSupervisors(ctx context.Context, sess *model.Session) ([]model.User, error)
	CreateSupervisor(ctx context.Context, sess *model.Session, req *dto.SupervisorRequest) (*model.User, error)
	DeleteSupervisor(ctx context.Context, sess *model.Session, id model.ID) error
}

type directoryService struct {
	backend DirectoryBackend
	logger  *zap.Logger
}

// NewDirectoryService 创建 DirectoryService 实例
func NewDirectoryService(backend DirectoryBackend, logger *zap.Logger) DirectoryService {
	return &directoryService{backend: backend, logger: logger}
}

func (s *directoryService) ListUsers(ctx context.Context, sess *model.Session, req *dto.UserListRequest) ([]model.User, int64, error) {
	users, err := s.backend.ListUsers(ctx, sess)
	if err != nil {
		return nil, 0, err
	}

	keyword := strings.ToLower(strings.TrimSpace(req.Keyword))
	filtered := make([]model.User, 0, len(users))
	for _, u := range users {
		if req.Role != "" && string(u.Role) != req.Role {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(u.Username), keyword) &&
			!strings.Contains(strings.ToLower(u.FullName), keyword) {
			continue
		}
		filtered = append(filtered, u)
	}

	page, total := dto.Paginate(filtered, &req.PaginationRequest)
	return page, total, nil
}

func (s *directoryService) CreateUser(ctx context.Context, sess *model.Session, req *dto.CreateUserRequest) (*model.User, error) {
	user, err := s.backend.CreateUser(ctx, sess, &upstream.UserInput{
		Username:     strings.TrimSpace(req.Username),
		Password:     req.Password,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.TrimSpace(req.Email),
		Role:         model.Role(req.Role),
		DepartmentID: model.ID(req.DepartmentID),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("创建用户", zap.String("operator", sess.UserID), zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *directoryService) UpdateUser(ctx context.Context, sess *model.Session, id model.ID, req *dto.UpdateUserRequest) (*model.User, error) {
	return s.backend.UpdateUser(ctx, sess, id, &upstream.UserInput{
		Username:     strings.TrimSpace(req.Username),
		Password:     req.Password,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.TrimSpace(req.Email),
		Role:         model.Role(req.Role),
		DepartmentID: model.ID(req.DepartmentID),
		IsActive:     req.IsActive,
	})
}

func (s *directoryService) DeleteUser(ctx context.Context, sess *model.Session, id model.ID) error {
	if id.String() == sess.UserID {
		return ErrCannotDeleteSelf
	}
	if err := s.backend.DeleteUser(ctx, sess, id); err != nil {
		return err
	}
	s.logger.Info("删除用户", zap.String("operator", sess.UserID), zap.String("user_id", id.String()))
	return nil
}

func (s *directoryService) ListDepartments(ctx context.Context, sess *model.Session) ([]model.Department, error) {
	return s.backend.ListDepartments(ctx, sess)
}

func (s *directoryService) CreateDepartment(ctx context.Context, sess *model.Session, req *dto.DepartmentRequest) (*model.Department, error) {
	return s.backend.CreateDepartment(ctx, sess, &upstream.DepartmentInput{
		Name: strings.TrimSpace(req.Name),
		Code: strings.TrimSpace(req.Code),
	})
}

func (s *directoryService) DeleteDepartment(ctx context.Context, sess *model.Session, id model.ID) error {
	return s.backend.DeleteDepartment(ctx, sess, id)
}

func (s *directoryService) ListSupervisors(ctx context.Context, sess *model.Session) ([]model.User, error) {
	return s.backend.ListSupervisors(ctx, sess)
}

func (s *directoryService) CreateSupervisor(ctx context.Context, sess *model.Session, req *dto.SupervisorRequest) (*model.User, error) {
	return s.backend.CreateSupervisor(ctx, sess, &upstream.SupervisorInput{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
		FullName: strings.TrimSpace(req.FullName),
		Email:    strings.TrimSpace(req.Email),
	})
}

func (s *directoryService) DeleteSupervisor(ctx context.Context, sess *model.Session, id model.ID) error {
	return s.backend.DeleteSupervisor(ctx, sess, id)
}
