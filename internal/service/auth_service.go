package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"college-schedule/backend/internal/dto"
	"college-schedule/backend/internal/model"
	"college-schedule/backend/internal/repository"
	"college-schedule/backend/internal/upstream"
	apperrors "college-schedule/backend/pkg/errors"
	"college-schedule/backend/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("اسم المستخدم أو كلمة المرور غير صحيحة")
	ErrTokenRevoked       = errors.New("تم تسجيل الخروج من هذه الجلسة")
)

// AuthService 认证与会话业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, sess *model.Session, claims *jwt.Claims) error
	Me(ctx context.Context, sess *model.Session) (*dto.UserResponse, error)
	// Authenticate 解析网关 Token 并加载会话，供鉴权中间件使用
	Authenticate(ctx context.Context, token string) (*model.Session, *jwt.Claims, error)
	// SweepExpired 清理过期会话，由周期任务调用
	SweepExpired(ctx context.Context) error
}

type authService struct {
	backend   AuthBackend
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	backend AuthBackend,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		backend:   backend,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	// 1. 后端校验凭据
	res, err := s.backend.Login(ctx, req.Username, req.Password)
	if err != nil {
		if apiErr, ok := upstream.AsAPIError(err); ok &&
			(apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusBadRequest) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	token := res.BearerToken()
	if token == "" {
		return nil, ErrInvalidCredentials
	}

	// 2. 会话过期时间：不超过网关 TTL，且不晚于后端 Token 的 exp
	now := s.now()
	expiresAt := now.Add(s.jwtMgr.TTL())
	if exp, ok := jwt.UpstreamExpiry(token); ok && exp.Before(expiresAt) {
		expiresAt = exp
	}
	if !expiresAt.After(now) {
		return nil, apperrors.ErrSessionExpired
	}

	// 3. 持久化会话
	user := res.User
	sess := &model.Session{
		SessionID:     uuid.New().String(),
		UpstreamToken: token,
		UserID:        user.ID.String(),
		Username:      user.Username,
		FullName:      user.FullName,
		Role:          string(user.Role),
		ExpiresAt:     expiresAt,
		LastSeenAt:    now,
	}
	if !user.DepartmentID.Empty() {
		dept := user.DepartmentID.String()
		sess.DepartmentID = &dept
	}
	if err := s.repo.Session.Create(ctx, sess); err != nil {
		s.logger.Error("创建会话失败", zap.Error(err))
		return nil, err
	}

	// 4. 签发网关 Token
	signed, err := s.jwtMgr.GenerateSessionToken(sess.SessionID, sess.UserID, sess.Role, sess.Department(), expiresAt)
	if err != nil {
		s.logger.Error("签发会话 Token 失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户登录", zap.String("user_id", sess.UserID), zap.String("role", sess.Role))

	return &dto.LoginResponse{
		Token:     signed,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		ExpiresIn: int(expiresAt.Sub(now).Seconds()),
		User:      sessionUser(sess),
	}, nil
}

func (s *authService) Logout(ctx context.Context, sess *model.Session, claims *jwt.Claims) error {
	if err := s.repo.Session.Delete(ctx, sess.SessionID); err != nil {
		s.logger.Error("删除会话失败", zap.String("session_id", sess.SessionID), zap.Error(err))
		return err
	}
	if claims != nil && claims.ID != "" && claims.ExpiresAt != nil {
		ttl := claims.ExpiresAt.Time.Sub(s.now())
		if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
			// 会话已删除，Token 即使未进黑名单也无法再加载会话
			s.logger.Warn("Token 加入黑名单失败", zap.Error(err))
		}
	}
	return nil
}

func (s *authService) Me(ctx context.Context, sess *model.Session) (*dto.UserResponse, error) {
	user, err := s.backend.Me(ctx, sess)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionExpired) {
			s.dropSession(ctx, sess)
		}
		return nil, err
	}
	return &dto.UserResponse{
		ID:           user.ID.String(),
		Username:     user.Username,
		FullName:     user.FullName,
		Role:         string(user.Role),
		DepartmentID: user.DepartmentID.String(),
	}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.Session, *jwt.Claims, error) {
	claims, err := s.jwtMgr.ParseToken(token)
	if err != nil {
		return nil, nil, err
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		// Redis 不可用时以数据库会话为准
		s.logger.Warn("查询 Token 黑名单失败", zap.Error(err))
	} else if revoked {
		return nil, nil, ErrTokenRevoked
	}

	sess, err := s.repo.Session.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrSessionExpired
		}
		s.logger.Error("加载会话失败", zap.Error(err))
		return nil, nil, err
	}

	now := s.now()
	if sess.Expired(now) {
		s.dropSession(ctx, sess)
		return nil, nil, apperrors.ErrSessionExpired
	}

	if err := s.repo.Session.Touch(ctx, sess.SessionID, now); err != nil {
		s.logger.Warn("刷新会话活跃时间失败", zap.Error(err))
	}
	return sess, claims, nil
}

func (s *authService) SweepExpired(ctx context.Context) error {
	n, err := s.repo.Session.DeleteExpired(ctx, s.now())
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("已清理过期会话", zap.Int64("count", n))
	}
	return nil
}

// dropSession 后端 Token 已失效时删除本地会话
func (s *authService) dropSession(ctx context.Context, sess *model.Session) {
	if err := s.repo.Session.Delete(ctx, sess.SessionID); err != nil {
		s.logger.Warn("删除失效会话失败", zap.String("session_id", sess.SessionID), zap.Error(err))
	}
}

func sessionUser(sess *model.Session) dto.UserResponse {
	return dto.UserResponse{
		ID:           sess.UserID,
		Username:     sess.Username,
		FullName:     sess.FullName,
		Role:         sess.Role,
		DepartmentID: sess.Department(),
	}
}
