package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"college-schedule/backend/internal/model"
)

// SessionRepository 网关会话数据访问接口
type SessionRepository interface {
	Create(ctx context.Context, sess *model.Session) error
	GetByID(ctx context.Context, sessionID string) (*model.Session, error)
	Touch(ctx context.Context, sessionID string, at time.Time) error
	Delete(ctx context.Context, sessionID string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo 创建 SessionRepository 实例
func NewSessionRepo(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, sess *model.Session) error {
	return r.db.WithContext(ctx).Create(sess).Error
}

func (r *sessionRepo) GetByID(ctx context.Context, sessionID string) (*model.Session, error) {
	var sess model.Session
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&sess).Error
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// Touch 刷新最后活跃时间
func (r *sessionRepo) Touch(ctx context.Context, sessionID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"last_seen_at": at,
			"updated_at":   at,
		}).Error
}

func (r *sessionRepo) Delete(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&model.Session{}).Error
}

// DeleteByUser 删除用户的全部会话（后端报告 Token 失效时使用）
func (r *sessionRepo) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Session{}).Error
}

// DeleteExpired 删除已过期会话，返回删除条数
func (r *sessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&model.Session{})
	return res.RowsAffected, res.Error
}
