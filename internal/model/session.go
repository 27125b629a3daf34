package model

import "time"

// Session 网关会话，对应 sessions
// 后端 Token 只保存在服务端，浏览器持有的是网关签发的会话 JWT
type Session struct {
	SessionID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	UpstreamToken string    `gorm:"type:text;not null"                             json:"-"`
	UserID        string    `gorm:"type:varchar(64);not null"                      json:"user_id"`
	Username      string    `gorm:"type:varchar(150);not null;default:''"          json:"username"`
	FullName      string    `gorm:"type:varchar(200);not null;default:''"          json:"full_name"`
	Role          string    `gorm:"type:varchar(30);not null"                      json:"role"`
	DepartmentID  *string   `gorm:"type:varchar(64)"                               json:"department_id,omitempty"`
	ExpiresAt     time.Time `gorm:"not null"                                       json:"expires_at"`
	LastSeenAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"last_seen_at"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (Session) TableName() string { return "sessions" }

// Expired 会话是否已过期
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Department 返回院系 ID（可能为空）
func (s *Session) Department() string {
	if s.DepartmentID == nil {
		return ""
	}
	return *s.DepartmentID
}
