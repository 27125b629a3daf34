package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
// 课表数据由后端持有，网关只持久化自己的会话
type Repository struct {
	Session SessionRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Session: NewSessionRepo(db),
	}
}
