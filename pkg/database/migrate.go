package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrateLogger 将 golang-migrate 的日志转给 zap
type migrateLogger struct {
	s *zap.SugaredLogger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.s.Debugf(strings.TrimSpace(format), v...)
}

func (l migrateLogger) Verbose() bool { return false }

func newMigrator(db *sql.DB, logger *zap.Logger) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("加载迁移文件失败: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("创建迁移驱动失败: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("初始化迁移实例失败: %w", err)
	}
	m.Log = migrateLogger{s: logger.Sugar()}
	return m, nil
}

// RunMigrations 应用全部未执行的迁移（会话表）
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	m, err := newMigrator(db, logger)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("执行迁移失败: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("数据库迁移完成", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// RollbackMigrations 回滚 steps 步迁移
func RollbackMigrations(db *sql.DB, steps int, logger *zap.Logger) error {
	if steps <= 0 {
		return fmt.Errorf("回滚步数必须大于 0，实际: %d", steps)
	}
	m, err := newMigrator(db, logger)
	if err != nil {
		return err
	}
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("回滚迁移失败: %w", err)
	}

	logger.Info("数据库迁移已回滚", zap.Int("steps", steps))
	return nil
}
