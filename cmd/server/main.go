package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"college-schedule/backend/config"
	"college-schedule/backend/internal/api/handler"
	"college-schedule/backend/internal/api/router"
	"college-schedule/backend/internal/repository"
	"college-schedule/backend/internal/service"
	"college-schedule/backend/internal/task"
	"college-schedule/backend/internal/upstream"
	"college-schedule/backend/pkg/database"
	"college-schedule/backend/pkg/jwt"
	applogger "college-schedule/backend/pkg/logger"
	"college-schedule/backend/pkg/metrics"
	"college-schedule/backend/pkg/redis"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "schedule-gateway",
		Short: "College schedule gateway",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(migrateCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动网关 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(*configPath)
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "执行会话表迁移",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "应用全部未执行的迁移",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(*configPath, func(db *gorm.DB, logger *zap.Logger) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return database.RunMigrations(sqlDB, logger)
			})
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "回滚迁移",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			return withDB(*configPath, func(db *gorm.DB, logger *zap.Logger) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return database.RollbackMigrations(sqlDB, steps, logger)
			})
		},
	}
	downCmd.Flags().Int("steps", 1, "回滚步数")

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}

// withDB 加载配置、日志与数据库后执行 fn，结束时释放连接
func withDB(configPath string, fn func(db *gorm.DB, logger *zap.Logger) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	return fn(db, logger)
}

func runServer(configPath string) error {
	// 1. 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer logger.Sync()

	logger.Info("网关启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("upstream", cfg.Upstream.BaseURL),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库并执行会话表迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, logger); err != nil {
		return err
	}

	// 4. 连接 Redis（黑名单、公开缓存、限流）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer rdb.Close()

	// 5. 依赖注入: Upstream/Repository → Service → Handler
	var m *metrics.Metrics
	var upstreamOpts []upstream.Option
	if cfg.Server.Metrics {
		m = metrics.New()
		upstreamOpts = append(upstreamOpts, upstream.WithObserver(m))
	}
	backend := upstream.New(&cfg.Upstream, logger, upstreamOpts...)
	repo := repository.NewRepository(db)
	jwtMgr := jwt.NewManager(&cfg.Auth)

	svc := service.NewService(cfg, backend, repo, rdb, jwtMgr, logger)
	h := handler.NewHandler(svc, cfg.Server.UploadLimit)

	// 6. 初始化路由
	engine := router.Setup(cfg, h, svc.Auth, rdb, m, logger)

	// 7. 周期任务：会话存活巡检
	runner := task.NewRunner(logger)
	runner.Register(task.Task{
		Name:       "session-sweep",
		Interval:   cfg.Session.SweepInterval,
		Run:        svc.Auth.SweepExpired,
		RunOnStart: true,
	})
	if err := runner.Start(context.Background()); err != nil {
		return err
	}

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Upstream.RetryTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
	case err := <-serveErr:
		logger.Error("HTTP 服务器异常", zap.Error(err))
	}

	runner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务器已关闭")
	return nil
}
