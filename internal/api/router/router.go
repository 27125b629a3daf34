package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"college-schedule/backend/config"
	"college-schedule/backend/internal/api/handler"
	"college-schedule/backend/internal/api/middleware"
	"college-schedule/backend/internal/model"
	"college-schedule/backend/pkg/metrics"
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时公开接口与登录接口不限流；m 为 nil 时不暴露 /metrics
func Setup(cfg *config.Config, h *handler.Handler, auth middleware.Authenticator, limiter middleware.RateLimiter, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if err := handler.RegisterValidators(); err != nil {
		logger.Warn("注册自定义校验规则失败", zap.Error(err))
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit, cfg.Server.UploadLimit))
	if m != nil {
		r.Use(middleware.Metrics(m))
	}

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	limited := middleware.RateLimit(limiter, cfg.Public.RateLimit, cfg.Public.RateLimitWindow, logger)

	dean := middleware.RoleAuth(model.RoleDean)
	managers := middleware.RoleAuth(model.RoleDean, model.RoleDepartmentHead)
	staff := middleware.RoleAuth(model.RoleDean, model.RoleDepartmentHead, model.RoleSupervisor)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", limited, h.Auth.Login)

		// 公开查询（扫码、学生）
		public := v1.Group("/public")
		public.Use(limited)
		{
			public.GET("/rooms/:code/matrix", h.Public.RoomMatrix)
			public.GET("/students/schedule", h.Public.StudentSchedule)
			public.GET("/students/lookup", h.Public.LookupStudent)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.SessionAuth(auth))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 教室模块
			rooms := authorized.Group("/rooms")
			{
				rooms.GET("", h.Room.ListRooms)
				rooms.GET("/:id", h.Room.GetRoom)
				rooms.POST("", managers, h.Room.CreateRoom)
				rooms.PUT("/:id", managers, h.Room.UpdateRoom)
				rooms.DELETE("/:id", managers, h.Room.DeleteRoom)
				rooms.GET("/:id/qr", h.Room.GetQR)
				rooms.POST("/:id/qr", managers, h.Room.RegenerateQR)

				// 教室课表
				rooms.GET("/:id/matrix", h.Schedule.RoomMatrix)
				rooms.GET("/:id/schedules", h.Schedule.ListSchedules)
				rooms.POST("/:id/schedules", staff, h.Schedule.CreateSchedule)
				rooms.POST("/:id/schedules/upload", managers, h.Schedule.UploadSchedules)
				rooms.DELETE("/:id/schedules", managers, h.Schedule.DeleteAllSchedules)
				rooms.PUT("/:id/schedules/:sid", staff, h.Schedule.UpdateSchedule)
				rooms.DELETE("/:id/schedules/:sid", staff, h.Schedule.DeleteSchedule)
				rooms.POST("/:id/schedules/:sid/postpone", staff, h.Schedule.PostponeSchedule)
			}

			// 多教室周视图
			authorized.GET("/schedules/weekly-matrix", h.Schedule.WeeklyMatrix)

			// 教师模块
			doctors := authorized.Group("/doctors")
			{
				doctors.GET("", h.Doctor.ListDoctors)
				doctors.GET("/departments", h.Doctor.DoctorsByDepartment)
				doctors.POST("", managers, h.Doctor.CreateDoctor)
				doctors.POST("/availability", h.Doctor.Availability)
				doctors.PUT("/:id", managers, h.Doctor.UpdateDoctor)
				doctors.DELETE("/:id", managers, h.Doctor.DeleteDoctor)
				doctors.GET("/:id/lectures", h.Doctor.Lectures)
				doctors.GET("/:id/calendar.ics", h.Doctor.Calendar)
			}

			// 院长：用户与院系管理
			deanGroup := authorized.Group("/dean")
			deanGroup.Use(dean)
			{
				deanGroup.GET("/users", h.Directory.ListUsers)
				deanGroup.POST("/users", h.Directory.CreateUser)
				deanGroup.PUT("/users/:id", h.Directory.UpdateUser)
				deanGroup.DELETE("/users/:id", h.Directory.DeleteUser)
				deanGroup.GET("/departments", h.Directory.ListDepartments)
				deanGroup.POST("/departments", h.Directory.CreateDepartment)
				deanGroup.DELETE("/departments/:id", h.Directory.DeleteDepartment)
			}

			// 系主任：督导管理
			department := authorized.Group("/department")
			department.Use(managers)
			{
				department.GET("/supervisors", h.Directory.ListSupervisors)
				department.POST("/supervisors", h.Directory.CreateSupervisor)
				department.DELETE("/supervisors/:id", h.Directory.DeleteSupervisor)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/rooms/:id", h.Export.ExportRoom)
				export.GET("/weekly", h.Export.ExportWeekly)
			}
		}
	}

	return r
}
