package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/config"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/api/handler"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/api/middleware"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/redis"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/session"
)

// maxBodyBytes caps request bodies. Attendance saves for even the biggest
// group stay well under this.
const maxBodyBytes = 1 << 20 // 1MB

// Setup builds the gin engine and mounts every route.
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	sessions *session.Manager,
	auth middleware.Authenticator,
	rdb *redis.Client,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── diagnostics ──
	r.GET("/health", h.System.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Credential endpoints are throttled harder than the rest of the API;
	// the limiter only engages when Redis is up.
	loginLimit := middleware.RateLimit(rdb, cfg.Limit.LoginPerMinute, time.Minute)
	writeLimit := middleware.RateLimit(rdb, cfg.Limit.WritePerMinute, time.Minute)

	// ── public: authentication ──
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", loginLimit, h.Auth.Login)
		authGroup.POST("/register", loginLimit, h.Auth.Register)
		authGroup.POST("/forgot-password", loginLimit, h.Auth.ForgotPassword)
		authGroup.POST("/reset-password", loginLimit, h.Auth.ResetPassword)
	}

	// ── authenticated routes ──
	authorized := api.Group("")
	authorized.Use(middleware.SessionAuth(sessions, auth))
	{
		authorized.POST("/auth/logout", h.Auth.Logout)
		authorized.GET("/auth/me", h.Auth.Me)
		authorized.POST("/auth/change-password", h.Auth.ChangePassword)

		authorized.GET("/groups", h.Group.List)

		students := authorized.Group("/students")
		{
			students.GET("", middleware.RequirePermission(model.PermViewOwnGroups), h.Student.List)
			students.POST("", middleware.RequirePermission(model.PermSubmitStudents), writeLimit, h.Student.Submit)
		}

		attendance := authorized.Group("/attendance")
		attendance.Use(middleware.RequirePermission(model.PermTakeAttendance))
		{
			attendance.GET("", h.Attendance.Get)
			attendance.POST("", writeLimit, h.Attendance.Set)
			attendance.GET("/exists", h.Attendance.Exists)
		}

		authorized.GET("/reports/attendance",
			middleware.RequirePermission(model.PermViewReports), h.Report.Attendance)

		export := authorized.Group("/export")
		export.Use(middleware.RequirePermission(model.PermExportReports))
		{
			export.GET("/csv", h.Export.CSV)
			export.GET("/pdf", h.Export.PDF)
			export.GET("/xlsx", h.Export.XLSX)
		}

		// ── admin ──
		admin := authorized.Group("/admin")
		{
			users := admin.Group("", middleware.RequirePermission(model.PermManageUsers))
			{
				users.GET("/users", h.User.List)
				users.GET("/pending-users", h.User.ListPending)
				users.PUT("/users/:id", h.User.Update)
				users.POST("/users/:id/approve", h.User.Approve)
				users.POST("/users/:id/toggle-active", h.User.ToggleActive)
			}

			groups := admin.Group("/groups", middleware.RequirePermission(model.PermManageGroups))
			{
				groups.GET("", h.Group.ListAll)
				groups.POST("", h.Group.Create)
				groups.PUT("/:id", h.Group.Update)
				groups.DELETE("/:id", h.Group.Deactivate)
				groups.POST("/:id/restore", h.Group.Restore)
			}

			studentAdmin := admin.Group("", middleware.RequirePermission(model.PermManageStudents))
			{
				studentAdmin.GET("/pending-students", h.Student.ListPending)
				studentAdmin.POST("/students/:id/approve", h.Student.Approve)
				studentAdmin.POST("/students/:id/expel", h.Student.Expel)
			}

			admin.POST("/cache/clear",
				middleware.RequirePermission(model.PermManageCache), h.System.CacheClear)
		}
	}

	return r
}
