package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/25Devmaker/coursehub/config"
	"github.com/25Devmaker/coursehub/internal/api/handler"
	"github.com/25Devmaker/coursehub/internal/api/middleware"
	"github.com/25Devmaker/coursehub/internal/model"
	"github.com/25Devmaker/coursehub/pkg/jwt"
	"github.com/25Devmaker/coursehub/pkg/redis"
)

const maxBodyBytes = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
// rdb 与 db 均可为 nil：无 Redis 时黑名单与限流降级放行，无数据库时健康检查只报告进程存活
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	var (
		blacklist middleware.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// ── 健康检查 ──
	r.GET("/health", healthHandler(db))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", middleware.RateLimit(limiter, 10, time.Minute), h.Auth.Signup)
			auth.POST("/admin-signup", middleware.RateLimit(limiter, 10, time.Minute), h.Auth.AdminSignup)
			auth.POST("/login", middleware.RateLimit(limiter, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 课程列表公开
		v1.GET("/courses", h.Course.List)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 通知模块（学生与管理员共用）
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListUnread)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
			}

			// 会话记录：学生只能查看自己的会话（Service 层鉴权）
			authorized.GET("/chat/history/:student_id", h.Chat.History)

			student := authorized.Group("")
			student.Use(middleware.RoleAuth(model.RoleStudent))
			{
				student.GET("/dashboard", h.Dashboard.Student)
				student.GET("/courses/:id", h.Course.ViewCourse)
				student.GET("/chapters/:id", h.Course.ViewChapter)

				// 选课模块
				student.POST("/enrollments", middleware.RateLimit(limiter, 20, time.Minute), h.Enrollment.Create)
				student.GET("/enrollments/me", h.Enrollment.ListMine)

				// 学习进度模块
				student.POST("/progress/track", h.Learning.TrackTime)
				student.POST("/progress/chapters/:id/complete", h.Learning.CompleteChapter)

				// 学习建议与计划
				learning := student.Group("/learning")
				{
					learning.GET("/recommendations/:chapter_id", h.Learning.Recommendations)
					learning.GET("/next-chapter/:course_id", h.Learning.NextChapter)
					learning.GET("/report/:course_id", h.Learning.Report)
					learning.GET("/study-plan/:course_id", h.Learning.StudyPlan)
				}

				student.GET("/certificates/:course_id", h.Certificate.Download)
				student.POST("/chat/messages", middleware.RateLimit(limiter, 30, time.Minute), h.Chat.StudentSend)
			}

			admin := authorized.Group("/admin")
			admin.Use(middleware.RoleAuth(model.RoleAdmin))
			{
				admin.GET("/dashboard", h.Dashboard.Admin)
				admin.DELETE("/account", h.User.DeleteAccount)

				// 课程管理
				admin.POST("/courses", h.Course.Create)
				admin.PUT("/courses/:id", h.Course.Update)
				admin.GET("/courses/:id/chapters", h.Course.ListChapters)
				admin.POST("/courses/:id/chapters", h.Course.AddChapter)
				admin.GET("/courses/:id/students", h.Enrollment.ListCourseStudents)

				// 选课审批
				admin.GET("/enrollments", h.Enrollment.List)
				admin.GET("/enrollments/export", h.Export.ExportEnrollments)
				admin.PUT("/enrollments/:id/approve", h.Enrollment.Approve)
				admin.PUT("/enrollments/:id/reject", h.Enrollment.Reject)

				// 学生管理
				admin.GET("/students", h.User.ListStudents)
				admin.GET("/students/:id/progress", h.User.StudentProgress)

				// 消息
				admin.POST("/chat/messages", h.Chat.AdminSend)
				admin.POST("/chat/broadcast", h.Chat.Broadcast)
				admin.GET("/chat/history", h.Chat.AllHistory)
				admin.GET("/chat/student-messages", h.Chat.StudentMessages)
				admin.GET("/chat/threads", h.Chat.Threads)
			}
		}
	}

	return r
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
	}
}
