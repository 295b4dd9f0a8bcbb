package service

import (
	"go.uber.org/zap"

	"github.com/25Devmaker/coursehub/config"
	"github.com/25Devmaker/coursehub/internal/repository"
	"github.com/25Devmaker/coursehub/pkg/certificate"
	"github.com/25Devmaker/coursehub/pkg/jwt"
	"github.com/25Devmaker/coursehub/pkg/mailer"
	"github.com/25Devmaker/coursehub/pkg/scheduler"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Course       CourseService
	Enrollment   EnrollmentService
	Progress     ProgressService
	Learning     LearningService
	Certificate  CertificateService
	StudyPlan    StudyPlanService
	Notification NotificationService
	Chat         ChatService
	Dashboard    DashboardService
	Export       ExportService
}

// Deps Service 层外部依赖
type Deps struct {
	Config    *config.Config
	Repo      *repository.Repository
	JWT       *jwt.Manager
	Blacklist TokenBlacklist // 可为 nil，未配置 Redis 时登出不吊销 Token
	Timers    scheduler.Scheduler
	Clock     scheduler.Clock
	Mailer    mailer.Mailer
	Renderer  certificate.Renderer
	Logger    *zap.Logger
}

// NewService 创建 Service 聚合
func NewService(d Deps) *Service {
	clock := d.Clock
	if clock == nil {
		clock = scheduler.RealClock{}
	}

	return &Service{
		Auth:         NewAuthService(d.Config, d.Repo, d.JWT, d.Blacklist, d.Logger),
		User:         NewUserService(d.Repo, d.Logger),
		Course:       NewCourseService(d.Repo, d.Logger),
		Enrollment:   NewEnrollmentService(d.Repo, d.Timers, clock, d.Mailer, d.Config.Enrollment.AutoApproveAfter, d.Logger),
		Progress:     NewProgressService(d.Repo, clock, d.Logger),
		Learning:     NewLearningService(d.Repo, d.Logger),
		Certificate:  NewCertificateService(d.Repo, d.Renderer, clock, d.Logger),
		StudyPlan:    NewStudyPlanService(&d.Config.StudyPlan, d.Repo, clock, d.Logger),
		Notification: NewNotificationService(d.Repo, d.Logger),
		Chat:         NewChatService(d.Repo, clock, d.Logger),
		Dashboard:    NewDashboardService(d.Repo, d.Logger),
		Export:       NewExportService(d.Repo, clock, d.Logger),
	}
}
