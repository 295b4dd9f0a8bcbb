package handler

import "github.com/25Devmaker/coursehub/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Course       *CourseHandler
	Enrollment   *EnrollmentHandler
	Learning     *LearningHandler
	Certificate  *CertificateHandler
	Notification *NotificationHandler
	Chat         *ChatHandler
	Dashboard    *DashboardHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Course:       NewCourseHandler(svc.Course),
		Enrollment:   NewEnrollmentHandler(svc.Enrollment),
		Learning:     NewLearningHandler(svc.Progress, svc.Learning, svc.StudyPlan),
		Certificate:  NewCertificateHandler(svc.Certificate),
		Notification: NewNotificationHandler(svc.Notification),
		Chat:         NewChatHandler(svc.Chat),
		Dashboard:    NewDashboardHandler(svc.Dashboard),
		Export:       NewExportHandler(svc.Export),
	}
}
