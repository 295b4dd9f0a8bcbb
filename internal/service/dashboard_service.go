package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/25Devmaker/coursehub/internal/dto"
	"github.com/25Devmaker/coursehub/internal/model"
	"github.com/25Devmaker/coursehub/internal/repository"
)

// DashboardService 首页统计业务接口
type DashboardService interface {
	Student(ctx context.Context, studentID string) (*dto.StudentDashboardResponse, error)
	Admin(ctx context.Context) (*dto.AdminDashboardResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(repo *repository.Repository, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger}
}

// ────────────────────── Student ──────────────────────

func (s *dashboardService) Student(ctx context.Context, studentID string) (*dto.StudentDashboardResponse, error) {
	enrollments, err := s.repo.Enrollment.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询选课记录失败", zap.Error(err))
		return nil, err
	}
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, err
	}
	unread, err := s.repo.Notification.ListUnread(ctx, studentID, unreadListLimit)
	if err != nil {
		s.logger.Error("查询未读通知失败", zap.Error(err))
		return nil, err
	}

	approved := make(map[string]bool)
	for _, e := range enrollments {
		if e.Status == model.EnrollmentApproved {
			approved[e.CourseID] = true
		}
	}
	available := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		if !approved[courses[i].CourseID] {
			available = append(available, toCourseResponse(&courses[i]))
		}
	}

	return &dto.StudentDashboardResponse{
		Enrollments:         toEnrollmentResponses(enrollments),
		AvailableCourses:    available,
		UnreadNotifications: toNotificationResponses(unread),
	}, nil
}

// ────────────────────── Admin ──────────────────────

func (s *dashboardService) Admin(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	var (
		resp dto.AdminDashboardResponse
		err  error
	)

	if resp.TotalStudents, err = s.repo.User.CountByRole(ctx, model.RoleStudent); err != nil {
		s.logger.Error("统计学生数失败", zap.Error(err))
		return nil, err
	}
	if resp.TotalCourses, err = s.repo.Course.Count(ctx); err != nil {
		s.logger.Error("统计课程数失败", zap.Error(err))
		return nil, err
	}
	if resp.TotalEnrollments, err = s.repo.Enrollment.Count(ctx, ""); err != nil {
		s.logger.Error("统计选课数失败", zap.Error(err))
		return nil, err
	}
	if resp.PendingEnrollments, err = s.repo.Enrollment.Count(ctx, model.EnrollmentPending); err != nil {
		s.logger.Error("统计待审批数失败", zap.Error(err))
		return nil, err
	}

	monthly, err := s.repo.Enrollment.CountByMonth(ctx)
	if err != nil {
		s.logger.Error("按月统计选课失败", zap.Error(err))
		return nil, err
	}
	resp.MonthlyEnrollments = make([]dto.MonthlyCount, 0, len(monthly))
	for _, m := range monthly {
		resp.MonthlyEnrollments = append(resp.MonthlyEnrollments, dto.MonthlyCount{Month: m.Month, Count: m.Count})
	}

	popularity, err := s.repo.Enrollment.CountApprovedByCourse(ctx)
	if err != nil {
		s.logger.Error("按课程统计选课失败", zap.Error(err))
		return nil, err
	}
	resp.CoursePopularity = make([]dto.CoursePopCount, 0, len(popularity))
	for _, p := range popularity {
		resp.CoursePopularity = append(resp.CoursePopularity, dto.CoursePopCount{CourseTitle: p.CourseTitle, Count: p.Count})
	}

	return &resp, nil
}
