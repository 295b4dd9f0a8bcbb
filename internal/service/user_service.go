package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/25Devmaker/coursehub/internal/dto"
	"github.com/25Devmaker/coursehub/internal/model"
	"github.com/25Devmaker/coursehub/internal/repository"
)

// UserService 管理端学生管理业务接口
type UserService interface {
	ListStudents(ctx context.Context) ([]dto.UserResponse, error)
	StudentProgress(ctx context.Context, studentID string) (*dto.StudentProgressResponse, error)
	// DeleteAdminAccount 管理员注销自己的账号；其发送的聊天消息保留，admin_id 置空
	DeleteAdminAccount(ctx context.Context, adminID string) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) ListStudents(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.User.ListByRole(ctx, model.RoleStudent)
	if err != nil {
		s.logger.Error("列出学生失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, nil
}

func (s *userService) StudentProgress(ctx context.Context, studentID string) (*dto.StudentProgressResponse, error) {
	student, err := s.repo.User.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}
	if student.Role != model.RoleStudent {
		return nil, ErrStudentNotFound
	}

	enrollments, err := s.repo.Enrollment.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询选课记录失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.StudentProgressResponse{
		Student: toUserResponse(student),
		Courses: make([]dto.CourseProgressResponse, 0, len(enrollments)),
	}
	for _, e := range enrollments {
		stats, err := s.repo.Progress.Stats(ctx, studentID, e.CourseID)
		if err != nil {
			s.logger.Error("统计学习数据失败", zap.Error(err))
			return nil, err
		}
		chapters, err := s.repo.Chapter.CountByCourse(ctx, e.CourseID)
		if err != nil {
			s.logger.Error("统计章节失败", zap.Error(err))
			return nil, err
		}

		item := dto.CourseProgressResponse{
			CourseID:          e.CourseID,
			Status:            e.Status,
			CompletedChapters: stats.CompletedCount,
			TotalChapters:     int(chapters),
			TotalTimeSpent:    round2(stats.TotalTime),
		}
		if e.Course != nil {
			item.CourseTitle = e.Course.Title
		}
		resp.Courses = append(resp.Courses, item)
	}
	return resp, nil
}

func (s *userService) DeleteAdminAccount(ctx context.Context, adminID string) error {
	admin, err := s.repo.User.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询管理员失败", zap.Error(err))
		return err
	}
	if !admin.IsAdmin() {
		return ErrUserNotFound
	}

	if err := s.repo.User.Delete(ctx, adminID); err != nil {
		s.logger.Error("删除管理员失败", zap.Error(err))
		return err
	}
	s.logger.Info("管理员账号已注销", zap.String("admin_id", adminID))
	return nil
}
