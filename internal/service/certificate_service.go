package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/25Devmaker/coursehub/internal/repository"
	"github.com/25Devmaker/coursehub/pkg/certificate"
	"github.com/25Devmaker/coursehub/pkg/scheduler"
)

// ── 证书模块业务错误 ──

var (
	ErrIncompleteCourse = errors.New("尚未完成课程全部章节")
	ErrRenderFailure    = errors.New("证书生成失败")
)

// CertificateFile 可下载的证书文件
type CertificateFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// CertificateService 结业证书业务接口
type CertificateService interface {
	// Generate 全部章节完成后生成证书；章节为空或未全部完成返回 ErrIncompleteCourse
	Generate(ctx context.Context, studentID, courseID string) (*CertificateFile, error)
}

type certificateService struct {
	repo     *repository.Repository
	renderer certificate.Renderer
	clock    scheduler.Clock
	logger   *zap.Logger
}

// NewCertificateService 创建 CertificateService 实例
func NewCertificateService(repo *repository.Repository, renderer certificate.Renderer, clock scheduler.Clock, logger *zap.Logger) CertificateService {
	return &certificateService{repo: repo, renderer: renderer, clock: clock, logger: logger}
}

func (s *certificateService) Generate(ctx context.Context, studentID, courseID string) (*CertificateFile, error) {
	student, err := s.repo.User.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}

	chapters, err := s.repo.Chapter.CountByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("统计章节失败", zap.Error(err))
		return nil, err
	}
	completed, err := s.repo.Progress.CountCompleted(ctx, studentID, courseID)
	if err != nil {
		s.logger.Error("统计已完成章节失败", zap.Error(err))
		return nil, err
	}
	if chapters == 0 || completed < chapters {
		return nil, ErrIncompleteCourse
	}

	content, err := s.renderer.Render(certificate.Data{
		StudentName: student.Name,
		CourseTitle: course.Title,
		IssuedAt:    s.clock.Now(),
	})
	if err != nil {
		s.logger.Error("渲染证书失败",
			zap.String("student_id", studentID),
			zap.String("course_id", courseID),
			zap.Error(err),
		)
		return nil, ErrRenderFailure
	}

	s.logger.Info("证书已生成", zap.String("student_id", studentID), zap.String("course_id", courseID))
	return &CertificateFile{
		Filename:    certificate.Filename(course.Title, student.Name),
		ContentType: certificate.ContentType,
		Content:     content,
	}, nil
}
