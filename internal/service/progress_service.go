package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/25Devmaker/coursehub/internal/dto"
	"github.com/25Devmaker/coursehub/internal/repository"
	"github.com/25Devmaker/coursehub/pkg/scheduler"
)

// ProgressService 学习进度业务接口
type ProgressService interface {
	// TrackTime 累加章节学习时长（秒转为小时）
	TrackTime(ctx context.Context, studentID string, req *dto.TrackTimeRequest) (*dto.ProgressResponse, error)
	// CompleteChapter 标记章节检查点完成
	CompleteChapter(ctx context.Context, studentID, chapterID string) (*dto.ProgressResponse, error)
}

type progressService struct {
	repo   *repository.Repository
	clock  scheduler.Clock
	logger *zap.Logger
}

// NewProgressService 创建 ProgressService 实例
func NewProgressService(repo *repository.Repository, clock scheduler.Clock, logger *zap.Logger) ProgressService {
	return &progressService{repo: repo, clock: clock, logger: logger}
}

// ────────────────────── TrackTime ──────────────────────

func (s *progressService) TrackTime(ctx context.Context, studentID string, req *dto.TrackTimeRequest) (*dto.ProgressResponse, error) {
	chapter, err := s.repo.Chapter.GetByID(ctx, req.ChapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChapterNotFound
		}
		s.logger.Error("查询章节失败", zap.Error(err))
		return nil, err
	}
	if err := requireApprovedEnrollment(ctx, s.repo, studentID, chapter.CourseID); err != nil {
		return nil, err
	}

	hours := float64(req.Seconds) / 3600
	if err := s.repo.Progress.AddTime(ctx, studentID, chapter.CourseID, chapter.ChapterID, hours); err != nil {
		s.logger.Error("记录学习时长失败", zap.Error(err))
		return nil, err
	}

	return s.load(ctx, studentID, chapter.ChapterID)
}

// ────────────────────── CompleteChapter ──────────────────────

func (s *progressService) CompleteChapter(ctx context.Context, studentID, chapterID string) (*dto.ProgressResponse, error) {
	chapter, err := s.repo.Chapter.GetByID(ctx, chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChapterNotFound
		}
		s.logger.Error("查询章节失败", zap.Error(err))
		return nil, err
	}
	if err := requireApprovedEnrollment(ctx, s.repo, studentID, chapter.CourseID); err != nil {
		return nil, err
	}

	if err := s.repo.Progress.MarkComplete(ctx, studentID, chapter.CourseID, chapterID, s.clock.Now()); err != nil {
		s.logger.Error("标记章节完成失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("章节已完成", zap.String("student_id", studentID), zap.String("chapter_id", chapterID))
	return s.load(ctx, studentID, chapterID)
}

func (s *progressService) load(ctx context.Context, studentID, chapterID string) (*dto.ProgressResponse, error) {
	p, err := s.repo.Progress.GetByStudentChapter(ctx, studentID, chapterID)
	if err != nil {
		s.logger.Error("查询学习进度失败", zap.Error(err))
		return nil, err
	}
	resp := &dto.ProgressResponse{
		ChapterID: p.ChapterID,
		Completed: p.Completed,
		TimeSpent: p.TimeSpent,
	}
	if p.CompletedAt != nil {
		v := p.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &v
	}
	return resp, nil
}
