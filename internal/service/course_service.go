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

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound  = errors.New("课程不存在")
	ErrChapterNotFound = errors.New("章节不存在")
	ErrNotEnrolled     = errors.New("尚未通过该课程的选课审批")
)

// CourseService 课程与章节业务接口
type CourseService interface {
	List(ctx context.Context) ([]dto.CourseResponse, error)
	Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error)
	AddChapter(ctx context.Context, courseID string, req *dto.CreateChapterRequest, callerID string) (*dto.ChapterResponse, error)
	ListChapters(ctx context.Context, courseID string) ([]dto.ChapterResponse, error)
	// ViewCourse 学生查看课程，需已通过选课审批
	ViewCourse(ctx context.Context, studentID, courseID string) (*dto.CourseDetailResponse, error)
	// ViewChapter 学生查看章节，需已通过选课审批
	ViewChapter(ctx context.Context, studentID, chapterID string) (*dto.ChapterDetailResponse, error)
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, toCourseResponse(&courses[i]))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	course := &model.Course{
		Title:         req.Title,
		Description:   req.Description,
		Thumbnail:     req.Thumbnail,
		TotalChapters: req.TotalChapters,
		TotalHours:    req.TotalHours,
	}
	course.CreatedBy = &callerID
	course.UpdatedBy = &callerID

	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	resp := toCourseResponse(course)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Thumbnail != nil {
		course.Thumbnail = *req.Thumbnail
	}
	if req.TotalChapters != nil {
		course.TotalChapters = *req.TotalChapters
	}
	if req.TotalHours != nil {
		course.TotalHours = *req.TotalHours
	}
	course.UpdatedBy = &callerID

	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("更新课程失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}

	resp := toCourseResponse(course)
	return &resp, nil
}

// ────────────────────── AddChapter ──────────────────────

func (s *courseService) AddChapter(ctx context.Context, courseID string, req *dto.CreateChapterRequest, callerID string) (*dto.ChapterResponse, error) {
	if _, err := s.getCourse(ctx, courseID); err != nil {
		return nil, err
	}

	number := 0
	if req.ChapterNumber != nil {
		number = *req.ChapterNumber
	} else {
		last, err := s.repo.Chapter.MaxChapterNumber(ctx, courseID)
		if err != nil {
			s.logger.Error("查询最大章节号失败", zap.Error(err))
			return nil, err
		}
		number = last + 1
	}

	chapter := &model.Chapter{
		CourseID:      courseID,
		ChapterNumber: number,
		Title:         req.Title,
		Content:       req.Content,
		Checkpoint:    req.Checkpoint,
	}
	chapter.CreatedBy = &callerID
	chapter.UpdatedBy = &callerID

	if err := s.repo.Chapter.Create(ctx, chapter); err != nil {
		s.logger.Error("创建章节失败", zap.Error(err))
		return nil, err
	}

	resp := toChapterResponse(chapter, false, true)
	return &resp, nil
}

// ────────────────────── ListChapters ──────────────────────

func (s *courseService) ListChapters(ctx context.Context, courseID string) ([]dto.ChapterResponse, error) {
	if _, err := s.getCourse(ctx, courseID); err != nil {
		return nil, err
	}

	chapters, err := s.repo.Chapter.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("列出章节失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ChapterResponse, 0, len(chapters))
	for i := range chapters {
		result = append(result, toChapterResponse(&chapters[i], false, false))
	}
	return result, nil
}

// ────────────────────── ViewCourse ──────────────────────

func (s *courseService) ViewCourse(ctx context.Context, studentID, courseID string) (*dto.CourseDetailResponse, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := requireApprovedEnrollment(ctx, s.repo, studentID, courseID); err != nil {
		return nil, err
	}

	chapters, err := s.repo.Chapter.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("列出章节失败", zap.Error(err))
		return nil, err
	}
	progress, err := s.repo.Progress.ListByStudentCourse(ctx, studentID, courseID)
	if err != nil {
		s.logger.Error("查询学习进度失败", zap.Error(err))
		return nil, err
	}

	done := make(map[string]bool, len(progress))
	for _, p := range progress {
		if p.Completed {
			done[p.ChapterID] = true
		}
	}

	resp := &dto.CourseDetailResponse{
		Course:       toCourseResponse(course),
		Chapters:     make([]dto.ChapterResponse, 0, len(chapters)),
		AllCompleted: len(chapters) > 0,
	}
	for i := range chapters {
		completed := done[chapters[i].ChapterID]
		if !completed {
			resp.AllCompleted = false
		}
		resp.Chapters = append(resp.Chapters, toChapterResponse(&chapters[i], completed, false))
	}
	return resp, nil
}

// ────────────────────── ViewChapter ──────────────────────

func (s *courseService) ViewChapter(ctx context.Context, studentID, chapterID string) (*dto.ChapterDetailResponse, error) {
	chapter, err := s.getChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	course, err := s.getCourse(ctx, chapter.CourseID)
	if err != nil {
		return nil, err
	}
	if err := requireApprovedEnrollment(ctx, s.repo, studentID, chapter.CourseID); err != nil {
		return nil, err
	}

	chapters, err := s.repo.Chapter.ListByCourse(ctx, chapter.CourseID)
	if err != nil {
		s.logger.Error("列出章节失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.ChapterDetailResponse{Course: toCourseResponse(course)}
	for i := range chapters {
		if chapters[i].ChapterID != chapterID {
			continue
		}
		if i > 0 {
			prev := chapters[i-1].ChapterID
			resp.PrevChapterID = &prev
		}
		if i+1 < len(chapters) {
			next := chapters[i+1].ChapterID
			resp.NextChapterID = &next
		}
		break
	}

	progress, err := s.repo.Progress.GetByStudentChapter(ctx, studentID, chapterID)
	switch {
	case err == nil:
		resp.Chapter = toChapterResponse(chapter, progress.Completed, true)
		resp.TimeSpent = progress.TimeSpent
	case errors.Is(err, gorm.ErrRecordNotFound):
		resp.Chapter = toChapterResponse(chapter, false, true)
	default:
		s.logger.Error("查询章节进度失败", zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// ── 内部方法 ──

func (s *courseService) getCourse(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}
	return course, nil
}

func (s *courseService) getChapter(ctx context.Context, id string) (*model.Chapter, error) {
	chapter, err := s.repo.Chapter.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChapterNotFound
		}
		s.logger.Error("查询章节失败", zap.String("chapter_id", id), zap.Error(err))
		return nil, err
	}
	return chapter, nil
}

// requireApprovedEnrollment 校验学生已通过该课程的选课审批
func requireApprovedEnrollment(ctx context.Context, repo *repository.Repository, studentID, courseID string) error {
	e, err := repo.Enrollment.GetByStudentCourse(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotEnrolled
		}
		return err
	}
	if e.Status != model.EnrollmentApproved {
		return ErrNotEnrolled
	}
	return nil
}

func toCourseResponse(c *model.Course) dto.CourseResponse {
	return dto.CourseResponse{
		ID:            c.CourseID,
		Title:         c.Title,
		Description:   c.Description,
		Thumbnail:     c.Thumbnail,
		TotalChapters: c.TotalChapters,
		TotalHours:    c.TotalHours,
	}
}

func toChapterResponse(c *model.Chapter, completed, withContent bool) dto.ChapterResponse {
	resp := dto.ChapterResponse{
		ID:            c.ChapterID,
		CourseID:      c.CourseID,
		ChapterNumber: c.ChapterNumber,
		Title:         c.Title,
		Checkpoint:    c.Checkpoint,
		Completed:     completed,
	}
	if withContent {
		resp.Content = c.Content
	}
	return resp
}
