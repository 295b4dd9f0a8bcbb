package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/25Devmaker/coursehub/config"
	"github.com/25Devmaker/coursehub/internal/model"
	"github.com/25Devmaker/coursehub/internal/repository"
	"github.com/25Devmaker/coursehub/pkg/scheduler"
)

// StudyPlanService 学习计划日历导出
//
// 每个未完成章节生成一个日程：自次日起每天一个，开始于 session_start_hour，
// 时长取当前学习速度对应的建议学习时长。
type StudyPlanService interface {
	// ExportICS 返回 .ics 内容与建议文件名
	ExportICS(ctx context.Context, studentID, courseID string) ([]byte, string, error)
}

type studyPlanService struct {
	cfg    *config.StudyPlanConfig
	repo   *repository.Repository
	clock  scheduler.Clock
	logger *zap.Logger
}

// NewStudyPlanService 创建 StudyPlanService 实例
func NewStudyPlanService(cfg *config.StudyPlanConfig, repo *repository.Repository, clock scheduler.Clock, logger *zap.Logger) StudyPlanService {
	return &studyPlanService{cfg: cfg, repo: repo, clock: clock, logger: logger}
}

func (s *studyPlanService) ExportICS(ctx context.Context, studentID, courseID string) ([]byte, string, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, "", err
	}
	if err := requireApprovedEnrollment(ctx, s.repo, studentID, courseID); err != nil {
		return nil, "", err
	}

	chapters, err := s.repo.Chapter.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("列出章节失败", zap.Error(err))
		return nil, "", err
	}
	progress, err := s.repo.Progress.ListByStudentCourse(ctx, studentID, courseID)
	if err != nil {
		s.logger.Error("查询学习进度失败", zap.Error(err))
		return nil, "", err
	}
	stats, err := s.repo.Progress.Stats(ctx, studentID, courseID)
	if err != nil {
		s.logger.Error("统计学习数据失败", zap.Error(err))
		return nil, "", err
	}

	byChapter := make(map[string]*model.StudentProgress, len(progress))
	for i := range progress {
		byChapter[progress[i].ChapterID] = &progress[i]
	}
	speed := ClassifyLearningSpeed(*stats)

	loc, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		s.logger.Warn("学习计划时区无效，使用 UTC", zap.String("timezone", s.cfg.Timezone))
		loc = time.UTC
	}

	now := s.clock.Now()
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day()+1, s.cfg.SessionStartHour, 0, 0, 0, loc)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//CourseHub//Study Plan//EN")
	cal.SetXWRCalName(course.Title + " study plan")
	cal.SetXWRTimezone(loc.String())

	for i := range chapters {
		ch := &chapters[i]
		p := byChapter[ch.ChapterID]
		if p != nil && p.Completed {
			continue
		}
		rec := BuildRecommendation(speed, p)
		start := day
		end := start.Add(time.Duration(rec.SuggestedStudyTime * float64(time.Hour)))

		event := cal.AddEvent(fmt.Sprintf("%s-%s@coursehub", studentID, ch.ChapterID))
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(fmt.Sprintf("%s · Chapter %d: %s", course.Title, ch.ChapterNumber, ch.Title))
		event.SetDescription(fmt.Sprintf("Focus: %v. Difficulty: %s.", rec.FocusAreas, rec.DifficultyAdjustment))

		day = day.AddDate(0, 0, 1)
	}

	filename := fmt.Sprintf("CourseHub-StudyPlan-%s.ics", course.Title)
	return []byte(cal.Serialize()), filename, nil
}
