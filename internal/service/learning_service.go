package service

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/25Devmaker/coursehub/internal/dto"
	"github.com/25Devmaker/coursehub/internal/model"
	"github.com/25Devmaker/coursehub/internal/repository"
)

// ErrNoProgressData 课程没有任何章节，无法生成学习报告
var ErrNoProgressData = errors.New("暂无学习数据")

// 分类阈值（小时 / 完成率）
const (
	fastCompletionRate = 0.8
	fastAvgHours       = 1.5
	slowCompletionRate = 0.5
	slowAvgHours       = 3.0
	reviewHours        = 2.5 // 当前章节未完成且耗时超过该值时建议复习
	defaultAvgHours    = 2.0 // 估算剩余时间时无历史数据的默认值
)

// ClassifyLearningSpeed 根据聚合学习数据判定学习速度
//
//	completion_rate = completed / total（total 为 0 时取 0）
//	avg = total_time / completed（completed 为 0 时取 0）
//	fast: rate > 0.8 且 avg < 1.5；slow: rate < 0.5 或 avg > 3；其余 normal
func ClassifyLearningSpeed(stats model.ProgressStats) model.LearningSpeed {
	var rate, avg float64
	if stats.TotalCount > 0 {
		rate = float64(stats.CompletedCount) / float64(stats.TotalCount)
	}
	if stats.CompletedCount > 0 {
		avg = stats.TotalTime / float64(stats.CompletedCount)
	}

	switch {
	case rate > fastCompletionRate && avg < fastAvgHours:
		return model.SpeedFast
	case rate < slowCompletionRate || avg > slowAvgHours:
		return model.SpeedSlow
	default:
		return model.SpeedNormal
	}
}

// BuildRecommendation 由学习速度与当前章节进度生成学习建议
// current 为 nil 表示当前章节尚无进度记录
func BuildRecommendation(speed model.LearningSpeed, current *model.StudentProgress) dto.Recommendation {
	var rec dto.Recommendation
	rec.LearningSpeed = speed

	switch speed {
	case model.SpeedFast:
		rec.FocusAreas = []string{"advanced", "practicals", "challenges"}
		rec.SuggestedStudyTime = 1.5
		rec.DifficultyAdjustment = model.AdjustIncrease
	case model.SpeedSlow:
		rec.FocusAreas = []string{"basics", "examples", "step-by-step"}
		rec.SuggestedStudyTime = 3.0
		rec.DifficultyAdjustment = model.AdjustDecrease
	default:
		rec.FocusAreas = []string{"balanced", "examples", "practice"}
		rec.SuggestedStudyTime = 2.0
		rec.DifficultyAdjustment = model.AdjustNormal
	}

	if current != nil && !current.Completed && current.TimeSpent > reviewHours {
		rec.FocusAreas = append(rec.FocusAreas, "review")
		rec.DifficultyAdjustment = model.AdjustDecrease
	}
	return rec
}

// LearningService 学习分析业务接口
type LearningService interface {
	Recommendations(ctx context.Context, studentID, chapterID string) (*dto.Recommendation, error)
	NextChapter(ctx context.Context, studentID, courseID string) (*dto.NextChapterResponse, error)
	Report(ctx context.Context, studentID, courseID string) (*dto.LearningReportResponse, error)
}

type learningService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLearningService 创建 LearningService 实例
func NewLearningService(repo *repository.Repository, logger *zap.Logger) LearningService {
	return &learningService{repo: repo, logger: logger}
}

// ────────────────────── Recommendations ──────────────────────

func (s *learningService) Recommendations(ctx context.Context, studentID, chapterID string) (*dto.Recommendation, error) {
	chapter, err := s.repo.Chapter.GetByID(ctx, chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChapterNotFound
		}
		s.logger.Error("查询章节失败", zap.Error(err))
		return nil, err
	}
	rec, err := s.recommend(ctx, studentID, chapter.CourseID, chapterID)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ────────────────────── NextChapter ──────────────────────

func (s *learningService) NextChapter(ctx context.Context, studentID, courseID string) (*dto.NextChapterResponse, error) {
	chapters, done, err := s.chapterState(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	for i := range chapters {
		if done[chapters[i].ChapterID] {
			continue
		}
		rec, err := s.recommend(ctx, studentID, courseID, chapters[i].ChapterID)
		if err != nil {
			return nil, err
		}
		ch := toChapterResponse(&chapters[i], false, false)
		return &dto.NextChapterResponse{Chapter: &ch, Recommendation: &rec}, nil
	}
	return &dto.NextChapterResponse{AllCompleted: true}, nil
}

// ────────────────────── Report ──────────────────────

func (s *learningService) Report(ctx context.Context, studentID, courseID string) (*dto.LearningReportResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}

	total, err := s.repo.Chapter.CountByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("统计章节失败", zap.Error(err))
		return nil, err
	}
	if total == 0 {
		return nil, ErrNoProgressData
	}

	stats, err := s.repo.Progress.Stats(ctx, studentID, courseID)
	if err != nil {
		s.logger.Error("统计学习数据失败", zap.Error(err))
		return nil, err
	}

	speed := ClassifyLearningSpeed(*stats)
	completed := stats.CompletedCount
	// 报告中的平均耗时按有进度记录的章节计算
	var avg float64
	if stats.TotalCount > 0 {
		avg = stats.TotalTime / float64(stats.TotalCount)
	}
	perChapter := avg
	if perChapter == 0 {
		perChapter = defaultAvgHours
	}
	pct := float64(completed) / float64(total) * 100

	return &dto.LearningReportResponse{
		CourseID:               course.CourseID,
		CourseTitle:            course.Title,
		TotalChapters:          int(total),
		CompletedChapters:      completed,
		CompletionPercentage:   round1(pct),
		TotalTimeSpent:         round2(stats.TotalTime),
		AverageTimePerChapter:  round2(avg),
		EstimatedRemainingTime: round2(float64(int(total)-completed) * perChapter),
		LearningSpeed:          speed,
		Advice:                 reportAdvice(pct, speed),
	}, nil
}

// ── 内部方法 ──

func (s *learningService) recommend(ctx context.Context, studentID, courseID, chapterID string) (dto.Recommendation, error) {
	stats, err := s.repo.Progress.Stats(ctx, studentID, courseID)
	if err != nil {
		s.logger.Error("统计学习数据失败", zap.Error(err))
		return dto.Recommendation{}, err
	}

	var current *model.StudentProgress
	p, err := s.repo.Progress.GetByStudentChapter(ctx, studentID, chapterID)
	switch {
	case err == nil:
		current = p
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		s.logger.Error("查询章节进度失败", zap.Error(err))
		return dto.Recommendation{}, err
	}

	return BuildRecommendation(ClassifyLearningSpeed(*stats), current), nil
}

func (s *learningService) chapterState(ctx context.Context, studentID, courseID string) ([]model.Chapter, map[string]bool, error) {
	if _, err := s.repo.Course.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, nil, err
	}

	chapters, err := s.repo.Chapter.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("列出章节失败", zap.Error(err))
		return nil, nil, err
	}
	progress, err := s.repo.Progress.ListByStudentCourse(ctx, studentID, courseID)
	if err != nil {
		s.logger.Error("查询学习进度失败", zap.Error(err))
		return nil, nil, err
	}

	done := make(map[string]bool, len(progress))
	for _, p := range progress {
		if p.Completed {
			done[p.ChapterID] = true
		}
	}
	return chapters, done, nil
}

func reportAdvice(pct float64, speed model.LearningSpeed) []string {
	var advice []string
	switch {
	case pct < 30:
		advice = append(advice, "Focus on completing the basics before moving to advanced topics")
	case pct < 70:
		advice = append(advice, "Great progress! Keep up the momentum")
	default:
		advice = append(advice, "You're almost done! Finish strong")
	}

	switch speed {
	case model.SpeedSlow:
		advice = append(advice,
			"Take your time to understand concepts fully",
			"Review previous chapters if needed",
		)
	case model.SpeedFast:
		advice = append(advice, "Consider exploring advanced topics and additional resources")
	}
	return advice
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
