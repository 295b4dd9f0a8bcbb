package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/25Devmaker/coursehub/internal/model"
)

// ProgressRepository 学习进度数据访问接口
type ProgressRepository interface {
	GetByStudentChapter(ctx context.Context, studentID, chapterID string) (*model.StudentProgress, error)
	ListByStudentCourse(ctx context.Context, studentID, courseID string) ([]model.StudentProgress, error)
	// AddTime 累加学习时长（小时），记录不存在时创建
	AddTime(ctx context.Context, studentID, courseID, chapterID string, hours float64) error
	// MarkComplete 标记章节完成，记录不存在时创建
	MarkComplete(ctx context.Context, studentID, courseID, chapterID string, at time.Time) error
	Stats(ctx context.Context, studentID, courseID string) (*model.ProgressStats, error)
	CountCompleted(ctx context.Context, studentID, courseID string) (int64, error)
}

type progressRepo struct {
	db *gorm.DB
}

// NewProgressRepo 创建 ProgressRepository 实例
func NewProgressRepo(db *gorm.DB) ProgressRepository {
	return &progressRepo{db: db}
}

var progressConflictKey = []clause.Column{{Name: "student_id"}, {Name: "chapter_id"}}

func (r *progressRepo) GetByStudentChapter(ctx context.Context, studentID, chapterID string) (*model.StudentProgress, error) {
	var p model.StudentProgress
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND chapter_id = ?", studentID, chapterID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *progressRepo) ListByStudentCourse(ctx context.Context, studentID, courseID string) ([]model.StudentProgress, error) {
	var list []model.StudentProgress
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Find(&list).Error
	return list, err
}

func (r *progressRepo) AddTime(ctx context.Context, studentID, courseID, chapterID string, hours float64) error {
	p := model.StudentProgress{
		StudentID: studentID,
		CourseID:  courseID,
		ChapterID: chapterID,
		TimeSpent: hours,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: progressConflictKey,
			DoUpdates: clause.Assignments(map[string]interface{}{
				"time_spent": gorm.Expr("student_progress.time_spent + ?", hours),
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).
		Create(&p).Error
}

func (r *progressRepo) MarkComplete(ctx context.Context, studentID, courseID, chapterID string, at time.Time) error {
	p := model.StudentProgress{
		StudentID:   studentID,
		CourseID:    courseID,
		ChapterID:   chapterID,
		Completed:   true,
		CompletedAt: &at,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: progressConflictKey,
			DoUpdates: clause.Assignments(map[string]interface{}{
				"completed":    true,
				"completed_at": gorm.Expr("COALESCE(student_progress.completed_at, ?)", at),
				"updated_at":   gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).
		Create(&p).Error
}

func (r *progressRepo) Stats(ctx context.Context, studentID, courseID string) (*model.ProgressStats, error) {
	var stats model.ProgressStats
	err := r.db.WithContext(ctx).
		Model(&model.StudentProgress{}).
		Select("COALESCE(SUM(time_spent), 0) AS total_time, "+
			"COUNT(*) FILTER (WHERE completed) AS completed_count, "+
			"COUNT(*) AS total_count").
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *progressRepo) CountCompleted(ctx context.Context, studentID, courseID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.StudentProgress{}).
		Where("student_id = ? AND course_id = ? AND completed = ?", studentID, courseID, true).
		Count(&n).Error
	return n, err
}
