package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/25Devmaker/coursehub/internal/model"
)

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	List(ctx context.Context) ([]model.Course, error)
	Count(ctx context.Context) (int64, error)
}

// ChapterRepository 章节数据访问接口
type ChapterRepository interface {
	Create(ctx context.Context, chapter *model.Chapter) error
	GetByID(ctx context.Context, id string) (*model.Chapter, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.Chapter, error)
	CountByCourse(ctx context.Context, courseID string) (int64, error)
	MaxChapterNumber(ctx context.Context, courseID string) (int, error)
}

// ── Course Repository 实现 ──

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	if err := r.db.WithContext(ctx).Where("course_id = ?", id).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

func (r *courseRepo) List(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).Order("created_at ASC, title ASC").Find(&courses).Error
	return courses, err
}

func (r *courseRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Course{}).Count(&n).Error
	return n, err
}

// ── Chapter Repository 实现 ──

type chapterRepo struct {
	db *gorm.DB
}

// NewChapterRepo 创建 ChapterRepository 实例
func NewChapterRepo(db *gorm.DB) ChapterRepository {
	return &chapterRepo{db: db}
}

func (r *chapterRepo) Create(ctx context.Context, chapter *model.Chapter) error {
	return r.db.WithContext(ctx).Create(chapter).Error
}

func (r *chapterRepo) GetByID(ctx context.Context, id string) (*model.Chapter, error) {
	var chapter model.Chapter
	if err := r.db.WithContext(ctx).Where("chapter_id = ?", id).First(&chapter).Error; err != nil {
		return nil, err
	}
	return &chapter, nil
}

func (r *chapterRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Chapter, error) {
	var chapters []model.Chapter
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("chapter_number ASC").
		Find(&chapters).Error
	return chapters, err
}

func (r *chapterRepo) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Chapter{}).Where("course_id = ?", courseID).Count(&n).Error
	return n, err
}

func (r *chapterRepo) MaxChapterNumber(ctx context.Context, courseID string) (int, error) {
	var n int
	err := r.db.WithContext(ctx).
		Model(&model.Chapter{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(chapter_number), 0)").
		Scan(&n).Error
	return n, err
}
