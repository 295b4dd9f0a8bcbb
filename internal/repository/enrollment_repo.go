package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/25Devmaker/coursehub/internal/model"
	pkgerrors "github.com/25Devmaker/coursehub/pkg/errors"
)

// MonthlyCount 按月选课统计
type MonthlyCount struct {
	Month string
	Count int64
}

// CourseCount 按课程统计
type CourseCount struct {
	CourseTitle string
	Count       int64
}

// EnrollmentRepository 选课记录数据访问接口
// 记录不提供删除；状态仅能经 Transition 从 pending 变更
type EnrollmentRepository interface {
	Create(ctx context.Context, e *model.Enrollment) error
	GetByID(ctx context.Context, id string) (*model.Enrollment, error)
	GetByStudentCourse(ctx context.Context, studentID, courseID string) (*model.Enrollment, error)
	ExistsForStudentCourse(ctx context.Context, studentID, courseID string) (bool, error)
	// Transition 以 status = 'pending' 为条件的比较交换更新；记录已非 pending 时返回 ErrStatusConflict
	Transition(ctx context.Context, id, target string, at time.Time, decidedBy *string) error
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error)
	List(ctx context.Context, status string, offset, limit int) ([]model.Enrollment, int64, error)
	ListAll(ctx context.Context, status string) ([]model.Enrollment, error)
	ListApprovedByCourse(ctx context.Context, courseID string) ([]model.Enrollment, error)
	Count(ctx context.Context, status string) (int64, error)
	CountByMonth(ctx context.Context) ([]MonthlyCount, error)
	CountApprovedByCourse(ctx context.Context) ([]CourseCount, error)
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Create(ctx context.Context, e *model.Enrollment) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *enrollmentRepo) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Course").
		Where("enrollment_id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) GetByStudentCourse(ctx context.Context, studentID, courseID string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) ExistsForStudentCourse(ctx context.Context, studentID, courseID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&n).Error
	return n > 0, err
}

func (r *enrollmentRepo) Transition(ctx context.Context, id, target string, at time.Time, decidedBy *string) error {
	updates := map[string]interface{}{
		"status":     target,
		"decided_at": at,
		"decided_by": decidedBy,
	}
	if target == model.EnrollmentApproved {
		updates["approved_at"] = at
	}

	result := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("enrollment_id = ? AND status = ?", id, model.EnrollmentPending).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStatusConflict
	}
	return nil
}

func (r *enrollmentRepo) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Enrollment, error) {
	var list []model.Enrollment
	q := r.db.WithContext(ctx).
		Where("status = ? AND enrolled_at <= ?", model.EnrollmentPending, cutoff).
		Order("enrolled_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("student_id = ?", studentID).
		Order("enrolled_at DESC").
		Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) List(ctx context.Context, status string, offset, limit int) ([]model.Enrollment, int64, error) {
	var list []model.Enrollment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Enrollment{})
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Student").Preload("Course").
		Offset(offset).Limit(limit).
		Order("enrolled_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *enrollmentRepo) ListAll(ctx context.Context, status string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	db := r.db.WithContext(ctx).Preload("Student").Preload("Course")
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("enrolled_at DESC").Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) ListApprovedByCourse(ctx context.Context, courseID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("course_id = ? AND status = ?", courseID, model.EnrollmentApproved).
		Order("approved_at ASC").
		Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) Count(ctx context.Context, status string) (int64, error) {
	var n int64
	db := r.db.WithContext(ctx).Model(&model.Enrollment{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Count(&n).Error
	return n, err
}

func (r *enrollmentRepo) CountByMonth(ctx context.Context) ([]MonthlyCount, error) {
	var rows []MonthlyCount
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Select("to_char(enrolled_at, 'YYYY-MM') AS month, COUNT(*) AS count").
		Group("month").
		Order("month ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *enrollmentRepo) CountApprovedByCourse(ctx context.Context) ([]CourseCount, error) {
	var rows []CourseCount
	err := r.db.WithContext(ctx).
		Table("enrollments e").
		Select("c.title AS course_title, COUNT(*) AS count").
		Joins("JOIN courses c ON c.course_id = e.course_id").
		Where("e.status = ?", model.EnrollmentApproved).
		Group("c.title").
		Order("count DESC, c.title ASC").
		Scan(&rows).Error
	return rows, err
}
