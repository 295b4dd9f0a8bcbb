package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Course       CourseRepository
	Chapter      ChapterRepository
	Enrollment   EnrollmentRepository
	Progress     ProgressRepository
	Notification NotificationRepository
	Chat         ChatRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Course:       NewCourseRepo(db),
		Chapter:      NewChapterRepo(db),
		Enrollment:   NewEnrollmentRepo(db),
		Progress:     NewProgressRepo(db),
		Notification: NewNotificationRepo(db),
		Chat:         NewChatRepo(db),
		db:           db,
	}
}

// Transaction 在单个数据库事务中执行 fn，fn 内须使用传入的 tx 聚合
// 未绑定数据库的聚合（内存实现）直接以自身执行
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
