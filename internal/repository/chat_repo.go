package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/25Devmaker/coursehub/internal/model"
)

// ChatThread 管理端会话概览（每个学生一条）
type ChatThread struct {
	StudentID     string
	StudentName   string
	LastMessage   string
	LastMessageAt time.Time
	MessageCount  int64
}

// ChatRepository 聊天消息数据访问接口
type ChatRepository interface {
	Create(ctx context.Context, m *model.ChatMessage) error
	BatchCreate(ctx context.Context, list []model.ChatMessage) error
	ListByStudent(ctx context.Context, studentID string) ([]model.ChatMessage, error)
	// ListAll sender 为空时返回全部消息
	ListAll(ctx context.Context, sender string) ([]model.ChatMessage, error)
	ListThreads(ctx context.Context) ([]ChatThread, error)
}

type chatRepo struct {
	db *gorm.DB
}

// NewChatRepo 创建 ChatRepository 实例
func NewChatRepo(db *gorm.DB) ChatRepository {
	return &chatRepo{db: db}
}

func (r *chatRepo) Create(ctx context.Context, m *model.ChatMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *chatRepo) BatchCreate(ctx context.Context, list []model.ChatMessage) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&list, 200).Error
}

func (r *chatRepo) ListByStudent(ctx context.Context, studentID string) ([]model.ChatMessage, error) {
	var list []model.ChatMessage
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *chatRepo) ListAll(ctx context.Context, sender string) ([]model.ChatMessage, error) {
	var list []model.ChatMessage
	db := r.db.WithContext(ctx).Preload("Student")
	if sender != "" {
		db = db.Where("sender = ?", sender)
	}
	err := db.Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *chatRepo) ListThreads(ctx context.Context) ([]ChatThread, error) {
	var rows []ChatThread
	err := r.db.WithContext(ctx).Raw(`
		SELECT t.student_id, u.name AS student_name, t.message AS last_message,
		       t.created_at AS last_message_at, t.message_count
		FROM (
			SELECT DISTINCT ON (student_id) student_id, message, created_at,
			       COUNT(*) OVER (PARTITION BY student_id) AS message_count
			FROM chat_messages
			ORDER BY student_id, created_at DESC
		) t
		JOIN users u ON u.user_id = t.student_id
		ORDER BY t.created_at DESC`).
		Scan(&rows).Error
	return rows, err
}
