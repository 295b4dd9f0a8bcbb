package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/25Devmaker/coursehub/internal/dto"
	"github.com/25Devmaker/coursehub/internal/model"
	"github.com/25Devmaker/coursehub/internal/repository"
	"github.com/25Devmaker/coursehub/pkg/scheduler"
)

// ── 聊天模块业务错误 ──

var (
	ErrEmptyMessage    = errors.New("消息内容不能为空")
	ErrStudentNotFound = errors.New("学生不存在")
	ErrChatForbidden   = errors.New("无权查看该会话")
)

// ChatService 学生-管理员聊天业务接口，每个学生一个会话线程
type ChatService interface {
	StudentSend(ctx context.Context, studentID, message string) (*dto.ChatMessageResponse, error)
	AdminSend(ctx context.Context, adminID string, req *dto.AdminSendMessageRequest) (*dto.ChatMessageResponse, error)
	// History 会话历史；学生只能查看自己的会话
	History(ctx context.Context, callerID, callerRole, studentID string) ([]dto.ChatMessageResponse, error)
	AllHistory(ctx context.Context) ([]dto.ChatMessageResponse, error)
	StudentMessages(ctx context.Context) ([]dto.ChatMessageResponse, error)
	Threads(ctx context.Context) ([]dto.ChatThreadResponse, error)
	// Broadcast 向所有学生的会话写入同一条管理员消息
	Broadcast(ctx context.Context, adminID, message string) (*dto.BroadcastResponse, error)
}

type chatService struct {
	repo   *repository.Repository
	clock  scheduler.Clock
	logger *zap.Logger
}

// NewChatService 创建 ChatService 实例
func NewChatService(repo *repository.Repository, clock scheduler.Clock, logger *zap.Logger) ChatService {
	return &chatService{repo: repo, clock: clock, logger: logger}
}

// ────────────────────── Send ──────────────────────

func (s *chatService) StudentSend(ctx context.Context, studentID, message string) (*dto.ChatMessageResponse, error) {
	text := strings.TrimSpace(message)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	m := &model.ChatMessage{
		StudentID: studentID,
		Sender:    model.SenderStudent,
		Message:   text,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Chat.Create(ctx, m); err != nil {
		s.logger.Error("保存聊天消息失败", zap.Error(err))
		return nil, err
	}
	resp := toChatMessageResponse(m)
	return &resp, nil
}

func (s *chatService) AdminSend(ctx context.Context, adminID string, req *dto.AdminSendMessageRequest) (*dto.ChatMessageResponse, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	student, err := s.repo.User.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}
	if student.Role != model.RoleStudent {
		return nil, ErrStudentNotFound
	}

	m := &model.ChatMessage{
		StudentID: student.UserID,
		AdminID:   &adminID,
		Sender:    model.SenderAdmin,
		Message:   text,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Chat.Create(ctx, m); err != nil {
		s.logger.Error("保存聊天消息失败", zap.Error(err))
		return nil, err
	}
	m.Student = student
	resp := toChatMessageResponse(m)
	return &resp, nil
}

// ────────────────────── History ──────────────────────

func (s *chatService) History(ctx context.Context, callerID, callerRole, studentID string) ([]dto.ChatMessageResponse, error) {
	if callerRole != model.RoleAdmin && callerID != studentID {
		return nil, ErrChatForbidden
	}

	list, err := s.repo.Chat.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询聊天记录失败", zap.Error(err))
		return nil, err
	}
	return toChatMessageResponses(list), nil
}

func (s *chatService) AllHistory(ctx context.Context) ([]dto.ChatMessageResponse, error) {
	list, err := s.repo.Chat.ListAll(ctx, "")
	if err != nil {
		s.logger.Error("查询全部聊天记录失败", zap.Error(err))
		return nil, err
	}
	return toChatMessageResponses(list), nil
}

func (s *chatService) StudentMessages(ctx context.Context) ([]dto.ChatMessageResponse, error) {
	list, err := s.repo.Chat.ListAll(ctx, model.SenderStudent)
	if err != nil {
		s.logger.Error("查询学生消息失败", zap.Error(err))
		return nil, err
	}
	return toChatMessageResponses(list), nil
}

func (s *chatService) Threads(ctx context.Context) ([]dto.ChatThreadResponse, error) {
	threads, err := s.repo.Chat.ListThreads(ctx)
	if err != nil {
		s.logger.Error("查询会话列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ChatThreadResponse, 0, len(threads))
	for _, t := range threads {
		result = append(result, dto.ChatThreadResponse{
			StudentID:     t.StudentID,
			StudentName:   t.StudentName,
			LastMessage:   t.LastMessage,
			LastMessageAt: t.LastMessageAt.Format(time.RFC3339),
			MessageCount:  t.MessageCount,
		})
	}
	return result, nil
}

// ────────────────────── Broadcast ──────────────────────

func (s *chatService) Broadcast(ctx context.Context, adminID, message string) (*dto.BroadcastResponse, error) {
	text := strings.TrimSpace(message)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	students, err := s.repo.User.ListByRole(ctx, model.RoleStudent)
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, err
	}

	now := s.clock.Now()
	msgs := make([]model.ChatMessage, 0, len(students))
	for _, st := range students {
		msgs = append(msgs, model.ChatMessage{
			StudentID: st.UserID,
			AdminID:   &adminID,
			Sender:    model.SenderAdmin,
			Message:   text,
			CreatedAt: now,
		})
	}
	if err := s.repo.Chat.BatchCreate(ctx, msgs); err != nil {
		s.logger.Error("群发消息失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("管理员群发消息", zap.String("admin_id", adminID), zap.Int("recipients", len(msgs)))
	return &dto.BroadcastResponse{Recipients: len(msgs)}, nil
}

func toChatMessageResponse(m *model.ChatMessage) dto.ChatMessageResponse {
	resp := dto.ChatMessageResponse{
		ID:        m.MessageID,
		StudentID: m.StudentID,
		AdminID:   m.AdminID,
		Sender:    m.Sender,
		Message:   m.Message,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
	if m.Student != nil {
		resp.StudentName = m.Student.Name
	}
	return resp
}

func toChatMessageResponses(list []model.ChatMessage) []dto.ChatMessageResponse {
	result := make([]dto.ChatMessageResponse, 0, len(list))
	for i := range list {
		result = append(result, toChatMessageResponse(&list[i]))
	}
	return result
}
