package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/25Devmaker/coursehub/internal/dto"
	"github.com/25Devmaker/coursehub/internal/model"
	"github.com/25Devmaker/coursehub/internal/repository"
)

// ── 通知模块业务错误 ──

var (
	ErrNotificationNotFound  = errors.New("通知不存在")
	ErrNotificationForbidden = errors.New("无权操作该通知")
)

// unreadListLimit 收件箱单次返回的未读通知上限
const unreadListLimit = 50

// NotificationService 站内通知业务接口
type NotificationService interface {
	ListUnread(ctx context.Context, userID string) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) ListUnread(ctx context.Context, userID string) ([]dto.NotificationResponse, error) {
	list, err := s.repo.Notification.ListUnread(ctx, userID, unreadListLimit)
	if err != nil {
		s.logger.Error("查询未读通知失败", zap.Error(err))
		return nil, err
	}
	return toNotificationResponses(list), nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	n, err := s.repo.Notification.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		s.logger.Error("查询通知失败", zap.Error(err))
		return err
	}
	if n.UserID != userID {
		return ErrNotificationForbidden
	}
	if n.IsRead {
		return nil
	}
	if err := s.repo.Notification.MarkRead(ctx, notificationID); err != nil {
		s.logger.Error("标记通知已读失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.Notification.MarkAllRead(ctx, userID)
	if err != nil {
		s.logger.Error("全部标记已读失败", zap.Error(err))
		return 0, err
	}
	return n, nil
}

func toNotificationResponses(list []model.Notification) []dto.NotificationResponse {
	result := make([]dto.NotificationResponse, 0, len(list))
	for _, n := range list {
		result = append(result, dto.NotificationResponse{
			ID:          n.NotificationID,
			Message:     n.Message,
			Type:        n.Type,
			IsRead:      n.IsRead,
			RelatedType: n.RelatedType,
			RelatedID:   n.RelatedID,
			Metadata:    n.Metadata,
			CreatedAt:   n.CreatedAt.Format(time.RFC3339),
		})
	}
	return result
}
