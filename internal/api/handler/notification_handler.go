package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/25Devmaker/coursehub/internal/service"
	"github.com/25Devmaker/coursehub/pkg/response"
)

// NotificationHandler 站内通知 HTTP 处理器
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// ListUnread 未读通知
// GET /api/v1/notifications
func (h *NotificationHandler) ListUnread(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.notificationSvc.ListUnread(c.Request.Context(), userID)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, result)
}

// MarkRead 标记单条已读
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	notificationID, ok := pathUUID(c, "id")
	if !ok {
		h.handleNotificationError(c, service.ErrNotificationNotFound)
		return
	}

	if err := h.notificationSvc.MarkRead(c.Request.Context(), userID, notificationID); err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OKMessage(c, "已标记为已读")
}

// MarkAllRead 全部标记已读
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	n, err := h.notificationSvc.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, gin.H{"updated": n})
}

func (h *NotificationHandler) handleNotificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotificationNotFound):
		response.NotFound(c, 16001, "通知不存在")
	case errors.Is(err, service.ErrNotificationForbidden):
		response.Forbidden(c, 16002, "无权操作该通知")
	default:
		respondServerError(c, err)
	}
}
