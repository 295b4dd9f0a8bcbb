package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/25Devmaker/coursehub/internal/dto"
	"github.com/25Devmaker/coursehub/internal/service"
	"github.com/25Devmaker/coursehub/pkg/response"
)

// ChatHandler 师生消息 HTTP 处理器
type ChatHandler struct {
	chatSvc service.ChatService
}

// NewChatHandler 创建 ChatHandler
func NewChatHandler(chatSvc service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// StudentSend 学生发送消息
// POST /api/v1/chat/messages
func (h *ChatHandler) StudentSend(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.chatSvc.StudentSend(c.Request.Context(), userID, req.Message)
	if err != nil {
		h.handleChatError(c, err)
		return
	}

	response.Created(c, result)
}

// History 学生会话记录；学生只能查看自己的会话
// GET /api/v1/chat/history/:student_id
func (h *ChatHandler) History(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	studentID, ok := pathUUID(c, "student_id")
	if !ok {
		h.handleChatError(c, service.ErrStudentNotFound)
		return
	}

	result, err := h.chatSvc.History(c.Request.Context(), userID, role, studentID)
	if err != nil {
		h.handleChatError(c, err)
		return
	}

	response.OK(c, result)
}

// AdminSend 管理员回复学生
// POST /api/v1/admin/chat/messages
func (h *ChatHandler) AdminSend(c *gin.Context) {
	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AdminSendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.chatSvc.AdminSend(c.Request.Context(), adminID, &req)
	if err != nil {
		h.handleChatError(c, err)
		return
	}

	response.Created(c, result)
}

// AllHistory 全部消息
// GET /api/v1/admin/chat/history
func (h *ChatHandler) AllHistory(c *gin.Context) {
	result, err := h.chatSvc.AllHistory(c.Request.Context())
	if err != nil {
		h.handleChatError(c, err)
		return
	}

	response.OK(c, result)
}

// StudentMessages 学生发出的消息
// GET /api/v1/admin/chat/student-messages
func (h *ChatHandler) StudentMessages(c *gin.Context) {
	result, err := h.chatSvc.StudentMessages(c.Request.Context())
	if err != nil {
		h.handleChatError(c, err)
		return
	}

	response.OK(c, result)
}

// Threads 会话列表
// GET /api/v1/admin/chat/threads
func (h *ChatHandler) Threads(c *gin.Context) {
	result, err := h.chatSvc.Threads(c.Request.Context())
	if err != nil {
		h.handleChatError(c, err)
		return
	}

	response.OK(c, result)
}

// Broadcast 向全部学生群发
// POST /api/v1/admin/chat/broadcast
func (h *ChatHandler) Broadcast(c *gin.Context) {
	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.chatSvc.Broadcast(c.Request.Context(), adminID, req.Message)
	if err != nil {
		h.handleChatError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ChatHandler) handleChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		response.BadRequest(c, 17001, "消息内容不能为空")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 17002, "学生不存在")
	case errors.Is(err, service.ErrChatForbidden):
		response.Forbidden(c, 17003, "无权查看该会话")
	default:
		respondServerError(c, err)
	}
}
