package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/25Devmaker/coursehub/internal/service"
	"github.com/25Devmaker/coursehub/pkg/response"
)

// UserHandler 用户管理 HTTP 处理器（管理端）
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListStudents 学生列表
// GET /api/v1/admin/students
func (h *UserHandler) ListStudents(c *gin.Context) {
	result, err := h.userSvc.ListStudents(c.Request.Context())
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, result)
}

// StudentProgress 学生各课程学习进度
// GET /api/v1/admin/students/:id/progress
func (h *UserHandler) StudentProgress(c *gin.Context) {
	studentID, ok := pathUUID(c, "id")
	if !ok {
		h.handleUserError(c, service.ErrStudentNotFound)
		return
	}

	result, err := h.userSvc.StudentProgress(c.Request.Context(), studentID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteAccount 注销当前管理员账号
// DELETE /api/v1/admin/account
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.userSvc.DeleteAdminAccount(c.Request.Context(), adminID); err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OKMessage(c, "账号已注销")
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 18001, "学生不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 18002, "用户不存在")
	default:
		respondServerError(c, err)
	}
}
