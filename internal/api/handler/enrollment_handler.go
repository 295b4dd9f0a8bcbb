package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/25Devmaker/coursehub/internal/dto"
	"github.com/25Devmaker/coursehub/internal/service"
	"github.com/25Devmaker/coursehub/pkg/response"
)

// EnrollmentHandler 选课模块 HTTP 处理器
type EnrollmentHandler struct {
	enrollmentSvc service.EnrollmentService
}

// NewEnrollmentHandler 创建 EnrollmentHandler
func NewEnrollmentHandler(enrollmentSvc service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc}
}

// Create 提交选课申请
// POST /api/v1/enrollments
func (h *EnrollmentHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.enrollmentSvc.Create(c.Request.Context(), userID, req.CourseID)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.Created(c, result)
}

// ListMine 我的选课记录
// GET /api/v1/enrollments/me
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.enrollmentSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, result)
}

// List 管理端选课列表
// GET /api/v1/admin/enrollments?status=pending&page=1&page_size=20
func (h *EnrollmentHandler) List(c *gin.Context) {
	var req dto.EnrollmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.enrollmentSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Approve 审批通过
// PUT /api/v1/admin/enrollments/:id/approve
func (h *EnrollmentHandler) Approve(c *gin.Context) {
	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	enrollmentID, ok := pathUUID(c, "id")
	if !ok {
		h.handleEnrollmentError(c, service.ErrEnrollmentNotFound)
		return
	}

	result, err := h.enrollmentSvc.Approve(c.Request.Context(), enrollmentID, adminID)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, result)
}

// Reject 审批拒绝
// PUT /api/v1/admin/enrollments/:id/reject
func (h *EnrollmentHandler) Reject(c *gin.Context) {
	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	enrollmentID, ok := pathUUID(c, "id")
	if !ok {
		h.handleEnrollmentError(c, service.ErrEnrollmentNotFound)
		return
	}

	result, err := h.enrollmentSvc.Reject(c.Request.Context(), enrollmentID, adminID)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, result)
}

// ListCourseStudents 课程已通过学生
// GET /api/v1/admin/courses/:id/students
func (h *EnrollmentHandler) ListCourseStudents(c *gin.Context) {
	courseID, ok := pathUUID(c, "id")
	if !ok {
		h.handleEnrollmentError(c, service.ErrCourseNotFound)
		return
	}

	result, err := h.enrollmentSvc.ListCourseStudents(c.Request.Context(), courseID)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *EnrollmentHandler) handleEnrollmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEnrollmentNotFound):
		response.NotFound(c, 13001, "选课记录不存在")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13002, "课程不存在")
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.Conflict(c, 13003, "已提交过该课程的选课申请")
	case errors.Is(err, service.ErrAlreadyProcessed):
		response.Conflict(c, 13004, "该选课申请已处理")
	case errors.Is(err, service.ErrInvalidTransition):
		response.BadRequest(c, 13005, "不支持的选课状态变更")
	default:
		respondServerError(c, err)
	}
}
