package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/25Devmaker/coursehub/internal/dto"
	"github.com/25Devmaker/coursehub/internal/service"
	"github.com/25Devmaker/coursehub/pkg/response"
)

// CourseHandler 课程与章节 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// List 课程列表
// GET /api/v1/courses
func (h *CourseHandler) List(c *gin.Context) {
	result, err := h.courseSvc.List(c.Request.Context())
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, result)
}

// Create 创建课程
// POST /api/v1/admin/courses
func (h *CourseHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.courseSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, result)
}

// Update 更新课程
// PUT /api/v1/admin/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	courseID, ok := pathUUID(c, "id")
	if !ok {
		h.handleCourseError(c, service.ErrCourseNotFound)
		return
	}

	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.courseSvc.Update(c.Request.Context(), courseID, &req, userID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, result)
}

// AddChapter 新增章节
// POST /api/v1/admin/courses/:id/chapters
func (h *CourseHandler) AddChapter(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	courseID, ok := pathUUID(c, "id")
	if !ok {
		h.handleCourseError(c, service.ErrCourseNotFound)
		return
	}

	var req dto.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.courseSvc.AddChapter(c.Request.Context(), courseID, &req, userID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, result)
}

// ListChapters 课程章节列表
// GET /api/v1/admin/courses/:id/chapters
func (h *CourseHandler) ListChapters(c *gin.Context) {
	courseID, ok := pathUUID(c, "id")
	if !ok {
		h.handleCourseError(c, service.ErrCourseNotFound)
		return
	}

	result, err := h.courseSvc.ListChapters(c.Request.Context(), courseID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, result)
}

// ViewCourse 学生查看课程及章节完成情况
// GET /api/v1/courses/:id
func (h *CourseHandler) ViewCourse(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	courseID, ok := pathUUID(c, "id")
	if !ok {
		h.handleCourseError(c, service.ErrCourseNotFound)
		return
	}

	result, err := h.courseSvc.ViewCourse(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, result)
}

// ViewChapter 学生查看章节
// GET /api/v1/chapters/:id
func (h *CourseHandler) ViewChapter(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	chapterID, ok := pathUUID(c, "id")
	if !ok {
		h.handleCourseError(c, service.ErrChapterNotFound)
		return
	}

	result, err := h.courseSvc.ViewChapter(c.Request.Context(), userID, chapterID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 12001, "课程不存在")
	case errors.Is(err, service.ErrChapterNotFound):
		response.NotFound(c, 12002, "章节不存在")
	case errors.Is(err, service.ErrNotEnrolled):
		response.Forbidden(c, 12003, "尚未通过该课程的选课审批")
	default:
		respondServerError(c, err)
	}
}
