package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/25Devmaker/coursehub/internal/dto"
	"github.com/25Devmaker/coursehub/internal/service"
	"github.com/25Devmaker/coursehub/pkg/response"
)

const calendarContentType = "text/calendar; charset=utf-8"

// LearningHandler 学习进度、学习建议与学习计划 HTTP 处理器
type LearningHandler struct {
	progressSvc  service.ProgressService
	learningSvc  service.LearningService
	studyPlanSvc service.StudyPlanService
}

// NewLearningHandler 创建 LearningHandler
func NewLearningHandler(progressSvc service.ProgressService, learningSvc service.LearningService, studyPlanSvc service.StudyPlanService) *LearningHandler {
	return &LearningHandler{
		progressSvc:  progressSvc,
		learningSvc:  learningSvc,
		studyPlanSvc: studyPlanSvc,
	}
}

// TrackTime 上报学习时长
// POST /api/v1/progress/track
func (h *LearningHandler) TrackTime(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.TrackTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.progressSvc.TrackTime(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleLearningError(c, err)
		return
	}

	response.OK(c, result)
}

// CompleteChapter 完成章节检查点
// POST /api/v1/progress/chapters/:id/complete
func (h *LearningHandler) CompleteChapter(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	chapterID, ok := pathUUID(c, "id")
	if !ok {
		h.handleLearningError(c, service.ErrChapterNotFound)
		return
	}

	result, err := h.progressSvc.CompleteChapter(c.Request.Context(), userID, chapterID)
	if err != nil {
		h.handleLearningError(c, err)
		return
	}

	response.OK(c, result)
}

// Recommendations 章节学习建议
// GET /api/v1/learning/recommendations/:chapter_id
func (h *LearningHandler) Recommendations(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	chapterID, ok := pathUUID(c, "chapter_id")
	if !ok {
		h.handleLearningError(c, service.ErrChapterNotFound)
		return
	}

	result, err := h.learningSvc.Recommendations(c.Request.Context(), userID, chapterID)
	if err != nil {
		h.handleLearningError(c, err)
		return
	}

	response.OK(c, result)
}

// NextChapter 下一个未完成章节
// GET /api/v1/learning/next-chapter/:course_id
func (h *LearningHandler) NextChapter(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		h.handleLearningError(c, service.ErrCourseNotFound)
		return
	}

	result, err := h.learningSvc.NextChapter(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleLearningError(c, err)
		return
	}

	response.OK(c, result)
}

// Report 课程学习报告
// GET /api/v1/learning/report/:course_id
func (h *LearningHandler) Report(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		h.handleLearningError(c, service.ErrCourseNotFound)
		return
	}

	result, err := h.learningSvc.Report(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleLearningError(c, err)
		return
	}

	response.OK(c, result)
}

// StudyPlan 导出学习计划日历
// GET /api/v1/learning/study-plan/:course_id （允许带 .ics 后缀）
func (h *LearningHandler) StudyPlan(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	courseID, ok := parseUUID(strings.TrimSuffix(c.Param("course_id"), ".ics"))
	if !ok {
		h.handleLearningError(c, service.ErrCourseNotFound)
		return
	}

	body, filename, err := h.studyPlanSvc.ExportICS(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleLearningError(c, err)
		return
	}

	response.Attachment(c, filename, calendarContentType, body)
}

func (h *LearningHandler) handleLearningError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 14001, "课程不存在")
	case errors.Is(err, service.ErrChapterNotFound):
		response.NotFound(c, 14002, "章节不存在")
	case errors.Is(err, service.ErrNotEnrolled):
		response.Forbidden(c, 14003, "尚未通过该课程的选课审批")
	case errors.Is(err, service.ErrNoProgressData):
		response.NotFound(c, 14004, "暂无学习数据")
	default:
		respondServerError(c, err)
	}
}
