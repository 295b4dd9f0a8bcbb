package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/25Devmaker/coursehub/internal/service"
	"github.com/25Devmaker/coursehub/pkg/response"
)

// CertificateHandler 结业证书 HTTP 处理器
type CertificateHandler struct {
	certificateSvc service.CertificateService
}

// NewCertificateHandler 创建 CertificateHandler
func NewCertificateHandler(certificateSvc service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificateSvc: certificateSvc}
}

// Download 下载结业证书 PDF
// GET /api/v1/certificates/:course_id
func (h *CertificateHandler) Download(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		h.handleCertificateError(c, service.ErrCourseNotFound)
		return
	}

	file, err := h.certificateSvc.Generate(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleCertificateError(c, err)
		return
	}

	response.Attachment(c, file.Filename, file.ContentType, file.Content)
}

func (h *CertificateHandler) handleCertificateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrIncompleteCourse):
		response.Unprocessable(c, 15001, "尚未完成课程全部章节")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 15002, "课程不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 15003, "用户不存在")
	case errors.Is(err, service.ErrRenderFailure):
		response.Error(c, http.StatusInternalServerError, 15004, "证书生成失败")
	default:
		respondServerError(c, err)
	}
}
