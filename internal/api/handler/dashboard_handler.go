package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/25Devmaker/coursehub/internal/service"
	"github.com/25Devmaker/coursehub/pkg/response"
)

// DashboardHandler 看板 HTTP 处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// Student 学生看板
// GET /api/v1/dashboard
func (h *DashboardHandler) Student(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.dashboardSvc.Student(c.Request.Context(), userID)
	if err != nil {
		respondServerError(c, err)
		return
	}

	response.OK(c, result)
}

// Admin 管理端统计看板
// GET /api/v1/admin/dashboard
func (h *DashboardHandler) Admin(c *gin.Context) {
	result, err := h.dashboardSvc.Admin(c.Request.Context())
	if err != nil {
		respondServerError(c, err)
		return
	}

	response.OK(c, result)
}
