package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/25Devmaker/coursehub/internal/dto"
	"github.com/25Devmaker/coursehub/internal/service"
	"github.com/25Devmaker/coursehub/pkg/response"
)

const (
	refreshTokenCookie = "refresh_token"
	refreshCookiePath  = "/api/v1/auth"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Signup 学生注册
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Signup(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, result)
}

// AdminSignup 管理员注册
// POST /api/v1/auth/admin-signup
func (h *AuthHandler) AdminSignup(c *gin.Context) {
	var req dto.AdminSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.AdminSignup(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, result)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	setRefreshCookie(c, result.RefreshToken)
	response.OK(c, result)
}

// RefreshToken 刷新 Token，优先读取请求体，其次读取 Cookie
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	token := ""
	if err := c.ShouldBindJSON(&req); err == nil {
		token = req.RefreshToken
	} else if cookie, cerr := c.Cookie(refreshTokenCookie); cerr == nil {
		token = cookie
	}
	if token == "" {
		response.BadRequest(c, 10001, "缺少 refresh_token")
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), token)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	setRefreshCookie(c, result.RefreshToken)
	response.OK(c, result)
}

// Logout 用户登出，注销当前 Access Token 及随附的 Refresh Token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	refresh, _ := c.Cookie(refreshTokenCookie)
	if err := h.authSvc.Logout(c.Request.Context(), bearerToken(c), refresh); err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.SetCookie(refreshTokenCookie, "", -1, refreshCookiePath, "", false, true)
	response.OKMessage(c, "已退出登录")
}

// Me 获取当前用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.authSvc.Me(c.Request.Context(), userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

func setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshTokenCookie, token, 0, refreshCookiePath, "", false, true)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, "邮箱或密码错误")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		response.Unauthorized(c, 11002, "refresh token 无效或已过期")
	case errors.Is(err, service.ErrTokenRevoked):
		response.Unauthorized(c, 11003, "token 已注销")
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 11004, "该邮箱已注册")
	case errors.Is(err, service.ErrUSNExists):
		response.Conflict(c, 11005, "该学号已注册")
	case errors.Is(err, service.ErrRegNoExists):
		response.Conflict(c, 11006, "该工号已注册")
	case errors.Is(err, service.ErrInvalidSignupCode):
		response.Forbidden(c, 11007, "管理员注册码无效")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11008, "用户不存在")
	default:
		respondServerError(c, err)
	}
}
