package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pkgerrors "github.com/25Devmaker/coursehub/pkg/errors"
	"github.com/25Devmaker/coursehub/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, "user_id")
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, "role")
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// bearerToken 提取 Authorization 头中的 Bearer Token，缺失时返回空串
func bearerToken(c *gin.Context) string {
	const prefix = "Bearer "
	h := c.GetHeader("Authorization")
	if len(h) <= len(prefix) || h[:len(prefix)] != prefix {
		return ""
	}
	return h[len(prefix):]
}

// pathUUID 读取路径中的 UUID 参数，格式非法时返回 false，调用方按资源不存在处理
func pathUUID(c *gin.Context, key string) (string, bool) {
	return parseUUID(c.Param(key))
}

func parseUUID(s string) (string, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// respondServerError 存储暂不可用时返回 503，其余返回 500
func respondServerError(c *gin.Context, err error) {
	if errors.Is(err, pkgerrors.ErrStoreUnavailable) {
		response.ServiceUnavailable(c, "存储服务暂不可用，请稍后重试")
		return
	}
	response.InternalError(c)
}
