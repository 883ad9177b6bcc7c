package shared

import (
	"strconv"
	"strings"

	"github.com/dujiao-next/orderdesk/internal/http/response"
	"github.com/dujiao-next/orderdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入的上下文键
const (
	ContextStaffID   = "staff_id"
	ContextStaffRole = "staff_role"
)

// GetCaller 读取当前员工身份，缺失时返回 401。
func GetCaller(c *gin.Context) (service.Caller, bool) {
	value, exists := c.Get(ContextStaffID)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return service.Caller{}, false
	}
	staffID, ok := value.(uint)
	if !ok || staffID == 0 {
		RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return service.Caller{}, false
	}
	return service.Caller{StaffID: staffID, Role: c.GetString(ContextStaffRole)}, true
}

// ParseUintParam 解析路径上的正整数 ID，非法时返回 400。
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		RespondError(c, response.CodeBadRequest, name+" invalid", nil)
		return 0, false
	}
	return uint(id), true
}

// QueryInt 读取整数查询参数，缺失或非法时返回 fallback。
func QueryInt(c *gin.Context, name string, fallback int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
