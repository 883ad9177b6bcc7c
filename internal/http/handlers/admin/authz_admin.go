package admin

import (
	"github.com/dujiao-next/orderdesk/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListRoles 列出授权角色
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "list roles failed", err)
		return
	}
	response.Success(c, roles)
}

// GetRolePolicies 查询角色策略
func (h *Handler) GetRolePolicies(c *gin.Context) {
	policies, err := h.AuthzService.GetRolePolicies(c.Param("role"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "role invalid", err)
		return
	}
	response.Success(c, policies)
}
