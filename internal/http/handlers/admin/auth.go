package admin

import (
	"strings"

	"github.com/dujiao-next/orderdesk/internal/http/response"

	"github.com/gin-gonic/gin"
)

// LoginRequest 员工登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string                 `json:"token"`
	Staff     map[string]interface{} `json:"staff"`
	ExpiresAt string                 `json:"expires_at"`
}

// StaffLogin 员工登录
func (h *Handler) StaffLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	staff, token, expiresAt, err := h.AuthService.Login(strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, LoginResponse{
		Token: token,
		Staff: map[string]interface{}{
			"id":    staff.ID,
			"name":  staff.Name,
			"email": staff.Email,
			"role":  staff.Role,
		},
		ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}
