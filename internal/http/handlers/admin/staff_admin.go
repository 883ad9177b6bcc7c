package admin

import (
	"github.com/dujiao-next/orderdesk/internal/http/response"

	"github.com/gin-gonic/gin"
)

// PresenceRequest 在线状态请求
type PresenceRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdatePresence 更新当前员工在线状态
func (h *Handler) UpdatePresence(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	var req PresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	staff, err := h.StaffService.UpdatePresence(c.Request.Context(), caller.StaffID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, staff)
}
