package admin

import (
	"strings"
	"time"

	"github.com/dujiao-next/orderdesk/internal/http/response"

	"github.com/gin-gonic/gin"
)

// RunCleanup 手动触发一次清理
func (h *Handler) RunCleanup(c *gin.Context) {
	action := strings.TrimSpace(c.Param("action"))
	affected, err := h.CleanupService.Run(c.Request.Context(), action, time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"action":   action,
		"affected": affected,
	})
}
