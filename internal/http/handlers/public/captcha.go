package public

import (
	"github.com/dujiao-next/orderdesk/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetImageCaptcha 获取图片验证码挑战
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	if !h.CaptchaService.Enabled() {
		respondError(c, response.CodeNotFound, "captcha disabled", nil)
		return
	}

	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondError(c, response.CodeInternal, "captcha generate failed", err)
		return
	}

	response.Success(c, challenge)
}
