package public

import (
	"context"
	"net/http"
	"strings"

	"github.com/dujiao-next/orderdesk/internal/models"
	"github.com/dujiao-next/orderdesk/internal/payment/sslcommerz"

	"github.com/gin-gonic/gin"
)

const callbackLogValueLimit = 256

type gatewayCallbackFunc func(ctx context.Context, callback sslcommerz.Callback) (*models.Payment, error)

// PaymentSuccessCallback 网关支付成功回调
func (h *Handler) PaymentSuccessCallback(c *gin.Context) {
	h.handleGatewayCallback(c, "success", h.PaymentService.HandleGatewaySuccess, true)
}

// PaymentFailCallback 网关支付失败回调
func (h *Handler) PaymentFailCallback(c *gin.Context) {
	h.handleGatewayCallback(c, "fail", h.PaymentService.HandleGatewayFail, false)
}

// PaymentCancelCallback 网关支付取消回调
func (h *Handler) PaymentCancelCallback(c *gin.Context) {
	h.handleGatewayCallback(c, "cancel", h.PaymentService.HandleGatewayCancel, false)
}

// handleGatewayCallback 回调一律以 302 跳转结束，不返回错误体
func (h *Handler) handleGatewayCallback(c *gin.Context, kind string, handle gatewayCallbackFunc, redirectSuccess bool) {
	form, err := parseCallbackForm(c)
	if err != nil {
		requestLog(c).Warnw("payment_callback_form_invalid", "kind", kind, "error", err)
		c.Redirect(http.StatusFound, h.PaymentService.FailureRedirectURL())
		return
	}
	callback := sslcommerz.ParseCallback(form)
	log := requestLog(c).With("kind", kind, "tran_id", truncateCallbackLogValue(callback.TranID))
	log.Infow("payment_callback_http_received",
		"client_ip", c.ClientIP(),
		"status", truncateCallbackLogValue(callback.Status),
	)

	payment, err := handle(c.Request.Context(), callback)
	if err != nil {
		log.Warnw("payment_callback_handle_failed", "error", err)
		c.Redirect(http.StatusFound, h.PaymentService.FailureRedirectURL())
		return
	}
	if !redirectSuccess || payment == nil {
		c.Redirect(http.StatusFound, h.PaymentService.FailureRedirectURL())
		return
	}
	c.Redirect(http.StatusFound, h.PaymentService.SuccessRedirectURL(payment.TransactionID))
}

func parseCallbackForm(c *gin.Context) (map[string][]string, error) {
	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	if len(c.Request.PostForm) > 0 {
		return c.Request.PostForm, nil
	}
	return c.Request.Form, nil
}

func truncateCallbackLogValue(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) <= callbackLogValueLimit {
		return raw
	}
	return raw[:callbackLogValueLimit] + "...(truncated)"
}
