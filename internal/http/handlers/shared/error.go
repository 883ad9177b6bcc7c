package shared

import (
	"errors"

	"github.com/dujiao-next/orderdesk/internal/http/response"
	"github.com/dujiao-next/orderdesk/internal/logger"
	"github.com/dujiao-next/orderdesk/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，带原始错误时记录日志
func RespondError(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		RequestLog(c).Errorw("handler_error", "code", code, "message", msg, "error", err)
	}
	response.Error(c, code, msg)
}

// MappedError 业务错误到接口错误响应的映射规则。
type MappedError struct {
	Target error
	Code   int
}

// ServiceErrorRules 按错误分类映射：校验 400、不存在 404、冲突 409、网关 502
var ServiceErrorRules = []MappedError{
	{Target: service.ErrOrderInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrCourierFieldsMismatch, Code: response.CodeBadRequest},
	{Target: service.ErrOrderItemsEmpty, Code: response.CodeBadRequest},
	{Target: service.ErrOrderItemPriceInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrPaymentAmountInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrPaymentMethodInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrOrderStatusInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrUploadInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrUploadTooMany, Code: response.CodeBadRequest},
	{Target: service.ErrCaptchaInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrCleanupActionInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrStaffStatusInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound},
	{Target: service.ErrPaymentNotFound, Code: response.CodeNotFound},
	{Target: service.ErrStaffNotFound, Code: response.CodeNotFound},
	{Target: service.ErrCourierNotFound, Code: response.CodeNotFound},
	{Target: service.ErrOrderStatusTransition, Code: response.CodeConflict},
	{Target: service.ErrTransactionIDExhausted, Code: response.CodeConflict},
	{Target: service.ErrPaymentAlreadySettled, Code: response.CodeConflict},
	{Target: service.ErrOrderAccessDenied, Code: response.CodeForbidden},
	{Target: service.ErrPaymentGatewayRequestFailed, Code: response.CodeBadGateway},
	{Target: service.ErrPaymentGatewayResponseInvalid, Code: response.CodeBadGateway},
	{Target: service.ErrPaymentCallbackInvalid, Code: response.CodeBadGateway},
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized},
	{Target: service.ErrStaffDisabled, Code: response.CodeUnauthorized},
	{Target: service.ErrInvalidToken, Code: response.CodeUnauthorized},
}

// RespondServiceError 按规则表返回业务错误，未命中时按内部错误处理并记录日志。
func RespondServiceError(c *gin.Context, err error) {
	for _, rule := range ServiceErrorRules {
		if errors.Is(err, rule.Target) {
			if rule.Code >= response.CodeInternal {
				RespondError(c, rule.Code, rule.Target.Error(), err)
				return
			}
			RespondError(c, rule.Code, rule.Target.Error(), nil)
			return
		}
	}
	RespondError(c, response.CodeInternal, "internal error", err)
}
