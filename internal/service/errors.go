package service

import "errors"

// 输入校验错误
var (
	ErrOrderInvalid          = errors.New("order input invalid")
	ErrCourierFieldsMismatch = errors.New("courier id and courier address must be provided together")
	ErrOrderItemsEmpty       = errors.New("order items empty")
	ErrOrderItemPriceInvalid = errors.New("order item price invalid")
	ErrPaymentAmountInvalid  = errors.New("payment amount invalid")
	ErrPaymentMethodInvalid  = errors.New("payment method invalid")
	ErrOrderStatusInvalid    = errors.New("order status invalid")
	ErrUploadInvalid         = errors.New("upload file invalid")
	ErrUploadTooMany         = errors.New("too many upload files")
	ErrCaptchaInvalid        = errors.New("captcha invalid")
	ErrCleanupActionInvalid  = errors.New("cleanup action invalid")
	ErrStaffStatusInvalid    = errors.New("staff status invalid")
)

// 资源不存在
var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrStaffNotFound   = errors.New("staff not found")
	ErrCourierNotFound = errors.New("courier not found")
)

// 状态冲突
var (
	ErrOrderStatusTransition  = errors.New("order status transition not allowed")
	ErrTransactionIDExhausted = errors.New("transaction id generation exhausted")
	ErrPaymentAlreadySettled  = errors.New("payment already settled")
	ErrOrderAccessDenied      = errors.New("order owned by another staff")
)

// 网关错误
var (
	ErrPaymentGatewayRequestFailed   = errors.New("payment gateway request failed")
	ErrPaymentGatewayResponseInvalid = errors.New("payment gateway response invalid")
	ErrPaymentCallbackInvalid        = errors.New("payment callback invalid")
)

// 持久化错误
var (
	ErrOrderCreateFailed   = errors.New("order create failed")
	ErrOrderFetchFailed    = errors.New("order fetch failed")
	ErrOrderUpdateFailed   = errors.New("order update failed")
	ErrPaymentCreateFailed = errors.New("payment create failed")
	ErrPaymentUpdateFailed = errors.New("payment update failed")
	ErrUploadSaveFailed    = errors.New("upload save failed")
)

// 鉴权错误
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStaffDisabled      = errors.New("staff disabled")
	ErrInvalidToken       = errors.New("invalid token")
)
