package public

import (
	"strings"

	"github.com/dujiao-next/orderdesk/internal/constants"
	handlershared "github.com/dujiao-next/orderdesk/internal/http/handlers/shared"
	"github.com/dujiao-next/orderdesk/internal/http/response"
	"github.com/dujiao-next/orderdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePayment 客户为订单发起在线支付，现金收款只能由员工登记
func (h *Handler) CreatePayment(c *gin.Context) {
	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req handlershared.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	input := req.ToInput(orderID)
	if !strings.EqualFold(input.Method, constants.PaymentMethodOnline) {
		requestLog(c).Warnw("public_payment_method_rejected", "order_id", orderID, "method", input.Method)
		respondServiceError(c, service.ErrPaymentMethodInvalid)
		return
	}
	payment, err := h.PaymentService.CreatePayment(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, payment)
}

// GetPaymentByTransaction 按交易号查询支付，供支付成功页回查
func (h *Handler) GetPaymentByTransaction(c *gin.Context) {
	transactionID := strings.TrimSpace(c.Param("transaction_id"))
	if transactionID == "" {
		respondError(c, response.CodeBadRequest, "transaction_id invalid", nil)
		return
	}
	payment, err := h.PaymentService.GetPaymentByTransactionID(c.Request.Context(), transactionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, payment)
}
