package shared

import (
	"strings"

	"github.com/dujiao-next/orderdesk/internal/models"
	"github.com/dujiao-next/orderdesk/internal/service"
)

// PaymentRequest 创建支付请求
type PaymentRequest struct {
	PaymentMethod string       `json:"payment_method" binding:"required"`
	Amount        models.Money `json:"amount"`
	CustomerName  string       `json:"customer_name"`
	CustomerEmail string       `json:"customer_email"`
	CustomerPhone string       `json:"customer_phone"`
}

// ToInput 转换为 service 层输入
func (r PaymentRequest) ToInput(orderID uint) service.CreatePaymentInput {
	return service.CreatePaymentInput{
		OrderID:       orderID,
		Method:        strings.TrimSpace(r.PaymentMethod),
		Amount:        r.Amount,
		CustomerName:  strings.TrimSpace(r.CustomerName),
		CustomerEmail: strings.TrimSpace(r.CustomerEmail),
		CustomerPhone: strings.TrimSpace(r.CustomerPhone),
	}
}
