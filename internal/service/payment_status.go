package service

import (
	"github.com/dujiao-next/orderdesk/internal/constants"
	"github.com/dujiao-next/orderdesk/internal/models"

	"github.com/shopspring/decimal"
)

// settledSum 已到账金额合计
func settledSum(payments []models.Payment) models.Money {
	total := decimal.Zero
	for _, payment := range payments {
		if !payment.IsPaid {
			continue
		}
		total = total.Add(payment.Amount.Decimal)
	}
	return models.NewMoneyFromDecimal(total)
}

// aggregatePaymentStatus 根据已到账合计推导订单支付状态
// 合计等于订单总价为 paid，介于 0 与总价之间为 partial，其余（含超付）为 pending
func aggregatePaymentStatus(total models.Money, payments []models.Payment) string {
	sum := settledSum(payments)
	if sum.Equal(total) {
		return constants.OrderPaymentStatusPaid
	}
	if sum.Decimal.GreaterThan(decimal.Zero) && sum.Decimal.LessThan(total.Decimal) {
		return constants.OrderPaymentStatusPartial
	}
	return constants.OrderPaymentStatusPending
}

// isOverpaid 已到账合计超过总价
func isOverpaid(total models.Money, payments []models.Payment) bool {
	return settledSum(payments).Decimal.GreaterThan(total.Decimal.Round(2))
}
