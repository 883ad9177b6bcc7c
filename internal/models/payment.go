package models

import (
	"time"
)

// Payment 支付记录
// 交易号全局唯一，由唯一索引兜底
type Payment struct {
	ID            uint       `gorm:"primarykey" json:"id"`                                        // 主键
	TransactionID string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_id"` // 交易号
	OrderID       uint       `gorm:"index;not null" json:"order_id"`                              // 订单ID
	PaymentMethod string     `gorm:"type:varchar(20);not null" json:"payment_method"`             // 支付方式（cash/online）
	Amount        Money      `gorm:"type:decimal(20,2);not null" json:"amount"`                   // 金额
	IsPaid        bool       `gorm:"index;not null;default:false" json:"is_paid"`                 // 是否已到账
	PaymentLink   string     `gorm:"type:text" json:"payment_link,omitempty"`                     // 网关托管支付页
	PaidAt        *time.Time `gorm:"index" json:"paid_at"`                                        // 到账时间
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt     time.Time  `json:"updated_at"`                                                  // 更新时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
