package models

import (
	"time"
)

// CartItem 客户购物车项
type CartItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`                  // 主键
	CustomerID uint      `gorm:"index;not null" json:"customer_id"`     // 客户ID
	ProductID  uint      `gorm:"index;not null" json:"product_id"`      // 商品ID
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`    // 数量
	Payload    JSON      `gorm:"type:json" json:"payload,omitempty"`    // 规格/尺寸等附加信息
	CreatedAt  time.Time `gorm:"index" json:"created_at"`               // 创建时间
	UpdatedAt  time.Time `json:"updated_at"`                            // 更新时间
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
