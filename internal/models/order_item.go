package models

import (
	"time"
)

// OrderItem 订单项表
type OrderItem struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                 // 主键
	OrderID      uint      `gorm:"index;not null" json:"order_id"`                       // 订单ID
	ProductID    *uint     `gorm:"index" json:"product_id,omitempty"`                    // 商品ID
	ProductName  string    `gorm:"type:varchar(255)" json:"product_name"`                // 商品名称快照
	VariantLabel string    `gorm:"type:varchar(255)" json:"variant_label,omitempty"`     // 规格快照
	Size         string    `gorm:"type:varchar(64)" json:"size,omitempty"`               // 尺寸
	WidthInch    *float64  `json:"width_inch,omitempty"`                                 // 宽（英寸）
	HeightInch   *float64  `json:"height_inch,omitempty"`                                // 高（英寸）
	Quantity     int       `gorm:"not null;default:1" json:"quantity"`                   // 数量
	Price        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`   // 行小计
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`                                           // 更新时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
