package models

import (
	"time"
)

// Coupon 优惠券
type Coupon struct {
	ID        uint       `gorm:"primarykey" json:"id"`                            // 主键
	Code      string     `gorm:"uniqueIndex;not null" json:"code"`                // 优惠码
	Discount  Money      `gorm:"type:decimal(20,2);not null" json:"discount"`     // 优惠金额
	StartsAt  *time.Time `gorm:"index" json:"starts_at"`                          // 生效时间
	EndsAt    *time.Time `gorm:"index" json:"ends_at"`                            // 失效时间
	IsActive  bool       `gorm:"index;not null;default:true" json:"is_active"`    // 是否启用
	CreatedAt time.Time  `json:"created_at"`                                      // 创建时间
	UpdatedAt time.Time  `json:"updated_at"`                                      // 更新时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}
