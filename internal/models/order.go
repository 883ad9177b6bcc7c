package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 定制订单表
type Order struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                             // 主键
	CustomerID        *uint          `gorm:"index" json:"customer_id"`                                         // 客户ID（匿名订单为空）
	CustomerName      string         `gorm:"type:varchar(120);index" json:"customer_name"`                     // 客户姓名快照
	CustomerEmail     string         `gorm:"type:varchar(190);index" json:"customer_email"`                    // 客户邮箱快照
	CustomerPhone     string         `gorm:"type:varchar(40);index" json:"customer_phone"`                     // 客户电话快照
	StaffID           *uint          `gorm:"index" json:"staff_id"`                                            // 负责员工
	BillingAddress    string         `gorm:"type:text" json:"billing_address"`                                 // 账单地址
	AdditionalNotes   string         `gorm:"type:text" json:"additional_notes"`                                // 备注
	FulfillmentMethod string         `gorm:"type:varchar(20);not null" json:"fulfillment_method"`              // 履约方式（online/offline）
	DeliveryMethod    string         `gorm:"type:varchar(20);not null" json:"delivery_method"`                 // 配送方式（shop-pickup/courier）
	PaymentMethod     string         `gorm:"type:varchar(20);not null" json:"payment_method"`                  // 结算意向（online-payment/cod-payment）
	CouponID          *uint          `gorm:"index" json:"coupon_id,omitempty"`                                 // 优惠券ID
	CourierID         *uint          `gorm:"index" json:"courier_id"`                                          // 快递公司ID
	CourierAddress    *string        `gorm:"type:text" json:"courier_address"`                                 // 快递收货地址
	Status            string         `gorm:"type:varchar(40);index;not null" json:"status"`                    // 订单状态
	CurrentStatus     string         `gorm:"type:varchar(255)" json:"current_status"`                          // 当前进度说明
	PaymentStatus     string         `gorm:"type:varchar(20);index;not null" json:"payment_status"`            // 支付状态
	DeliveryDate      *time.Time     `gorm:"index" json:"delivery_date"`                                       // 交付日期
	OrderTotalPrice   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"order_total_price"`   // 订单总价（创建时计算）
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                          // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                          // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                                   // 软删除时间

	Items    []OrderItem  `gorm:"foreignKey:OrderID" json:"items,omitempty"`    // 订单项
	Images   []OrderImage `gorm:"foreignKey:OrderID" json:"images,omitempty"`   // 设计稿
	Payments []Payment    `gorm:"foreignKey:OrderID" json:"payments,omitempty"` // 支付记录
	Staff    *Staff       `gorm:"foreignKey:StaffID" json:"staff,omitempty"`    // 负责员工
	Courier  *Courier     `gorm:"foreignKey:CourierID" json:"courier,omitempty"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
