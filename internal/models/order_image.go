package models

import "time"

// OrderImage 订单设计稿文件
type OrderImage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	OrderID   uint      `gorm:"index;not null" json:"order_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"` // 原始文件名
	Path      string    `gorm:"type:varchar(500);not null" json:"path"` // 存储路径
	Size      int64     `json:"size"`
	MimeType  string    `gorm:"type:varchar(100)" json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (OrderImage) TableName() string {
	return "order_images"
}
