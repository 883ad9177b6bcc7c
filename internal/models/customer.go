package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer 客户表
type Customer struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(120)" json:"name"`
	Email     string         `gorm:"type:varchar(190);index" json:"email"`
	Phone     string         `gorm:"type:varchar(40);index" json:"phone"`
	Address   string         `gorm:"type:text" json:"address"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}
