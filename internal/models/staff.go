package models

import (
	"time"

	"gorm.io/gorm"
)

// Staff 员工表
type Staff struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"type:varchar(120);not null" json:"name"`
	Email        string         `gorm:"type:varchar(190);uniqueIndex;not null" json:"email"`
	Phone        string         `gorm:"type:varchar(40)" json:"phone"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         string         `gorm:"type:varchar(20);index;not null" json:"role"`   // admin / staff
	Status       string         `gorm:"type:varchar(20);index;not null" json:"status"` // online / offline
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time     `json:"last_login_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Staff) TableName() string {
	return "staff"
}
