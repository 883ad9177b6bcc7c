package models

import "time"

// OTP 一次性验证码
type OTP struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Email     string    `gorm:"type:varchar(190);index;not null" json:"email"`
	Code      string    `gorm:"type:varchar(16);not null" json:"-"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (OTP) TableName() string {
	return "otps"
}
