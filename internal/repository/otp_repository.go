package repository

import (
	"time"

	"github.com/dujiao-next/orderdesk/internal/models"

	"gorm.io/gorm"
)

// OTPRepository 一次性验证码数据访问接口
type OTPRepository interface {
	DeleteExpired(now time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormOTPRepository
}

// GormOTPRepository GORM 实现
type GormOTPRepository struct {
	db *gorm.DB
}

// NewOTPRepository 创建验证码仓库
func NewOTPRepository(db *gorm.DB) *GormOTPRepository {
	return &GormOTPRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOTPRepository) WithTx(tx *gorm.DB) *GormOTPRepository {
	if tx == nil {
		return r
	}
	return &GormOTPRepository{db: tx}
}

// DeleteExpired 删除已过期验证码
func (r *GormOTPRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", now).Delete(&models.OTP{})
	return result.RowsAffected, result.Error
}
