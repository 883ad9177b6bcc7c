package repository

import (
	"time"

	"github.com/dujiao-next/orderdesk/internal/models"

	"gorm.io/gorm"
)

// CouponRepository 优惠券数据访问接口
type CouponRepository interface {
	DeactivateExpired(now time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormCouponRepository
}

// GormCouponRepository GORM 实现
type GormCouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 创建优惠券仓库
func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponRepository) WithTx(tx *gorm.DB) *GormCouponRepository {
	if tx == nil {
		return r
	}
	return &GormCouponRepository{db: tx}
}

// DeactivateExpired 停用已过期但仍启用的优惠券
func (r *GormCouponRepository) DeactivateExpired(now time.Time) (int64, error) {
	result := r.db.Model(&models.Coupon{}).
		Where("is_active = ? AND ends_at IS NOT NULL AND ends_at < ?", true, now).
		Updates(map[string]interface{}{"is_active": false, "updated_at": now})
	return result.RowsAffected, result.Error
}
