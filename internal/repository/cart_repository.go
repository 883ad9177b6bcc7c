package repository

import (
	"time"

	"github.com/dujiao-next/orderdesk/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	Create(item *models.CartItem) error
	ListByCustomer(customerID uint) ([]models.CartItem, error)
	ClearByCustomer(customerID uint) (int64, error)
	DeleteCreatedBefore(cutoff time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// Create 添加购物车项
func (r *GormCartRepository) Create(item *models.CartItem) error {
	return r.db.Create(item).Error
}

// ListByCustomer 获取客户购物车项
func (r *GormCartRepository) ListByCustomer(customerID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Where("customer_id = ?", customerID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ClearByCustomer 清空客户购物车
func (r *GormCartRepository) ClearByCustomer(customerID uint) (int64, error) {
	result := r.db.Where("customer_id = ?", customerID).Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}

// DeleteCreatedBefore 删除早于截止时间的购物车项
func (r *GormCartRepository) DeleteCreatedBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}
