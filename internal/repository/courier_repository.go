package repository

import (
	"errors"

	"github.com/dujiao-next/orderdesk/internal/models"

	"gorm.io/gorm"
)

// CourierRepository 快递公司数据访问接口
type CourierRepository interface {
	Create(courier *models.Courier) error
	GetByID(id uint) (*models.Courier, error)
	WithTx(tx *gorm.DB) *GormCourierRepository
}

// GormCourierRepository GORM 实现
type GormCourierRepository struct {
	db *gorm.DB
}

// NewCourierRepository 创建快递公司仓库
func NewCourierRepository(db *gorm.DB) *GormCourierRepository {
	return &GormCourierRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCourierRepository) WithTx(tx *gorm.DB) *GormCourierRepository {
	if tx == nil {
		return r
	}
	return &GormCourierRepository{db: tx}
}

// Create 创建快递公司
func (r *GormCourierRepository) Create(courier *models.Courier) error {
	return r.db.Create(courier).Error
}

// GetByID 根据 ID 获取快递公司
func (r *GormCourierRepository) GetByID(id uint) (*models.Courier, error) {
	var courier models.Courier
	if err := r.db.First(&courier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &courier, nil
}
