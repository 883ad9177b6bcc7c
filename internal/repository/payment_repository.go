package repository

import (
	"errors"
	"time"

	"github.com/dujiao-next/orderdesk/internal/models"

	"gorm.io/gorm"
)

// PaymentRepository 支付数据访问接口
type PaymentRepository interface {
	Create(payment *models.Payment) error
	GetByTransactionID(transactionID string) (*models.Payment, error)
	ExistsByTransactionID(transactionID string) (bool, error)
	ListByOrderID(orderID uint) ([]models.Payment, error)
	UpdatePaid(id uint, isPaid bool, paidAt *time.Time) error
	DeleteUnpaidCreatedBefore(cutoff time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormPaymentRepository
}

// GormPaymentRepository GORM 实现
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付仓库
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) *GormPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Create 创建支付记录，交易号冲突时返回唯一约束错误
func (r *GormPaymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// GetByTransactionID 根据交易号获取支付记录
func (r *GormPaymentRepository) GetByTransactionID(transactionID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.Where("transaction_id = ?", transactionID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// ExistsByTransactionID 判断交易号是否已被占用
func (r *GormPaymentRepository) ExistsByTransactionID(transactionID string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Payment{}).Where("transaction_id = ?", transactionID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByOrderID 获取订单全部支付记录
func (r *GormPaymentRepository) ListByOrderID(orderID uint) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.Where("order_id = ?", orderID).Order("id asc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// UpdatePaid 更新到账标记
func (r *GormPaymentRepository) UpdatePaid(id uint, isPaid bool, paidAt *time.Time) error {
	return r.db.Model(&models.Payment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_paid": isPaid,
		"paid_at": paidAt,
	}).Error
}

// DeleteUnpaidCreatedBefore 删除早于截止时间的未到账支付
func (r *GormPaymentRepository) DeleteUnpaidCreatedBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("is_paid = ? AND created_at < ?", false, cutoff).Delete(&models.Payment{})
	return result.RowsAffected, result.Error
}
