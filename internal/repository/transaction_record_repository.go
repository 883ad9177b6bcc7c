package repository

import (
	"errors"

	"github.com/dujiao-next/orderdesk/internal/models"

	"gorm.io/gorm"
)

// TransactionRecordRepository 网关流水数据访问接口（只追加）
type TransactionRecordRepository interface {
	Create(record *models.TransactionRecord) error
	GetByValID(valID string) (*models.TransactionRecord, error)
	ListByTransactionID(transactionID string) ([]models.TransactionRecord, error)
	WithTx(tx *gorm.DB) *GormTransactionRecordRepository
}

// GormTransactionRecordRepository GORM 实现
type GormTransactionRecordRepository struct {
	db *gorm.DB
}

// NewTransactionRecordRepository 创建网关流水仓库
func NewTransactionRecordRepository(db *gorm.DB) *GormTransactionRecordRepository {
	return &GormTransactionRecordRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTransactionRecordRepository) WithTx(tx *gorm.DB) *GormTransactionRecordRepository {
	if tx == nil {
		return r
	}
	return &GormTransactionRecordRepository{db: tx}
}

// Create 追加流水
func (r *GormTransactionRecordRepository) Create(record *models.TransactionRecord) error {
	return r.db.Create(record).Error
}

// GetByValID 根据网关校验 ID 获取流水
func (r *GormTransactionRecordRepository) GetByValID(valID string) (*models.TransactionRecord, error) {
	var record models.TransactionRecord
	if err := r.db.Where("val_id = ?", valID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ListByTransactionID 获取交易号对应的全部流水
func (r *GormTransactionRecordRepository) ListByTransactionID(transactionID string) ([]models.TransactionRecord, error) {
	var records []models.TransactionRecord
	if err := r.db.Where("transaction_id = ?", transactionID).Order("id asc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
