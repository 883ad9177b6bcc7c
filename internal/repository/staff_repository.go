package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/dujiao-next/orderdesk/internal/models"

	"gorm.io/gorm"
)

// StaffRepository 员工数据访问接口
type StaffRepository interface {
	Create(staff *models.Staff) error
	GetByID(id uint) (*models.Staff, error)
	GetByEmail(email string) (*models.Staff, error)
	ListActiveIDs(status string) ([]uint, error)
	UpdateStatus(id uint, status string) error
	UpdateLastLogin(id uint, at time.Time) error
	WithTx(tx *gorm.DB) *GormStaffRepository
}

// GormStaffRepository GORM 实现
type GormStaffRepository struct {
	db *gorm.DB
}

// NewStaffRepository 创建员工仓库
func NewStaffRepository(db *gorm.DB) *GormStaffRepository {
	return &GormStaffRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStaffRepository) WithTx(tx *gorm.DB) *GormStaffRepository {
	if tx == nil {
		return r
	}
	return &GormStaffRepository{db: tx}
}

// Create 创建员工
func (r *GormStaffRepository) Create(staff *models.Staff) error {
	return r.db.Create(staff).Error
}

// GetByID 根据 ID 获取员工
func (r *GormStaffRepository) GetByID(id uint) (*models.Staff, error) {
	var staff models.Staff
	if err := r.db.First(&staff, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &staff, nil
}

// GetByEmail 根据邮箱获取员工
func (r *GormStaffRepository) GetByEmail(email string) (*models.Staff, error) {
	var staff models.Staff
	if err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &staff, nil
}

// ListActiveIDs 获取启用员工 ID，status 为空表示不限在线状态
func (r *GormStaffRepository) ListActiveIDs(status string) ([]uint, error) {
	query := r.db.Model(&models.Staff{}).Where("is_active = ?", true)
	if strings.TrimSpace(status) != "" {
		query = query.Where("status = ?", status)
	}
	var ids []uint
	if err := query.Order("id asc").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdateStatus 更新在线状态
func (r *GormStaffRepository) UpdateStatus(id uint, status string) error {
	result := r.db.Model(&models.Staff{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateLastLogin 记录登录时间
func (r *GormStaffRepository) UpdateLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.Staff{}).Where("id = ?", id).Update("last_login_at", at).Error
}
