package repository

import (
	"errors"
	"strconv"
	"strings"

	"github.com/dujiao-next/orderdesk/internal/constants"
	"github.com/dujiao-next/orderdesk/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	CreateImages(images []models.OrderImage) error
	GetByID(id uint) (*models.Order, error)
	GetByIDForUpdate(id uint) (*models.Order, error)
	ListByCustomer(customerID uint, page, pageSize int) ([]models.Order, int64, error)
	List(filter OrderListFilter) ([]models.Order, error)
	Count(filter OrderListFilter) (int64, error)
	Update(id uint, updates map[string]interface{}) error
	UpdatePaymentStatus(id uint, status string) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// withDetail 订单详情的固定查询计划：每个关联一次查询
func (r *GormOrderRepository) withDetail(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Staff").
		Preload("Courier")
}

// Create 创建订单与订单项，调用方负责包裹事务
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

// CreateImages 批量写入设计稿引用
func (r *GormOrderRepository) CreateImages(images []models.OrderImage) error {
	if len(images) == 0 {
		return nil
	}
	return r.db.Create(&images).Error
}

// GetByID 根据 ID 获取订单详情
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.withDetail(r.db).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDForUpdate 加行锁读取订单（仅订单行，不含关联）
func (r *GormOrderRepository) GetByIDForUpdate(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListByCustomer 获取客户订单列表
func (r *GormOrderRepository) ListByCustomer(customerID uint, page, pageSize int) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Where("customer_id = ?", customerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	listQuery := applyPagination(r.withDetail(query), page, pageSize)
	if err := listQuery.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// List 按过滤条件分页查询订单
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, error) {
	query := r.applyFilter(r.db.Model(&models.Order{}), filter)
	query = applySort(query, orderSortColumns, filter.SortBy, filter.SortOrder)
	query = applyPagination(query, filter.Page, filter.PageSize)

	var orders []models.Order
	if err := query.Preload("Items").Preload("Staff").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count 统计过滤条件下的订单数
func (r *GormOrderRepository) Count(filter OrderListFilter) (int64, error) {
	var total int64
	if err := r.applyFilter(r.db.Model(&models.Order{}), filter).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter OrderListFilter) *gorm.DB {
	if filter.StaffID != nil {
		query = query.Where("staff_id = ?", *filter.StaffID)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}

	search := strings.TrimSpace(filter.Search)
	if search == "" {
		return query
	}
	switch strings.ToLower(strings.TrimSpace(filter.SearchBy)) {
	case constants.OrderSearchByOrderID:
		id, err := strconv.ParseUint(search, 10, 64)
		if err != nil {
			return query.Where("1 = 0")
		}
		query = query.Where("id = ?", uint(id))
	case constants.OrderSearchByCustomerName:
		query = query.Where(containsCondition(r.db, "customer_name"), containsArg(search))
	case constants.OrderSearchByCustomerPhone:
		query = query.Where(containsCondition(r.db, "customer_phone"), containsArg(search))
	case constants.OrderSearchByCustomerEmail:
		query = query.Where(containsCondition(r.db, "customer_email"), containsArg(search))
	}
	return query
}

// Update 按字段更新订单，返回 gorm.ErrRecordNotFound 表示订单不存在
func (r *GormOrderRepository) Update(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	result := r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdatePaymentStatus 更新订单支付状态
func (r *GormOrderRepository) UpdatePaymentStatus(id uint, status string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Update("payment_status", status).Error
}
