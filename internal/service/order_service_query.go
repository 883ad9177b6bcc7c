package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dujiao-next/orderdesk/internal/constants"
	"github.com/dujiao-next/orderdesk/internal/models"
	"github.com/dujiao-next/orderdesk/internal/repository"

	"golang.org/x/sync/errgroup"
)

const (
	defaultOrderPageSize = 20
	maxOrderPageSize     = 100
)

// Caller 发起请求的员工身份
type Caller struct {
	StaffID uint
	Role    string
}

// IsAdmin 是否为管理员
func (c Caller) IsAdmin() bool {
	return strings.EqualFold(c.Role, constants.StaffRoleAdmin)
}

// CanAccess 非管理员只能访问自己负责的订单
func (c Caller) CanAccess(order *models.Order) bool {
	if c.IsAdmin() {
		return true
	}
	return order != nil && order.StaffID != nil && *order.StaffID == c.StaffID
}

// OrderListQuery 订单列表查询参数
type OrderListQuery struct {
	Page       int
	PageSize   int
	FilteredBy string
	SearchBy   string
	Search     string
	SortBy     string
	SortOrder  string
}

// OrderListResult 订单列表结果
type OrderListResult struct {
	Orders     []models.Order `json:"orders"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int64          `json:"total_pages"`
}

// GetOrderByID 获取订单详情
func (s *OrderService) GetOrderByID(_ context.Context, id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderForCaller 员工视角读取订单，越权访问按不存在处理
func (s *OrderService) GetOrderForCaller(ctx context.Context, caller Caller, id uint) (*models.Order, error) {
	order, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(order) {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrdersByCustomer 客户订单列表
func (s *OrderService) GetOrdersByCustomer(_ context.Context, customerID uint, page, pageSize int) (*OrderListResult, error) {
	page, pageSize = normalizePage(page, pageSize)
	orders, total, err := s.orderRepo.ListByCustomer(customerID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	return newOrderListResult(orders, total, page, pageSize), nil
}

// GetAllOrders 员工订单列表，非管理员只能看到自己负责的订单
func (s *OrderService) GetAllOrders(ctx context.Context, caller Caller, query OrderListQuery) (*OrderListResult, error) {
	page, pageSize := normalizePage(query.Page, query.PageSize)
	filter := repository.OrderListFilter{
		Page:      page,
		PageSize:  pageSize,
		Statuses:  resolveBucketStatuses(query.FilteredBy),
		SearchBy:  query.SearchBy,
		Search:    query.Search,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	if !caller.IsAdmin() {
		staffID := caller.StaffID
		filter.StaffID = &staffID
	}

	var (
		orders []models.Order
		total  int64
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.orderRepo.Count(filter)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.orderRepo.List(filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	return newOrderListResult(orders, total, page, pageSize), nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultOrderPageSize
	}
	if pageSize > maxOrderPageSize {
		pageSize = maxOrderPageSize
	}
	return page, pageSize
}

func newOrderListResult(orders []models.Order, total int64, page, pageSize int) *OrderListResult {
	if orders == nil {
		orders = []models.Order{}
	}
	totalPages := int64(0)
	if pageSize > 0 {
		totalPages = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return &OrderListResult{
		Orders:     orders,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
