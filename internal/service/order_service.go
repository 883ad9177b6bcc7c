package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/dujiao-next/orderdesk/internal/cache"
	"github.com/dujiao-next/orderdesk/internal/constants"
	"github.com/dujiao-next/orderdesk/internal/logger"
	"github.com/dujiao-next/orderdesk/internal/models"
	"github.com/dujiao-next/orderdesk/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultPaymentLockTTL  = 10 * time.Second
	defaultPaymentLockWait = 5 * time.Second
)

// OrderService 订单工作流服务
type OrderService struct {
	orderRepo       repository.OrderRepository
	paymentRepo     repository.PaymentRepository
	customerRepo    repository.CustomerRepository
	courierRepo     repository.CourierRepository
	staffService    *StaffService
	cartService     *CartService
	uploadService   *UploadService
	notificationSvc *NotificationService
	validate        *validator.Validate
	options         OrderServiceOptions
}

// OrderServiceOptions 订单服务开关
type OrderServiceOptions struct {
	StrictTransitions bool
	PaymentLockTTL    time.Duration
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, paymentRepo repository.PaymentRepository, customerRepo repository.CustomerRepository, courierRepo repository.CourierRepository, staffService *StaffService, cartService *CartService, uploadService *UploadService, notificationSvc *NotificationService, options OrderServiceOptions) *OrderService {
	if options.PaymentLockTTL <= 0 {
		options.PaymentLockTTL = defaultPaymentLockTTL
	}
	return &OrderService{
		orderRepo:       orderRepo,
		paymentRepo:     paymentRepo,
		customerRepo:    customerRepo,
		courierRepo:     courierRepo,
		staffService:    staffService,
		cartService:     cartService,
		uploadService:   uploadService,
		notificationSvc: notificationSvc,
		validate:        validator.New(),
		options:         options,
	}
}

// OrderDraft 订单草稿
type OrderDraft struct {
	CustomerID        *uint
	CustomerName      string `validate:"max=120"`
	CustomerEmail     string `validate:"omitempty,email,max=190"`
	CustomerPhone     string `validate:"max=40"`
	StaffID           *uint
	BillingAddress    string
	AdditionalNotes   string
	FulfillmentMethod string `validate:"omitempty,oneof=online offline"`
	DeliveryMethod    string `validate:"required,oneof=shop-pickup courier"`
	PaymentMethod     string `validate:"required,oneof=online-payment cod-payment"`
	CouponID          *uint
	CourierID         *uint
	CourierAddress    *string
	Status            string
	CurrentStatus     string `validate:"max=255"`
	DeliveryDate      *time.Time
	Items             []OrderItemDraft `validate:"dive"`
}

// OrderItemDraft 订单项草稿，Price 为该行合计
type OrderItemDraft struct {
	ProductID    *uint        `json:"product_id"`
	ProductName  string       `json:"product_name" validate:"max=255"`
	VariantLabel string       `json:"variant_label" validate:"max=255"`
	Size         string       `json:"size" validate:"max=64"`
	WidthInch    *float64     `json:"width_inch" validate:"omitempty,gt=0"`
	HeightInch   *float64     `json:"height_inch" validate:"omitempty,gt=0"`
	Quantity     int          `json:"quantity" validate:"gte=1"`
	Price        models.Money `json:"price"`
}

// UpdateOrderInput 订单更新输入，nil 字段保持不变
type UpdateOrderInput struct {
	Status          *string
	CurrentStatus   *string
	DeliveryDate    *time.Time
	CourierAddress  *string
	AdditionalNotes *string
}

// CreateOrder 员工录入订单
func (s *OrderService) CreateOrder(ctx context.Context, draft OrderDraft, files []*multipart.FileHeader) (*models.Order, error) {
	status := strings.TrimSpace(draft.Status)
	if status == "" {
		status = constants.OrderStatusConsultation
	}
	if !IsValidOrderStatus(status) {
		return nil, ErrOrderStatusInvalid
	}
	draft.Status = status
	if draft.FulfillmentMethod == "" {
		draft.FulfillmentMethod = constants.FulfillmentMethodOffline
	}
	return s.createOrder(ctx, draft, files, constants.EventCreateOrder)
}

// CreateOrderRequest 客户提交订单请求
func (s *OrderService) CreateOrderRequest(ctx context.Context, draft OrderDraft, files []*multipart.FileHeader) (*models.Order, error) {
	draft.Status = constants.OrderStatusRequestReceived
	draft.FulfillmentMethod = constants.FulfillmentMethodOnline
	draft.CurrentStatus = ""
	draft.DeliveryDate = nil
	return s.createOrder(ctx, draft, files, constants.EventCreateOrderRequest)
}

func (s *OrderService) createOrder(ctx context.Context, draft OrderDraft, files []*multipart.FileHeader, event string) (*models.Order, error) {
	log := logger.SW("event_type", event)

	if err := s.validateDraft(&draft); err != nil {
		return nil, err
	}
	if s.uploadService == nil && len(files) > 0 {
		return nil, ErrUploadInvalid
	}

	order := &models.Order{
		CustomerID:        draft.CustomerID,
		CustomerName:      strings.TrimSpace(draft.CustomerName),
		CustomerEmail:     strings.TrimSpace(draft.CustomerEmail),
		CustomerPhone:     strings.TrimSpace(draft.CustomerPhone),
		StaffID:           draft.StaffID,
		BillingAddress:    strings.TrimSpace(draft.BillingAddress),
		AdditionalNotes:   strings.TrimSpace(draft.AdditionalNotes),
		FulfillmentMethod: draft.FulfillmentMethod,
		DeliveryMethod:    draft.DeliveryMethod,
		PaymentMethod:     draft.PaymentMethod,
		CouponID:          draft.CouponID,
		CourierID:         draft.CourierID,
		CourierAddress:    draft.CourierAddress,
		Status:            draft.Status,
		CurrentStatus:     strings.TrimSpace(draft.CurrentStatus),
		PaymentStatus:     constants.OrderPaymentStatusPending,
		DeliveryDate:      draft.DeliveryDate,
	}
	if err := s.resolveCustomer(order); err != nil {
		return nil, err
	}
	if err := s.resolveCourier(order); err != nil {
		return nil, err
	}
	if err := s.resolveStaff(ctx, order); err != nil {
		return nil, err
	}

	items, total := buildOrderItems(draft.Items)
	order.OrderTotalPrice = total

	var scope *UploadScope
	if s.uploadService != nil {
		scope = s.uploadService.NewScope(constants.UploadSceneOrderDesign)
		defer scope.Release()
		if err := scope.Accept(files); err != nil {
			log.Warnw("order_upload_rejected", "files", len(files), "error", err)
			return nil, err
		}
	}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		if err := repo.Create(order, items); err != nil {
			return err
		}
		if scope == nil || len(scope.Files()) == 0 {
			return nil
		}
		images := make([]models.OrderImage, 0, len(scope.Files()))
		for _, file := range scope.Files() {
			images = append(images, models.OrderImage{
				OrderID:  order.ID,
				Name:     file.Name,
				Path:     file.Path,
				Size:     file.Size,
				MimeType: file.MimeType,
			})
		}
		return repo.CreateImages(images)
	})
	if err != nil {
		log.Errorw("order_create_failed", "customer_id", order.CustomerID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrOrderCreateFailed, err)
	}
	if scope != nil {
		scope.Commit()
	}
	log.Infow("order_created",
		"order_id", order.ID,
		"status", order.Status,
		"staff_id", order.StaffID,
		"total", order.OrderTotalPrice.String(),
		"images", len(files),
	)

	s.afterOrderCreated(ctx, order, event)

	created, err := s.orderRepo.GetByID(order.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	if created == nil {
		return nil, ErrOrderNotFound
	}
	return created, nil
}

// afterOrderCreated 清空购物车并发布事件，失败只记录日志
func (s *OrderService) afterOrderCreated(ctx context.Context, order *models.Order, event string) {
	if event == constants.EventCreateOrderRequest && order.CustomerID != nil && s.cartService != nil {
		if removed, err := s.cartService.ClearCart(ctx, *order.CustomerID); err != nil {
			logger.Errorw("order_cart_clear_failed", "order_id", order.ID, "customer_id", *order.CustomerID, "error", err)
		} else {
			logger.Debugw("order_cart_cleared", "order_id", order.ID, "customer_id", *order.CustomerID, "removed", removed)
		}
	}
	_ = s.notificationSvc.Publish(ctx, event, map[string]interface{}{
		"order_id":    order.ID,
		"status":      order.Status,
		"staff_id":    order.StaffID,
		"customer_id": order.CustomerID,
		"total":       order.OrderTotalPrice.String(),
	})
}

func (s *OrderService) validateDraft(draft *OrderDraft) error {
	if draft.CourierAddress != nil && strings.TrimSpace(*draft.CourierAddress) == "" {
		draft.CourierAddress = nil
	}
	if draft.CourierID != nil && *draft.CourierID == 0 {
		draft.CourierID = nil
	}
	if (draft.CourierID == nil) != (draft.CourierAddress == nil) {
		return ErrCourierFieldsMismatch
	}
	if len(draft.Items) == 0 {
		return ErrOrderItemsEmpty
	}
	for _, item := range draft.Items {
		if item.Price.Decimal.IsNegative() {
			return ErrOrderItemPriceInvalid
		}
	}
	if err := s.validate.Struct(draft); err != nil {
		return fmt.Errorf("%w: %v", ErrOrderInvalid, err)
	}
	return nil
}

// resolveCustomer 客户档案覆盖调用方提供的联系方式，查不到时按匿名订单处理
func (s *OrderService) resolveCustomer(order *models.Order) error {
	if order.CustomerID == nil || *order.CustomerID == 0 {
		order.CustomerID = nil
		return nil
	}
	customer, err := s.customerRepo.GetByID(*order.CustomerID)
	if err != nil {
		logger.Warnw("order_customer_resolve_failed", "customer_id", *order.CustomerID, "error", err)
		order.CustomerID = nil
		return nil
	}
	if customer == nil {
		logger.Debugw("order_customer_not_found", "customer_id", *order.CustomerID)
		order.CustomerID = nil
		return nil
	}
	order.CustomerName = customer.Name
	order.CustomerEmail = customer.Email
	order.CustomerPhone = customer.Phone
	return nil
}

func (s *OrderService) resolveCourier(order *models.Order) error {
	if order.CourierID == nil || s.courierRepo == nil {
		return nil
	}
	courier, err := s.courierRepo.GetByID(*order.CourierID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	if courier == nil || !courier.IsActive {
		return ErrCourierNotFound
	}
	return nil
}

// resolveStaff 指定的负责人须为启用员工；未指定时自动分配，仍无人可分配则保持为空
func (s *OrderService) resolveStaff(ctx context.Context, order *models.Order) error {
	if order.StaffID != nil && *order.StaffID != 0 {
		if s.staffService == nil {
			return nil
		}
		_, err := s.staffService.GetActiveStaff(ctx, *order.StaffID)
		return err
	}
	order.StaffID = nil
	if s.staffService == nil {
		return nil
	}
	staff, err := s.staffService.GetRandomStaff(ctx)
	if err != nil {
		logger.Warnw("order_staff_assign_failed", "error", err)
		return nil
	}
	if staff == nil {
		logger.Warnw("order_staff_assign_empty")
		return nil
	}
	order.StaffID = &staff.ID
	return nil
}

func buildOrderItems(drafts []OrderItemDraft) ([]models.OrderItem, models.Money) {
	items := make([]models.OrderItem, 0, len(drafts))
	total := decimal.Zero
	for _, draft := range drafts {
		items = append(items, models.OrderItem{
			ProductID:    draft.ProductID,
			ProductName:  strings.TrimSpace(draft.ProductName),
			VariantLabel: strings.TrimSpace(draft.VariantLabel),
			Size:         strings.TrimSpace(draft.Size),
			WidthInch:    draft.WidthInch,
			HeightInch:   draft.HeightInch,
			Quantity:     draft.Quantity,
			Price:        models.NewMoneyFromDecimal(draft.Price.Decimal),
		})
		total = total.Add(draft.Price.Decimal)
	}
	return items, models.NewMoneyFromDecimal(total)
}

// UpdateOrder 更新订单状态与交付信息
func (s *OrderService) UpdateOrder(ctx context.Context, caller Caller, id uint, input UpdateOrderInput) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !caller.CanAccess(order) {
		return nil, ErrOrderAccessDenied
	}

	updates := map[string]interface{}{}
	if input.Status != nil {
		target := strings.TrimSpace(*input.Status)
		if !IsValidOrderStatus(target) {
			return nil, ErrOrderStatusInvalid
		}
		if s.options.StrictTransitions && !canTransition(order.Status, target) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrOrderStatusTransition, order.Status, target)
		}
		updates["status"] = target
	}
	if input.CurrentStatus != nil {
		updates["current_status"] = strings.TrimSpace(*input.CurrentStatus)
	}
	if input.DeliveryDate != nil {
		updates["delivery_date"] = *input.DeliveryDate
	}
	if input.CourierAddress != nil {
		address := strings.TrimSpace(*input.CourierAddress)
		if (address == "") != (order.CourierID == nil) {
			return nil, ErrCourierFieldsMismatch
		}
		if address != "" {
			updates["courier_address"] = address
		}
	}
	if input.AdditionalNotes != nil {
		updates["additional_notes"] = strings.TrimSpace(*input.AdditionalNotes)
	}
	if len(updates) == 0 {
		return order, nil
	}
	updates["updated_at"] = time.Now()

	if err := s.orderRepo.Update(id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrOrderUpdateFailed, err)
	}
	logger.Infow("order_updated",
		"order_id", id,
		"staff_id", caller.StaffID,
		"from_status", order.Status,
		"fields", len(updates),
	)

	updated, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	if updated == nil {
		return nil, ErrOrderNotFound
	}
	_ = s.notificationSvc.Publish(ctx, constants.EventOrderUpdated, map[string]interface{}{
		"order_id":       updated.ID,
		"status":         updated.Status,
		"current_status": updated.CurrentStatus,
		"staff_id":       updated.StaffID,
	})
	return updated, nil
}

// RecalculatePaymentStatus 按全部已到账支付重新计算订单支付状态
// 同一订单的计算通过 Redis 锁与订单行锁串行化
func (s *OrderService) RecalculatePaymentStatus(ctx context.Context, orderID uint) (string, error) {
	lock, err := cache.AcquireLock(ctx, fmt.Sprintf("order:payment_status:%d", orderID), s.options.PaymentLockTTL, defaultPaymentLockWait)
	if err != nil {
		logger.Warnw("order_payment_status_lock_failed", "order_id", orderID, "error", err)
		return "", fmt.Errorf("%w: %v", ErrOrderUpdateFailed, err)
	}
	defer func() {
		if releaseErr := lock.Release(context.Background()); releaseErr != nil {
			logger.Warnw("order_payment_status_unlock_failed", "order_id", orderID, "error", releaseErr)
		}
	}()

	var status string
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.WithTx(tx).GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		payments, err := s.paymentRepo.WithTx(tx).ListByOrderID(orderID)
		if err != nil {
			return err
		}
		status = aggregatePaymentStatus(order.OrderTotalPrice, payments)
		if isOverpaid(order.OrderTotalPrice, payments) {
			logger.Warnw("order_payment_overpaid",
				"order_id", orderID,
				"total", order.OrderTotalPrice.String(),
				"settled", settledSum(payments).String(),
			)
		}
		if status == order.PaymentStatus {
			return nil
		}
		return s.orderRepo.WithTx(tx).UpdatePaymentStatus(orderID, status)
	})
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrOrderUpdateFailed, err)
	}
	logger.Infow("order_payment_status_recalculated", "order_id", orderID, "payment_status", status)
	return status, nil
}
