package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dujiao-next/orderdesk/internal/config"
	"github.com/dujiao-next/orderdesk/internal/constants"
	"github.com/dujiao-next/orderdesk/internal/logger"
	"github.com/dujiao-next/orderdesk/internal/models"
	"github.com/dujiao-next/orderdesk/internal/payment/sslcommerz"
	"github.com/dujiao-next/orderdesk/internal/repository"

	"go.uber.org/zap"
)

const (
	defaultTransactionIDMaxAttempts = 10
	paymentInsertMaxAttempts        = 3
	defaultGatewayTimeout           = 30 * time.Second
)

// PaymentGateway 托管支付网关
type PaymentGateway interface {
	InitPayment(ctx context.Context, input sslcommerz.InitInput) (*sslcommerz.InitResult, error)
	ValidateTransaction(ctx context.Context, valID string) (*sslcommerz.ValidationResult, error)
}

// SSLCommerzGateway 基于 SSLCommerz 的网关实现
type SSLCommerzGateway struct {
	cfg *sslcommerz.Config
}

// NewSSLCommerzGateway 创建 SSLCommerz 网关
func NewSSLCommerzGateway(cfg config.GatewayConfig) *SSLCommerzGateway {
	return &SSLCommerzGateway{cfg: &sslcommerz.Config{
		StoreID:       strings.TrimSpace(cfg.StoreID),
		StorePassword: strings.TrimSpace(cfg.StorePassword),
		Sandbox:       cfg.Sandbox,
		Currency:      cfg.Currency,
		Timeout:       cfg.Timeout(),
	}}
}

// InitPayment 创建托管支付会话
func (g *SSLCommerzGateway) InitPayment(ctx context.Context, input sslcommerz.InitInput) (*sslcommerz.InitResult, error) {
	return sslcommerz.InitPayment(ctx, g.cfg, input)
}

// ValidateTransaction 校验回调 val_id
func (g *SSLCommerzGateway) ValidateTransaction(ctx context.Context, valID string) (*sslcommerz.ValidationResult, error) {
	return sslcommerz.ValidateTransaction(ctx, g.cfg, valID)
}

// PaymentServiceOptions 支付服务配置
type PaymentServiceOptions struct {
	CallbackBaseURL          string
	LandingPageURL           string
	ValidateCallbacks        bool
	TransactionIDMaxAttempts int
	GatewayTimeout           time.Duration
}

// PaymentService 支付台账服务
type PaymentService struct {
	orderRepo        repository.OrderRepository
	paymentRepo      repository.PaymentRepository
	recordRepo       repository.TransactionRecordRepository
	orderService     *OrderService
	notificationSvc  *NotificationService
	gateway          PaymentGateway
	options          PaymentServiceOptions
	newTransactionID func() string
}

// NewPaymentService 创建支付服务
func NewPaymentService(orderRepo repository.OrderRepository, paymentRepo repository.PaymentRepository, recordRepo repository.TransactionRecordRepository, orderService *OrderService, notificationSvc *NotificationService, gateway PaymentGateway, options PaymentServiceOptions) *PaymentService {
	if options.TransactionIDMaxAttempts <= 0 {
		options.TransactionIDMaxAttempts = defaultTransactionIDMaxAttempts
	}
	if options.GatewayTimeout <= 0 {
		options.GatewayTimeout = defaultGatewayTimeout
	}
	return &PaymentService{
		orderRepo:        orderRepo,
		paymentRepo:      paymentRepo,
		recordRepo:       recordRepo,
		orderService:     orderService,
		notificationSvc:  notificationSvc,
		gateway:          gateway,
		options:          options,
		newTransactionID: newTransactionID,
	}
}

func paymentLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// newTransactionID TX + 时间戳 + 8 位随机数字
func newTransactionID() string {
	return "TX" + time.Now().Format("20060102150405") + randNumeric(8)
}

// CreatePaymentInput 创建支付输入
type CreatePaymentInput struct {
	OrderID       uint
	Method        string
	Amount        models.Money
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// OnlinePaymentInput 在线支付输入
type OnlinePaymentInput struct {
	OrderID       uint
	Amount        models.Money
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// CreatePayment 按支付方式创建支付记录
func (s *PaymentService) CreatePayment(ctx context.Context, input CreatePaymentInput) (*models.Payment, error) {
	method := strings.ToLower(strings.TrimSpace(input.Method))
	if method != constants.PaymentMethodCash && method != constants.PaymentMethodOnline {
		return nil, ErrPaymentMethodInvalid
	}
	switch method {
	case constants.PaymentMethodCash:
		return s.CreateCashPayment(ctx, input.OrderID, input.Amount)
	default:
		return s.CreateOnlinePayment(ctx, OnlinePaymentInput{
			OrderID:       input.OrderID,
			Amount:        input.Amount,
			CustomerName:  input.CustomerName,
			CustomerEmail: input.CustomerEmail,
			CustomerPhone: input.CustomerPhone,
		})
	}
}

// CreateCashPayment 登记现金收款并重新计算订单支付状态
func (s *PaymentService) CreateCashPayment(ctx context.Context, orderID uint, amount models.Money) (*models.Payment, error) {
	if !amount.Decimal.IsPositive() {
		return nil, ErrPaymentAmountInvalid
	}
	log := paymentLogger("order_id", orderID, "method", constants.PaymentMethodCash, "amount", amount.String())
	if _, err := s.loadOrder(orderID); err != nil {
		return nil, err
	}

	paidAt := time.Now()
	payment, err := s.createWithUniqueID(ctx, func(transactionID string) (*models.Payment, error) {
		return &models.Payment{
			TransactionID: transactionID,
			OrderID:       orderID,
			PaymentMethod: constants.PaymentMethodCash,
			Amount:        models.NewMoneyFromDecimal(amount.Decimal),
			IsPaid:        true,
			PaidAt:        &paidAt,
		}, nil
	})
	if err != nil {
		log.Errorw("payment_create_failed", "error", err)
		return nil, err
	}
	log.Infow("payment_cash_created", "transaction_id", payment.TransactionID)

	if err := s.settle(ctx, payment, log); err != nil {
		return nil, err
	}
	return payment, nil
}

// CreateOnlinePayment 调用网关创建托管支付，网关未成功时不落库
func (s *PaymentService) CreateOnlinePayment(ctx context.Context, input OnlinePaymentInput) (*models.Payment, error) {
	if !input.Amount.Decimal.IsPositive() {
		return nil, ErrPaymentAmountInvalid
	}
	if s.gateway == nil {
		return nil, ErrPaymentGatewayRequestFailed
	}
	log := paymentLogger("order_id", input.OrderID, "method", constants.PaymentMethodOnline, "amount", input.Amount.String())
	order, err := s.loadOrder(input.OrderID)
	if err != nil {
		return nil, err
	}
	name := firstNonEmpty(input.CustomerName, order.CustomerName)
	email := firstNonEmpty(input.CustomerEmail, order.CustomerEmail)
	phone := firstNonEmpty(input.CustomerPhone, order.CustomerPhone)

	payment, err := s.createWithUniqueID(ctx, func(transactionID string) (*models.Payment, error) {
		gatewayCtx, cancel := context.WithTimeout(ctx, s.options.GatewayTimeout)
		defer cancel()
		result, err := s.gateway.InitPayment(gatewayCtx, sslcommerz.InitInput{
			TransactionID: transactionID,
			Amount:        input.Amount.String(),
			CustomerName:  name,
			CustomerEmail: email,
			CustomerPhone: phone,
			SuccessURL:    s.callbackURL("success"),
			FailURL:       s.callbackURL("fail"),
			CancelURL:     s.callbackURL("cancel"),
		})
		if err != nil {
			log.Warnw("payment_gateway_init_failed", "transaction_id", transactionID, "error", err)
			return nil, mapGatewayError(err)
		}
		return &models.Payment{
			TransactionID: transactionID,
			OrderID:       order.ID,
			PaymentMethod: constants.PaymentMethodOnline,
			Amount:        models.NewMoneyFromDecimal(input.Amount.Decimal),
			IsPaid:        false,
			PaymentLink:   result.GatewayPageURL,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	log.Infow("payment_online_created", "transaction_id", payment.TransactionID)
	return payment, nil
}

// GenerateUniqueTransactionID 生成未被占用的交易号，唯一索引仍是最终约束
func (s *PaymentService) GenerateUniqueTransactionID(_ context.Context) (string, error) {
	for attempt := 0; attempt < s.options.TransactionIDMaxAttempts; attempt++ {
		candidate := s.newTransactionID()
		exists, err := s.paymentRepo.ExistsByTransactionID(candidate)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrPaymentCreateFailed, err)
		}
		if !exists {
			return candidate, nil
		}
		logger.Debugw("payment_transaction_id_taken", "transaction_id", candidate, "attempt", attempt+1)
	}
	return "", ErrTransactionIDExhausted
}

// GetPaymentByTransactionID 按交易号读取支付记录
func (s *PaymentService) GetPaymentByTransactionID(_ context.Context, transactionID string) (*models.Payment, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, ErrPaymentNotFound
	}
	payment, err := s.paymentRepo.GetByTransactionID(transactionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

// SuccessRedirectURL 支付成功跳转地址，只携带交易号
func (s *PaymentService) SuccessRedirectURL(transactionID string) string {
	return strings.TrimRight(s.options.LandingPageURL, "/") + "/success-payment?transaction=" + url.QueryEscape(transactionID)
}

// FailureRedirectURL 支付失败跳转地址
func (s *PaymentService) FailureRedirectURL() string {
	return strings.TrimRight(s.options.LandingPageURL, "/") + "/failed-payment"
}

// createWithUniqueID 生成交易号并写入，唯一约束冲突时换号重试
func (s *PaymentService) createWithUniqueID(ctx context.Context, build func(transactionID string) (*models.Payment, error)) (*models.Payment, error) {
	for attempt := 0; attempt < paymentInsertMaxAttempts; attempt++ {
		transactionID, err := s.GenerateUniqueTransactionID(ctx)
		if err != nil {
			return nil, err
		}
		payment, err := build(transactionID)
		if err != nil {
			return nil, err
		}
		err = s.paymentRepo.Create(payment)
		if err == nil {
			return payment, nil
		}
		if !repository.IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: %v", ErrPaymentCreateFailed, err)
		}
		logger.Warnw("payment_transaction_id_conflict", "transaction_id", transactionID, "attempt", attempt+1)
	}
	return nil, ErrTransactionIDExhausted
}

// settle 到账后重算订单支付状态并发布事件，重算失败时不发布
func (s *PaymentService) settle(ctx context.Context, payment *models.Payment, log *zap.SugaredLogger) error {
	status, err := s.recalculate(ctx, payment, log)
	if err != nil {
		return err
	}
	_ = s.notificationSvc.Publish(ctx, constants.EventPaymentSettled, map[string]interface{}{
		"order_id":       payment.OrderID,
		"transaction_id": payment.TransactionID,
		"amount":         payment.Amount.String(),
		"is_paid":        payment.IsPaid,
		"payment_status": status,
	})
	return nil
}

// recalculate 重算失败统一归为 ErrOrderUpdateFailed
func (s *PaymentService) recalculate(ctx context.Context, payment *models.Payment, log *zap.SugaredLogger) (string, error) {
	if s.orderService == nil {
		return "", nil
	}
	status, err := s.orderService.RecalculatePaymentStatus(ctx, payment.OrderID)
	if err != nil {
		log.Errorw("payment_status_recalculate_failed", "transaction_id", payment.TransactionID, "error", err)
		if errors.Is(err, ErrOrderUpdateFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrOrderUpdateFailed, err)
	}
	return status, nil
}

func (s *PaymentService) loadOrder(orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *PaymentService) callbackURL(kind string) string {
	return strings.TrimRight(s.options.CallbackBaseURL, "/") + "/api/v1/payment/" + kind
}

// mapGatewayError 请求失败或超时归为请求错误，其余归为响应错误
func mapGatewayError(err error) error {
	if errors.Is(err, sslcommerz.ErrRequestFailed) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrPaymentGatewayRequestFailed, err)
	}
	return fmt.Errorf("%w: %v", ErrPaymentGatewayResponseInvalid, err)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
