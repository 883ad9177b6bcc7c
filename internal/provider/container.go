package provider

import (
	"time"

	"github.com/dujiao-next/orderdesk/internal/authz"
	"github.com/dujiao-next/orderdesk/internal/cache"
	"github.com/dujiao-next/orderdesk/internal/config"
	"github.com/dujiao-next/orderdesk/internal/logger"
	"github.com/dujiao-next/orderdesk/internal/models"
	"github.com/dujiao-next/orderdesk/internal/notify"
	"github.com/dujiao-next/orderdesk/internal/queue"
	"github.com/dujiao-next/orderdesk/internal/repository"
	"github.com/dujiao-next/orderdesk/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	// Publisher 业务侧发布器（可能经队列转投）
	Publisher notify.Publisher
	// NotifyDriver worker 侧直连投递驱动
	NotifyDriver notify.Publisher

	// Repositories
	OrderRepo             repository.OrderRepository
	PaymentRepo           repository.PaymentRepository
	TransactionRecordRepo repository.TransactionRecordRepository
	CustomerRepo          repository.CustomerRepository
	CourierRepo           repository.CourierRepository
	StaffRepo             repository.StaffRepository
	CartRepo              repository.CartRepository
	OTPRepo               repository.OTPRepository
	CouponRepo            repository.CouponRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	CaptchaService      *service.CaptchaService
	UploadService       *service.UploadService
	NotificationService *service.NotificationService
	StaffService        *service.StaffService
	CartService         *service.CartService
	OrderService        *service.OrderService
	PaymentService      *service.PaymentService
	CleanupService      *service.CleanupService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initPublishers()

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initPublishers() {
	driver, err := notify.NewDriver(&c.Config.Notify, c.Config.Redis.Prefix)
	if err != nil {
		logger.Errorw("provider_init_notify_driver_failed", "driver", c.Config.Notify.Driver, "error", err)
		driver = notify.NoopPublisher{}
	}
	c.NotifyDriver = driver
	c.Publisher = driver
	if c.Config.Notify.Async && c.QueueClient.Enabled() {
		c.Publisher = notify.NewQueuedPublisher(c.QueueClient, driver)
	}
}

func (c *Container) initRepositories() {
	db := models.DB
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.TransactionRecordRepo = repository.NewTransactionRecordRepository(db)
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.CourierRepo = repository.NewCourierRepository(db)
	c.StaffRepo = repository.NewStaffRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OTPRepo = repository.NewOTPRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config.JWT, c.StaffRepo)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.UploadService = service.NewUploadService(c.Config.Upload)
	c.NotificationService = service.NewNotificationService(c.Publisher)
	c.StaffService = service.NewStaffService(c.StaffRepo, c.NotificationService)
	c.CartService = service.NewCartService(c.CartRepo)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.PaymentRepo,
		c.CustomerRepo,
		c.CourierRepo,
		c.StaffService,
		c.CartService,
		c.UploadService,
		c.NotificationService,
		service.OrderServiceOptions{
			StrictTransitions: c.Config.Order.StrictTransitions,
			PaymentLockTTL:    time.Duration(c.Config.Order.PaymentLockSeconds) * time.Second,
		},
	)
	c.UsePaymentGateway(service.NewSSLCommerzGateway(c.Config.Gateway))
	c.CleanupService = service.NewCleanupService(
		c.CartRepo,
		c.PaymentRepo,
		c.OTPRepo,
		c.CouponRepo,
		c.Config.Cleanup.Retention(),
	)
}

// UsePaymentGateway 以指定网关重建支付服务
func (c *Container) UsePaymentGateway(gateway service.PaymentGateway) {
	c.PaymentService = service.NewPaymentService(
		c.OrderRepo,
		c.PaymentRepo,
		c.TransactionRecordRepo,
		c.OrderService,
		c.NotificationService,
		gateway,
		service.PaymentServiceOptions{
			CallbackBaseURL:          c.Config.Gateway.CallbackBaseURL,
			LandingPageURL:           c.Config.Frontend.LandingPageURL,
			ValidateCallbacks:        c.Config.Gateway.ValidateCallbacks,
			TransactionIDMaxAttempts: c.Config.Order.TransactionIDMaxAttempts,
			GatewayTimeout:           c.Config.Gateway.Timeout(),
		},
	)
}

// Close 释放外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			logger.Warnw("provider_close_publisher_failed", "error", err)
		}
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
