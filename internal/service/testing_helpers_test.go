package service

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/dujiao-next/orderdesk/internal/config"
	"github.com/dujiao-next/orderdesk/internal/constants"
	"github.com/dujiao-next/orderdesk/internal/models"
	"github.com/dujiao-next/orderdesk/internal/payment/sslcommerz"
	"github.com/dujiao-next/orderdesk/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type serviceTestEnv struct {
	db        *gorm.DB
	uploadDir string
	publisher *recordingPublisher
	gateway   *fakeGateway

	orderRepo   *repository.GormOrderRepository
	paymentRepo *repository.GormPaymentRepository
	recordRepo  *repository.GormTransactionRecordRepository
	staffRepo   *repository.GormStaffRepository
	cartRepo    *repository.GormCartRepository

	notifications *NotificationService
	staff         *StaffService
	uploads       *UploadService
	orders        *OrderService
	payments      *PaymentService
	cleanup       *CleanupService
}

func setupServiceTest(t *testing.T) *serviceTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	env := &serviceTestEnv{
		db:          db,
		uploadDir:   t.TempDir(),
		publisher:   &recordingPublisher{},
		gateway:     &fakeGateway{},
		orderRepo:   repository.NewOrderRepository(db),
		paymentRepo: repository.NewPaymentRepository(db),
		recordRepo:  repository.NewTransactionRecordRepository(db),
		staffRepo:   repository.NewStaffRepository(db),
		cartRepo:    repository.NewCartRepository(db),
	}
	env.notifications = NewNotificationService(env.publisher)
	env.staff = NewStaffService(env.staffRepo, env.notifications)
	env.uploads = NewUploadService(config.UploadConfig{
		Dir:               env.uploadDir,
		MaxSize:           1 << 20,
		MaxFiles:          5,
		AllowedTypes:      []string{"image/png"},
		AllowedExtensions: []string{".png"},
	})
	env.orders = NewOrderService(
		env.orderRepo,
		env.paymentRepo,
		repository.NewCustomerRepository(db),
		repository.NewCourierRepository(db),
		env.staff,
		NewCartService(env.cartRepo),
		env.uploads,
		env.notifications,
		OrderServiceOptions{StrictTransitions: true},
	)
	env.payments = NewPaymentService(
		env.orderRepo,
		env.paymentRepo,
		env.recordRepo,
		env.orders,
		env.notifications,
		env.gateway,
		PaymentServiceOptions{
			CallbackBaseURL: "https://api.example.com",
			LandingPageURL:  "https://shop.example.com/",
			GatewayTimeout:  time.Second,
		},
	)
	env.cleanup = NewCleanupService(
		env.cartRepo,
		env.paymentRepo,
		repository.NewOTPRepository(db),
		repository.NewCouponRepository(db),
		24*time.Hour,
	)
	return env
}

func mustCreateCustomer(t *testing.T, db *gorm.DB, name string) models.Customer {
	t.Helper()
	customer := models.Customer{
		Name:  name,
		Email: fmt.Sprintf("%s@example.com", name),
		Phone: "01700000000",
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	return customer
}

func mustCreateStaff(t *testing.T, db *gorm.DB, email, role, status string, active bool) models.Staff {
	t.Helper()
	staff := models.Staff{
		Name:         email,
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
		Status:       status,
		IsActive:     true,
	}
	if err := db.Create(&staff).Error; err != nil {
		t.Fatalf("create staff failed: %v", err)
	}
	if !active {
		if err := db.Model(&staff).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate staff failed: %v", err)
		}
		staff.IsActive = false
	}
	return staff
}

func mustMoney(t *testing.T, raw string) models.Money {
	t.Helper()
	money, err := models.NewMoneyFromString(raw)
	if err != nil {
		t.Fatalf("parse money %s failed: %v", raw, err)
	}
	return money
}

func testDraft(t *testing.T, prices ...string) OrderDraft {
	t.Helper()
	items := make([]OrderItemDraft, 0, len(prices))
	for i, price := range prices {
		items = append(items, OrderItemDraft{
			ProductName: fmt.Sprintf("Canvas %d", i+1),
			Size:        "12x18",
			Quantity:    1,
			Price:       mustMoney(t, price),
		})
	}
	return OrderDraft{
		CustomerName:   "Walk-in",
		CustomerPhone:  "01800000000",
		DeliveryMethod: constants.DeliveryMethodShopPickup,
		PaymentMethod:  constants.OrderPaymentMethodCOD,
		Items:          items,
	}
}

// buildFileHeaders 经 multipart 编解码得到可 Open 的文件头
func buildFileHeaders(t *testing.T, names ...string) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, name := range names {
		part, err := writer.CreateFormFile("design_files", name)
		if err != nil {
			t.Fatalf("create form file failed: %v", err)
		}
		if _, err := part.Write(append(append([]byte{}, pngSignature...), []byte(name)...)); err != nil {
			t.Fatalf("write form file failed: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer failed: %v", err)
	}
	form, err := multipart.NewReader(&body, writer.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read multipart form failed: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["design_files"]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count(event string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e == event {
			n++
		}
	}
	return n
}

type fakeGateway struct {
	mu          sync.Mutex
	initErr     error
	validation  *sslcommerz.ValidationResult
	validateErr error
	initCalls   []sslcommerz.InitInput
}

func (g *fakeGateway) InitPayment(_ context.Context, input sslcommerz.InitInput) (*sslcommerz.InitResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initCalls = append(g.initCalls, input)
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &sslcommerz.InitResult{
		Status:         sslcommerz.StatusSuccess,
		GatewayPageURL: "https://sandbox.sslcommerz.com/pay/" + input.TransactionID,
	}, nil
}

func (g *fakeGateway) ValidateTransaction(_ context.Context, valID string) (*sslcommerz.ValidationResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.validateErr != nil {
		return nil, g.validateErr
	}
	if g.validation == nil {
		return nil, fmt.Errorf("%w: no validation stub for %s", sslcommerz.ErrValidationFailed, valID)
	}
	return g.validation, nil
}
