package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dujiao-next/orderdesk/internal/constants"
	"github.com/dujiao-next/orderdesk/internal/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func countOrders(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	return count
}

func countStoredFiles(t *testing.T, dir string) int {
	t.Helper()
	count := 0
	err := filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			count++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk upload dir failed: %v", err)
	}
	return count
}

func TestCreateOrderRequestPricesAndDefaults(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	order, err := env.orders.CreateOrderRequest(ctx, testDraft(t, "500", "1500"), nil)
	if err != nil {
		t.Fatalf("create order request failed: %v", err)
	}
	if !order.OrderTotalPrice.Equal(mustMoney(t, "2000")) {
		t.Fatalf("expected total 2000, got %s", order.OrderTotalPrice.String())
	}
	if order.Status != constants.OrderStatusRequestReceived {
		t.Fatalf("unexpected status: %s", order.Status)
	}
	if order.PaymentStatus != constants.OrderPaymentStatusPending {
		t.Fatalf("unexpected payment status: %s", order.PaymentStatus)
	}
	if order.FulfillmentMethod != constants.FulfillmentMethodOnline {
		t.Fatalf("unexpected fulfillment method: %s", order.FulfillmentMethod)
	}
	if order.CourierID != nil || order.CourierAddress != nil {
		t.Fatalf("courier fields should be empty: %+v %+v", order.CourierID, order.CourierAddress)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	if env.publisher.count(constants.EventCreateOrderRequest) != 1 {
		t.Fatalf("expected create-order-request event")
	}
}

func TestCreateOrderTotalIsExactSum(t *testing.T) {
	env := setupServiceTest(t)

	order, err := env.orders.CreateOrder(context.Background(), testDraft(t, "0.10", "0.20", "999.70"), nil)
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.OrderTotalPrice.String() != "1000.00" {
		t.Fatalf("expected 1000.00, got %s", order.OrderTotalPrice.String())
	}
	if order.Status != constants.OrderStatusConsultation {
		t.Fatalf("expected default status consultation, got %s", order.Status)
	}
	if env.publisher.count(constants.EventCreateOrder) != 1 {
		t.Fatalf("expected create-order event")
	}
}

func TestCreateOrderRejectsOneSidedCourier(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	courier := models.Courier{Name: "Pathao", IsActive: true}
	if err := env.db.Create(&courier).Error; err != nil {
		t.Fatalf("create courier failed: %v", err)
	}
	address := "House 12, Road 4, Dhanmondi"

	onlyID := testDraft(t, "100")
	onlyID.DeliveryMethod = constants.DeliveryMethodCourier
	onlyID.CourierID = &courier.ID
	if _, err := env.orders.CreateOrderRequest(ctx, onlyID, nil); !errors.Is(err, ErrCourierFieldsMismatch) {
		t.Fatalf("expected courier mismatch, got %v", err)
	}

	onlyAddress := testDraft(t, "100")
	onlyAddress.CourierAddress = &address
	if _, err := env.orders.CreateOrder(ctx, onlyAddress, nil); !errors.Is(err, ErrCourierFieldsMismatch) {
		t.Fatalf("expected courier mismatch, got %v", err)
	}
	if got := countOrders(t, env.db); got != 0 {
		t.Fatalf("expected no order rows, got %d", got)
	}

	both := testDraft(t, "100")
	both.DeliveryMethod = constants.DeliveryMethodCourier
	both.CourierID = &courier.ID
	both.CourierAddress = &address
	order, err := env.orders.CreateOrder(ctx, both, nil)
	if err != nil {
		t.Fatalf("create order with courier failed: %v", err)
	}
	if order.Courier == nil || order.Courier.ID != courier.ID {
		t.Fatalf("expected courier preloaded, got %+v", order.Courier)
	}
}

func TestCreateOrderRejectsInvalidItems(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	empty := testDraft(t)
	if _, err := env.orders.CreateOrder(ctx, empty, nil); !errors.Is(err, ErrOrderItemsEmpty) {
		t.Fatalf("expected items empty, got %v", err)
	}
	negative := testDraft(t, "-1")
	if _, err := env.orders.CreateOrder(ctx, negative, nil); !errors.Is(err, ErrOrderItemPriceInvalid) {
		t.Fatalf("expected price invalid, got %v", err)
	}
	zeroQty := testDraft(t, "10")
	zeroQty.Items[0].Quantity = 0
	if _, err := env.orders.CreateOrder(ctx, zeroQty, nil); !errors.Is(err, ErrOrderInvalid) {
		t.Fatalf("expected order invalid, got %v", err)
	}
	badStatus := testDraft(t, "10")
	badStatus.Status = "shipped"
	if _, err := env.orders.CreateOrder(ctx, badStatus, nil); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected status invalid, got %v", err)
	}
}

func TestCreateOrderCustomerRecordWins(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	customer := mustCreateCustomer(t, env.db, "rahim")

	draft := testDraft(t, "300")
	draft.CustomerID = &customer.ID
	draft.CustomerName = "Someone Else"
	draft.CustomerEmail = "other@example.com"
	order, err := env.orders.CreateOrderRequest(ctx, draft, nil)
	if err != nil {
		t.Fatalf("create order request failed: %v", err)
	}
	if order.CustomerName != customer.Name || order.CustomerEmail != customer.Email || order.CustomerPhone != customer.Phone {
		t.Fatalf("customer record should override input: %+v", order)
	}

	missingID := uint(9999)
	anonymous := testDraft(t, "300")
	anonymous.CustomerID = &missingID
	order, err = env.orders.CreateOrderRequest(ctx, anonymous, nil)
	if err != nil {
		t.Fatalf("create anonymous order failed: %v", err)
	}
	if order.CustomerID != nil {
		t.Fatalf("unknown customer should fall back to anonymous, got %v", *order.CustomerID)
	}
	if order.CustomerName != "Walk-in" {
		t.Fatalf("caller fields should be kept for anonymous order, got %s", order.CustomerName)
	}
}

func TestCreateOrderRequestClearsCart(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	customer := mustCreateCustomer(t, env.db, "karim")
	other := mustCreateCustomer(t, env.db, "salma")
	for _, item := range []models.CartItem{
		{CustomerID: customer.ID, ProductID: 1, Quantity: 1},
		{CustomerID: customer.ID, ProductID: 2, Quantity: 3},
		{CustomerID: other.ID, ProductID: 1, Quantity: 1},
	} {
		item := item
		if err := env.cartRepo.Create(&item); err != nil {
			t.Fatalf("create cart item failed: %v", err)
		}
	}

	draft := testDraft(t, "100")
	draft.CustomerID = &customer.ID
	if _, err := env.orders.CreateOrderRequest(ctx, draft, nil); err != nil {
		t.Fatalf("create order request failed: %v", err)
	}
	items, err := env.cartRepo.ListByCustomer(customer.ID)
	if err != nil {
		t.Fatalf("list cart failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected cart cleared, got %d", len(items))
	}
	others, err := env.cartRepo.ListByCustomer(other.ID)
	if err != nil {
		t.Fatalf("list cart failed: %v", err)
	}
	if len(others) != 1 {
		t.Fatalf("other customer's cart should remain, got %d", len(others))
	}
}

func TestCreateOrderSurvivesNotificationFailure(t *testing.T) {
	env := setupServiceTest(t)
	env.publisher.err = errors.New("broker down")

	order, err := env.orders.CreateOrderRequest(context.Background(), testDraft(t, "100"), nil)
	if err != nil {
		t.Fatalf("notification failure must not fail creation: %v", err)
	}
	if order.ID == 0 {
		t.Fatalf("expected persisted order")
	}
}

func TestCreateOrderAssignsStaff(t *testing.T) {
	env := setupServiceTest(t)
	mustCreateStaff(t, env.db, "offline@example.com", constants.StaffRoleStaff, constants.StaffStatusOffline, true)
	online := mustCreateStaff(t, env.db, "online@example.com", constants.StaffRoleStaff, constants.StaffStatusOnline, true)

	order, err := env.orders.CreateOrderRequest(context.Background(), testDraft(t, "100"), nil)
	if err != nil {
		t.Fatalf("create order request failed: %v", err)
	}
	if order.StaffID == nil || *order.StaffID != online.ID {
		t.Fatalf("expected online staff %d, got %v", online.ID, order.StaffID)
	}
	if order.Staff == nil {
		t.Fatalf("expected staff preloaded")
	}
}

func TestCreateOrderWithoutAnyStaff(t *testing.T) {
	env := setupServiceTest(t)

	order, err := env.orders.CreateOrderRequest(context.Background(), testDraft(t, "100"), nil)
	if err != nil {
		t.Fatalf("ownerless order should still be created: %v", err)
	}
	if order.StaffID != nil {
		t.Fatalf("expected no staff owner, got %d", *order.StaffID)
	}
}

func TestCreateOrderRejectsUnknownOrInactiveStaff(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	missing := uint(999)
	draft := testDraft(t, "100")
	draft.StaffID = &missing
	if _, err := env.orders.CreateOrder(ctx, draft, nil); !errors.Is(err, ErrStaffNotFound) {
		t.Fatalf("expected ErrStaffNotFound for missing staff, got %v", err)
	}

	disabled := mustCreateStaff(t, env.db, "gone@example.com", constants.StaffRoleStaff, constants.StaffStatusOnline, false)
	draft.StaffID = &disabled.ID
	if _, err := env.orders.CreateOrder(ctx, draft, nil); !errors.Is(err, ErrStaffNotFound) {
		t.Fatalf("expected ErrStaffNotFound for inactive staff, got %v", err)
	}
	if n := countOrders(t, env.db); n != 0 {
		t.Fatalf("rejected orders must not persist, got %d", n)
	}
}

func TestCreateOrderRequestStoresDesignFiles(t *testing.T) {
	env := setupServiceTest(t)

	files := buildFileHeaders(t, "front.png", "back.png")
	order, err := env.orders.CreateOrderRequest(context.Background(), testDraft(t, "100"), files)
	if err != nil {
		t.Fatalf("create order request failed: %v", err)
	}
	if len(order.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(order.Images))
	}
	for _, image := range order.Images {
		if !strings.HasPrefix(image.Path, "/uploads/"+constants.UploadSceneOrderDesign+"/") {
			t.Fatalf("unexpected image path: %s", image.Path)
		}
		if image.MimeType != "image/png" {
			t.Fatalf("unexpected mime type: %s", image.MimeType)
		}
	}
	if got := countStoredFiles(t, env.uploadDir); got != 2 {
		t.Fatalf("expected 2 stored files, got %d", got)
	}
}

func TestCreateOrderRequestRejectsBadUploadWithoutLeftovers(t *testing.T) {
	env := setupServiceTest(t)

	files := buildFileHeaders(t, "ok.png", "script.exe")
	if _, err := env.orders.CreateOrderRequest(context.Background(), testDraft(t, "100"), files); !errors.Is(err, ErrUploadInvalid) {
		t.Fatalf("expected upload invalid, got %v", err)
	}
	tooMany := buildFileHeaders(t, "1.png", "2.png", "3.png", "4.png", "5.png", "6.png")
	if _, err := env.orders.CreateOrderRequest(context.Background(), testDraft(t, "100"), tooMany); !errors.Is(err, ErrUploadTooMany) {
		t.Fatalf("expected too many uploads, got %v", err)
	}
	if got := countStoredFiles(t, env.uploadDir); got != 0 {
		t.Fatalf("expected no stored files, got %d", got)
	}
	if got := countOrders(t, env.db); got != 0 {
		t.Fatalf("expected no orders, got %d", got)
	}
}

func TestConcurrentOrderRequestsCompensateFailedUploads(t *testing.T) {
	env := setupServiceTest(t)
	customer := mustCreateCustomer(t, env.db, "nadia")

	err := env.db.Callback().Create().Before("gorm:create").Register("test:fail_design_images", func(tx *gorm.DB) {
		images, ok := tx.Statement.Dest.(*[]models.OrderImage)
		if !ok {
			return
		}
		for _, image := range *images {
			if strings.HasPrefix(image.Name, "fail-") {
				_ = tx.AddError(errors.New("injected image write failure"))
				return
			}
		}
	})
	if err != nil {
		t.Fatalf("register callback failed: %v", err)
	}

	okFiles := buildFileHeaders(t, "poster-a.png", "poster-b.png")
	failFiles := buildFileHeaders(t, "fail-a.png", "fail-b.png", "fail-c.png")

	okDraft := testDraft(t, "500", "1500")
	okDraft.CustomerID = &customer.ID
	failDraft := testDraft(t, "700")
	failDraft.CustomerID = &customer.ID

	var (
		created   *models.Order
		failedErr error
	)
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		order, err := env.orders.CreateOrderRequest(ctx, okDraft, okFiles)
		created = order
		return err
	})
	g.Go(func() error {
		_, failedErr = env.orders.CreateOrderRequest(context.Background(), failDraft, failFiles)
		return nil
	})
	if err := g.Wait(); err != nil {
		t.Fatalf("successful request failed: %v", err)
	}
	if !errors.Is(failedErr, ErrOrderCreateFailed) {
		t.Fatalf("expected create failure for injected request, got %v", failedErr)
	}

	if got := countOrders(t, env.db); got != 1 {
		t.Fatalf("expected exactly one order row, got %d", got)
	}
	var imageCount int64
	if err := env.db.Model(&models.OrderImage{}).Count(&imageCount).Error; err != nil {
		t.Fatalf("count images failed: %v", err)
	}
	if imageCount != 2 {
		t.Fatalf("expected 2 image rows, got %d", imageCount)
	}
	if got := countStoredFiles(t, env.uploadDir); got != 2 {
		t.Fatalf("expected only successful request files on disk, got %d", got)
	}
	for _, image := range created.Images {
		if strings.HasPrefix(image.Name, "fail-") {
			t.Fatalf("failed request image leaked: %s", image.Name)
		}
	}
	if !created.OrderTotalPrice.Equal(mustMoney(t, "2000")) {
		t.Fatalf("unexpected total: %s", created.OrderTotalPrice.String())
	}
}

func TestUpdateOrderStrictTransitions(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	admin := Caller{StaffID: 1, Role: constants.StaffRoleAdmin}

	order, err := env.orders.CreateOrderRequest(ctx, testDraft(t, "100"), nil)
	if err != nil {
		t.Fatalf("create order request failed: %v", err)
	}

	completed := constants.OrderStatusCompleted
	if _, err := env.orders.UpdateOrder(ctx, admin, order.ID, UpdateOrderInput{Status: &completed}); !errors.Is(err, ErrOrderStatusTransition) {
		t.Fatalf("expected transition error, got %v", err)
	}

	consultation := constants.OrderStatusConsultation
	note := "  called the customer  "
	updated, err := env.orders.UpdateOrder(ctx, admin, order.ID, UpdateOrderInput{Status: &consultation, AdditionalNotes: &note})
	if err != nil {
		t.Fatalf("update order failed: %v", err)
	}
	if updated.Status != constants.OrderStatusConsultation || updated.AdditionalNotes != "called the customer" {
		t.Fatalf("unexpected updated order: %s %q", updated.Status, updated.AdditionalNotes)
	}

	canceled := constants.OrderStatusCanceled
	if _, err := env.orders.UpdateOrder(ctx, admin, order.ID, UpdateOrderInput{Status: &canceled}); err != nil {
		t.Fatalf("cancel should be allowed: %v", err)
	}
	if _, err := env.orders.UpdateOrder(ctx, admin, order.ID, UpdateOrderInput{Status: &consultation}); !errors.Is(err, ErrOrderStatusTransition) {
		t.Fatalf("terminal status must be final, got %v", err)
	}
	if env.publisher.count(constants.EventOrderUpdated) != 2 {
		t.Fatalf("expected 2 order-updated events, got %d", env.publisher.count(constants.EventOrderUpdated))
	}
}

func TestUpdateOrderPermissiveMode(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	env.orders.options.StrictTransitions = false
	admin := Caller{StaffID: 1, Role: constants.StaffRoleAdmin}

	order, err := env.orders.CreateOrderRequest(ctx, testDraft(t, "100"), nil)
	if err != nil {
		t.Fatalf("create order request failed: %v", err)
	}
	completed := constants.OrderStatusCompleted
	delivery := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	updated, err := env.orders.UpdateOrder(ctx, admin, order.ID, UpdateOrderInput{Status: &completed, DeliveryDate: &delivery})
	if err != nil {
		t.Fatalf("permissive update failed: %v", err)
	}
	if updated.Status != constants.OrderStatusCompleted || updated.DeliveryDate == nil {
		t.Fatalf("unexpected order: %+v", updated)
	}
	bogus := "shipped"
	if _, err := env.orders.UpdateOrder(ctx, admin, order.ID, UpdateOrderInput{Status: &bogus}); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("unknown status still rejected, got %v", err)
	}
}

func TestUpdateOrderOwnershipAndCourier(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	owner := mustCreateStaff(t, env.db, "owner@example.com", constants.StaffRoleStaff, constants.StaffStatusOnline, true)
	other := mustCreateStaff(t, env.db, "other@example.com", constants.StaffRoleStaff, constants.StaffStatusOffline, true)

	draft := testDraft(t, "100")
	draft.StaffID = &owner.ID
	order, err := env.orders.CreateOrder(ctx, draft, nil)
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	note := "x"
	if _, err := env.orders.UpdateOrder(ctx, Caller{StaffID: other.ID, Role: constants.StaffRoleStaff}, order.ID, UpdateOrderInput{AdditionalNotes: &note}); !errors.Is(err, ErrOrderAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}
	address := "Mirpur 10"
	if _, err := env.orders.UpdateOrder(ctx, Caller{StaffID: owner.ID, Role: constants.StaffRoleStaff}, order.ID, UpdateOrderInput{CourierAddress: &address}); !errors.Is(err, ErrCourierFieldsMismatch) {
		t.Fatalf("courier address without courier should be rejected, got %v", err)
	}
	if _, err := env.orders.UpdateOrder(ctx, Caller{Role: constants.StaffRoleAdmin}, 4242, UpdateOrderInput{AdditionalNotes: &note}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecalculatePaymentStatusAggregation(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	order, err := env.orders.CreateOrder(ctx, testDraft(t, "1000"), nil)
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	insert := func(id, amount string, paid bool) {
		payment := models.Payment{TransactionID: id, OrderID: order.ID, PaymentMethod: constants.PaymentMethodCash, Amount: mustMoney(t, amount), IsPaid: paid}
		if err := env.db.Create(&payment).Error; err != nil {
			t.Fatalf("create payment failed: %v", err)
		}
	}

	insert("TXA", "400", true)
	insert("TXB", "600", false)
	status, err := env.orders.RecalculatePaymentStatus(ctx, order.ID)
	if err != nil || status != constants.OrderPaymentStatusPartial {
		t.Fatalf("expected partial, got %s err=%v", status, err)
	}
	insert("TXC", "600", true)
	status, err = env.orders.RecalculatePaymentStatus(ctx, order.ID)
	if err != nil || status != constants.OrderPaymentStatusPaid {
		t.Fatalf("expected paid, got %s err=%v", status, err)
	}
	insert("TXD", "1", true)
	status, err = env.orders.RecalculatePaymentStatus(ctx, order.ID)
	if err != nil || status != constants.OrderPaymentStatusPending {
		t.Fatalf("overpaid order should fall back to pending, got %s err=%v", status, err)
	}
	stored, err := env.orders.GetOrderByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if stored.PaymentStatus != constants.OrderPaymentStatusPending {
		t.Fatalf("persisted status mismatch: %s", stored.PaymentStatus)
	}
	if _, err := env.orders.RecalculatePaymentStatus(ctx, 9999); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
