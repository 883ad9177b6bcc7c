package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/dujiao-next/orderdesk/internal/constants"
	"github.com/dujiao-next/orderdesk/internal/models"

	"gorm.io/gorm"
)

func TestOrderRepositoryCreateWithItemsAndDetail(t *testing.T) {
	db := openRepositoryTestDB(t, "order_repo_create")
	repo := NewOrderRepository(db)

	order := &models.Order{
		CustomerName:      "Rahim",
		FulfillmentMethod: constants.FulfillmentMethodOnline,
		DeliveryMethod:    constants.DeliveryMethodShopPickup,
		PaymentMethod:     constants.OrderPaymentMethodOnline,
		Status:            constants.OrderStatusConsultation,
		PaymentStatus:     constants.OrderPaymentStatusPending,
		OrderTotalPrice:   models.NewMoneyFromInt(500),
	}
	items := []models.OrderItem{
		{ProductName: "Banner", Quantity: 2, Price: models.NewMoneyFromInt(300)},
		{ProductName: "Sticker", Quantity: 1, Price: models.NewMoneyFromInt(200)},
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		txRepo := repo.WithTx(tx)
		if err := txRepo.Create(order, items); err != nil {
			return err
		}
		return txRepo.CreateImages([]models.OrderImage{{OrderID: order.ID, Name: "a.png", Path: "uploads/a.png"}})
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	got, err := repo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if got == nil {
		t.Fatalf("expected order")
	}
	if len(got.Items) != 2 || got.Items[0].ProductName != "Banner" {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
	if len(got.Images) != 1 {
		t.Fatalf("expected one image, got %d", len(got.Images))
	}
	if !got.OrderTotalPrice.Equal(models.NewMoneyFromInt(500)) {
		t.Fatalf("unexpected total: %s", got.OrderTotalPrice)
	}
}

func TestOrderRepositoryGetByIDMissingReturnsNil(t *testing.T) {
	repo := NewOrderRepository(openRepositoryTestDB(t, "order_repo_missing"))
	got, err := repo.GetByID(999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil order")
	}
}

func TestOrderRepositoryListFilters(t *testing.T) {
	db := openRepositoryTestDB(t, "order_repo_filter")
	repo := NewOrderRepository(db)
	staffA := uint(1)
	staffB := uint(2)
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	first := mustCreateTestOrder(t, db, models.Order{CustomerName: "Karim Uddin", CustomerPhone: "01711000001", StaffID: &staffA, Status: constants.OrderStatusConsultation, CreatedAt: base})
	mustCreateTestOrder(t, db, models.Order{CustomerName: "Nadia", CustomerEmail: "nadia@example.com", StaffID: &staffB, Status: constants.OrderStatusCompleted, CreatedAt: base.Add(time.Hour)})
	mustCreateTestOrder(t, db, models.Order{CustomerName: "karima", StaffID: &staffA, Status: constants.OrderStatusRequestReceived, CreatedAt: base.Add(2 * time.Hour)})

	cases := []struct {
		name   string
		filter OrderListFilter
		want   int64
	}{
		{name: "all", filter: OrderListFilter{}, want: 3},
		{name: "staff scope", filter: OrderListFilter{StaffID: &staffA}, want: 2},
		{name: "status bucket", filter: OrderListFilter{Statuses: []string{constants.OrderStatusCompleted, constants.OrderStatusCanceled}}, want: 1},
		{name: "name contains case insensitive", filter: OrderListFilter{SearchBy: constants.OrderSearchByCustomerName, Search: "KARIM"}, want: 2},
		{name: "phone contains", filter: OrderListFilter{SearchBy: constants.OrderSearchByCustomerPhone, Search: "000001"}, want: 1},
		{name: "email contains", filter: OrderListFilter{SearchBy: constants.OrderSearchByCustomerEmail, Search: "nadia@"}, want: 1},
		{name: "order id exact", filter: OrderListFilter{SearchBy: constants.OrderSearchByOrderID, Search: "1"}, want: 1},
		{name: "order id not numeric", filter: OrderListFilter{SearchBy: constants.OrderSearchByOrderID, Search: "abc"}, want: 0},
		{name: "unknown search field ignored", filter: OrderListFilter{SearchBy: "address", Search: "x"}, want: 3},
		{name: "percent is literal", filter: OrderListFilter{SearchBy: constants.OrderSearchByCustomerName, Search: "%"}, want: 0},
	}
	for _, tc := range cases {
		total, err := repo.Count(tc.filter)
		if err != nil {
			t.Fatalf("%s: count failed: %v", tc.name, err)
		}
		if total != tc.want {
			t.Fatalf("%s: want %d got %d", tc.name, tc.want, total)
		}
		rows, err := repo.List(tc.filter)
		if err != nil {
			t.Fatalf("%s: list failed: %v", tc.name, err)
		}
		if int64(len(rows)) != tc.want {
			t.Fatalf("%s: list size want %d got %d", tc.name, tc.want, len(rows))
		}
	}

	rows, err := repo.List(OrderListFilter{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list page failed: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != first.ID {
		t.Fatalf("expected oldest order on page 2, got %+v", rows)
	}
}

func TestOrderRepositoryListByCustomer(t *testing.T) {
	db := openRepositoryTestDB(t, "order_repo_customer")
	repo := NewOrderRepository(db)
	customerID := uint(7)
	other := uint(8)
	mustCreateTestOrder(t, db, models.Order{CustomerID: &customerID})
	mustCreateTestOrder(t, db, models.Order{CustomerID: &customerID})
	mustCreateTestOrder(t, db, models.Order{CustomerID: &other})

	rows, total, err := repo.ListByCustomer(customerID, 1, 1)
	if err != nil {
		t.Fatalf("list by customer failed: %v", err)
	}
	if total != 2 || len(rows) != 1 {
		t.Fatalf("unexpected page total=%d size=%d", total, len(rows))
	}
}

func TestOrderRepositoryUpdateMissing(t *testing.T) {
	repo := NewOrderRepository(openRepositoryTestDB(t, "order_repo_update"))
	err := repo.Update(404, map[string]interface{}{"status": constants.OrderStatusCompleted})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}
