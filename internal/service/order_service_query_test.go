package service

import (
	"context"
	"testing"

	"github.com/dujiao-next/orderdesk/internal/constants"
	"github.com/dujiao-next/orderdesk/internal/models"
)

func seedOrderWithStatus(t *testing.T, env *serviceTestEnv, status string, staffID *uint, customerName string) models.Order {
	t.Helper()
	order := models.Order{
		CustomerName:      customerName,
		CustomerPhone:     "01900000000",
		StaffID:           staffID,
		FulfillmentMethod: constants.FulfillmentMethodOffline,
		DeliveryMethod:    constants.DeliveryMethodShopPickup,
		PaymentMethod:     constants.OrderPaymentMethodCOD,
		Status:            status,
		PaymentStatus:     constants.OrderPaymentStatusPending,
		OrderTotalPrice:   mustMoney(t, "100"),
	}
	if err := env.db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestGetAllOrdersActiveBucket(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	for status := range orderStatuses {
		seedOrderWithStatus(t, env, status, nil, "bucket")
	}
	admin := Caller{StaffID: 1, Role: constants.StaffRoleAdmin}

	result, err := env.orders.GetAllOrders(ctx, admin, OrderListQuery{FilteredBy: constants.OrderBucketActive, PageSize: 50})
	if err != nil {
		t.Fatalf("list orders failed: %v", err)
	}
	if result.Total != int64(len(activeOrderStatuses)) || len(result.Orders) != len(activeOrderStatuses) {
		t.Fatalf("expected %d active orders, got total=%d len=%d", len(activeOrderStatuses), result.Total, len(result.Orders))
	}
	active := map[string]bool{}
	for _, status := range activeOrderStatuses {
		active[status] = true
	}
	for _, order := range result.Orders {
		if !active[order.Status] {
			t.Fatalf("non-active status leaked into active bucket: %s", order.Status)
		}
	}

	cases := map[string]string{
		constants.OrderBucketRequested: constants.OrderStatusRequestReceived,
		constants.OrderBucketCompleted: constants.OrderStatusCompleted,
		constants.OrderBucketCancelled: constants.OrderStatusCanceled,
	}
	for bucket, want := range cases {
		result, err := env.orders.GetAllOrders(ctx, admin, OrderListQuery{FilteredBy: bucket})
		if err != nil {
			t.Fatalf("list %s failed: %v", bucket, err)
		}
		if result.Total != 1 || result.Orders[0].Status != want {
			t.Fatalf("bucket %s: unexpected result %+v", bucket, result)
		}
	}

	all, err := env.orders.GetAllOrders(ctx, admin, OrderListQuery{})
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if all.Total != int64(len(orderStatuses)) {
		t.Fatalf("no bucket should mean no restriction, got %d", all.Total)
	}
}

func TestGetAllOrdersScopesNonAdmin(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	mine := mustCreateStaff(t, env.db, "mine@example.com", constants.StaffRoleStaff, constants.StaffStatusOnline, true)
	theirs := mustCreateStaff(t, env.db, "theirs@example.com", constants.StaffRoleStaff, constants.StaffStatusOnline, true)
	for i := 0; i < 3; i++ {
		seedOrderWithStatus(t, env, constants.OrderStatusConsultation, &mine.ID, "mine")
	}
	seedOrderWithStatus(t, env, constants.OrderStatusConsultation, &theirs.ID, "theirs")
	seedOrderWithStatus(t, env, constants.OrderStatusConsultation, nil, "nobody")

	result, err := env.orders.GetAllOrders(ctx, Caller{StaffID: mine.ID, Role: constants.StaffRoleStaff}, OrderListQuery{})
	if err != nil {
		t.Fatalf("list orders failed: %v", err)
	}
	if result.Total != 3 {
		t.Fatalf("expected 3 own orders, got %d", result.Total)
	}
	for _, order := range result.Orders {
		if order.StaffID == nil || *order.StaffID != mine.ID {
			t.Fatalf("foreign order returned to non-admin: %+v", order.StaffID)
		}
	}

	admin, err := env.orders.GetAllOrders(ctx, Caller{StaffID: theirs.ID, Role: constants.StaffRoleAdmin}, OrderListQuery{})
	if err != nil {
		t.Fatalf("list orders failed: %v", err)
	}
	if admin.Total != 5 {
		t.Fatalf("admin should see all orders, got %d", admin.Total)
	}

	theirOrder := seedOrderWithStatus(t, env, constants.OrderStatusConsultation, &theirs.ID, "theirs")
	if _, err := env.orders.GetOrderForCaller(ctx, Caller{StaffID: mine.ID, Role: constants.StaffRoleStaff}, theirOrder.ID); err != ErrOrderNotFound {
		t.Fatalf("foreign order detail should be hidden, got %v", err)
	}
}

func TestGetAllOrdersSearchAndPagination(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	admin := Caller{Role: constants.StaffRoleAdmin}
	var target models.Order
	for i := 0; i < 7; i++ {
		order := seedOrderWithStatus(t, env, constants.OrderStatusConsultation, nil, "Customer")
		if i == 3 {
			target = order
		}
	}
	seedOrderWithStatus(t, env, constants.OrderStatusConsultation, nil, "Farhana Akter")

	page, err := env.orders.GetAllOrders(ctx, admin, OrderListQuery{Page: 2, PageSize: 3})
	if err != nil {
		t.Fatalf("list page failed: %v", err)
	}
	if page.Total != 8 || page.TotalPages != 3 || len(page.Orders) != 3 || page.Page != 2 {
		t.Fatalf("unexpected page: total=%d pages=%d len=%d page=%d", page.Total, page.TotalPages, len(page.Orders), page.Page)
	}

	byName, err := env.orders.GetAllOrders(ctx, admin, OrderListQuery{SearchBy: constants.OrderSearchByCustomerName, Search: "farhana"})
	if err != nil {
		t.Fatalf("search by name failed: %v", err)
	}
	if byName.Total != 1 || byName.Orders[0].CustomerName != "Farhana Akter" {
		t.Fatalf("unexpected name search result: %+v", byName)
	}

	byID, err := env.orders.GetAllOrders(ctx, admin, OrderListQuery{SearchBy: constants.OrderSearchByOrderID, Search: "4"})
	if err != nil {
		t.Fatalf("search by id failed: %v", err)
	}
	if byID.Total != 1 || byID.Orders[0].ID != target.ID {
		t.Fatalf("unexpected id search result: %+v", byID)
	}

	unknown, err := env.orders.GetAllOrders(ctx, admin, OrderListQuery{SearchBy: "address", Search: "zzz"})
	if err != nil {
		t.Fatalf("unknown search failed: %v", err)
	}
	if unknown.Total != 8 {
		t.Fatalf("unknown searchBy should be a no-op, got %d", unknown.Total)
	}

	sorted, err := env.orders.GetAllOrders(ctx, admin, OrderListQuery{SortBy: "id", SortOrder: "asc", PageSize: 1})
	if err != nil {
		t.Fatalf("sorted list failed: %v", err)
	}
	if sorted.Orders[0].ID != 1 {
		t.Fatalf("expected ascending id sort, got %d", sorted.Orders[0].ID)
	}
}

func TestGetOrdersByCustomer(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	customer := mustCreateCustomer(t, env.db, "tania")
	for i := 0; i < 2; i++ {
		draft := testDraft(t, "50")
		draft.CustomerID = &customer.ID
		if _, err := env.orders.CreateOrderRequest(ctx, draft, nil); err != nil {
			t.Fatalf("create order request failed: %v", err)
		}
	}
	if _, err := env.orders.CreateOrderRequest(ctx, testDraft(t, "50"), nil); err != nil {
		t.Fatalf("create anonymous order failed: %v", err)
	}

	result, err := env.orders.GetOrdersByCustomer(ctx, customer.ID, 1, 10)
	if err != nil {
		t.Fatalf("list customer orders failed: %v", err)
	}
	if result.Total != 2 || len(result.Orders) != 2 {
		t.Fatalf("expected 2 customer orders, got %d", result.Total)
	}
	if len(result.Orders[0].Items) != 1 {
		t.Fatalf("expected items preloaded")
	}
	if _, err := env.orders.GetOrderByID(ctx, 9999); err != ErrOrderNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, defaultOrderPageSize},
		{-3, 10, 1, 10},
		{4, 500, 4, maxOrderPageSize},
	}
	for _, tc := range cases {
		page, size := normalizePage(tc.page, tc.size)
		if page != tc.wantPage || size != tc.wantSize {
			t.Fatalf("normalizePage(%d,%d)=(%d,%d)", tc.page, tc.size, page, size)
		}
	}
}
