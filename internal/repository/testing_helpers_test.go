package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/dujiao-next/orderdesk/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openRepositoryTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func mustCreateTestOrder(t *testing.T, db *gorm.DB, order models.Order) models.Order {
	t.Helper()
	if order.FulfillmentMethod == "" {
		order.FulfillmentMethod = "online"
	}
	if order.DeliveryMethod == "" {
		order.DeliveryMethod = "shop-pickup"
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = "online-payment"
	}
	if order.Status == "" {
		order.Status = "order-request-received"
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = "pending"
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}
