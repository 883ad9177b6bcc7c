package main

import (
	"errors"
	"time"

	"github.com/dujiao-next/orderdesk/internal/config"
	"github.com/dujiao-next/orderdesk/internal/constants"
	"github.com/dujiao-next/orderdesk/internal/logger"
	"github.com/dujiao-next/orderdesk/internal/models"
	"github.com/dujiao-next/orderdesk/internal/service"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	log := logger.S()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, false, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		log.Fatalw("seed_database_connect_failed", "error", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		log.Fatalw("seed_database_migrate_failed", "error", err)
	}

	// 员工账号
	staffSeeds := []struct {
		name     string
		email    string
		password string
		role     string
	}{
		{name: "Shop Admin", email: "admin@orderdesk.local", password: "admin123", role: constants.StaffRoleAdmin},
		{name: "Front Desk", email: "desk@orderdesk.local", password: "staff123", role: constants.StaffRoleStaff},
		{name: "Print Room", email: "print@orderdesk.local", password: "staff123", role: constants.StaffRoleStaff},
	}
	for _, seed := range staffSeeds {
		hash, err := service.HashPassword(seed.password)
		if err != nil {
			log.Fatalw("seed_hash_password_failed", "email", seed.email, "error", err)
		}
		staff := models.Staff{
			Name:         seed.name,
			Email:        seed.email,
			PasswordHash: hash,
			Role:         seed.role,
			Status:       constants.StaffStatusOffline,
			IsActive:     true,
		}
		if err := firstOrCreate(&staff, "email = ?", seed.email); err != nil {
			log.Fatalw("seed_staff_failed", "email", seed.email, "error", err)
		}
	}
	// 前台员工默认在线，便于分配新订单
	if err := models.DB.Model(&models.Staff{}).
		Where("email = ?", "desk@orderdesk.local").
		Update("status", constants.StaffStatusOnline).Error; err != nil {
		log.Warnw("seed_staff_presence_failed", "error", err)
	}

	// 快递公司
	for _, name := range []string{"Pathao", "Steadfast", "RedX", "Sundarban"} {
		courier := models.Courier{Name: name, IsActive: true}
		if err := firstOrCreate(&courier, "name = ?", name); err != nil {
			log.Fatalw("seed_courier_failed", "name", name, "error", err)
		}
	}

	// 示例顾客
	customer := models.Customer{
		Name:    "Sample Customer",
		Email:   "customer@example.com",
		Phone:   "01700000000",
		Address: "House 1, Road 2, Dhanmondi, Dhaka",
	}
	if err := firstOrCreate(&customer, "email = ?", customer.Email); err != nil {
		log.Fatalw("seed_customer_failed", "error", err)
	}

	// 示例优惠券
	now := time.Now()
	endsAt := now.AddDate(0, 1, 0)
	coupon := models.Coupon{
		Code:     "WELCOME100",
		Discount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		StartsAt: &now,
		EndsAt:   &endsAt,
		IsActive: true,
	}
	if err := firstOrCreate(&coupon, "code = ?", coupon.Code); err != nil {
		log.Fatalw("seed_coupon_failed", "error", err)
	}

	log.Infow("seed_completed",
		"staff", len(staffSeeds),
		"customer_id", customer.ID,
		"coupon", coupon.Code,
	)
}

// firstOrCreate 按条件查找，不存在时创建；重复执行不会产生重复数据
func firstOrCreate(record interface{}, query string, args ...interface{}) error {
	err := models.DB.Where(query, args...).First(record).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return models.DB.Create(record).Error
}
