package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/orderdesk/internal/constants"
	"github.com/dujiao-next/orderdesk/internal/logger"
	"github.com/dujiao-next/orderdesk/internal/repository"
)

const defaultCleanupRetention = 24 * time.Hour

// CleanupService 定时清理动作，每个动作都是单条幂等语句
type CleanupService struct {
	cartRepo    repository.CartRepository
	paymentRepo repository.PaymentRepository
	otpRepo     repository.OTPRepository
	couponRepo  repository.CouponRepository
	retention   time.Duration
}

// NewCleanupService 创建清理服务
func NewCleanupService(cartRepo repository.CartRepository, paymentRepo repository.PaymentRepository, otpRepo repository.OTPRepository, couponRepo repository.CouponRepository, retention time.Duration) *CleanupService {
	if retention <= 0 {
		retention = defaultCleanupRetention
	}
	return &CleanupService{
		cartRepo:    cartRepo,
		paymentRepo: paymentRepo,
		otpRepo:     otpRepo,
		couponRepo:  couponRepo,
		retention:   retention,
	}
}

// SweepCartItems 删除超过保留窗口的购物车项
func (s *CleanupService) SweepCartItems(_ context.Context, now time.Time) (int64, error) {
	return s.cartRepo.DeleteCreatedBefore(now.Add(-s.retention))
}

// SweepUnpaidPayments 删除超过保留窗口仍未到账的支付记录
func (s *CleanupService) SweepUnpaidPayments(_ context.Context, now time.Time) (int64, error) {
	return s.paymentRepo.DeleteUnpaidCreatedBefore(now.Add(-s.retention))
}

// SweepExpiredOTPs 删除已过期验证码
func (s *CleanupService) SweepExpiredOTPs(_ context.Context, now time.Time) (int64, error) {
	return s.otpRepo.DeleteExpired(now)
}

// ExpireCoupons 停用已过期优惠券
func (s *CleanupService) ExpireCoupons(_ context.Context, now time.Time) (int64, error) {
	return s.couponRepo.DeactivateExpired(now)
}

// IsValidCleanupAction 判断清理动作是否存在
func IsValidCleanupAction(action string) bool {
	switch strings.TrimSpace(action) {
	case constants.CleanupActionCartItems,
		constants.CleanupActionUnpaidPayments,
		constants.CleanupActionExpiredOTPs,
		constants.CleanupActionExpiredCoupons:
		return true
	}
	return false
}

// Run 按动作名执行清理
func (s *CleanupService) Run(ctx context.Context, action string, now time.Time) (int64, error) {
	action = strings.TrimSpace(action)
	log := logger.SW("action", action)
	started := time.Now()

	var (
		affected int64
		err      error
	)
	switch action {
	case constants.CleanupActionCartItems:
		affected, err = s.SweepCartItems(ctx, now)
	case constants.CleanupActionUnpaidPayments:
		affected, err = s.SweepUnpaidPayments(ctx, now)
	case constants.CleanupActionExpiredOTPs:
		affected, err = s.SweepExpiredOTPs(ctx, now)
	case constants.CleanupActionExpiredCoupons:
		affected, err = s.ExpireCoupons(ctx, now)
	default:
		return 0, fmt.Errorf("%w: %s", ErrCleanupActionInvalid, action)
	}
	if err != nil {
		log.Errorw("cleanup_sweep_failed", "error", err)
		return 0, err
	}
	log.Infow("cleanup_sweep_finished", "affected", affected, "duration", time.Since(started))
	return affected, nil
}
