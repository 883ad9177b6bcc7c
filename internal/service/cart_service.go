package service

import (
	"context"

	"github.com/dujiao-next/orderdesk/internal/repository"
)

// CartService 购物车服务
type CartService struct {
	cartRepo repository.CartRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository) *CartService {
	return &CartService{cartRepo: cartRepo}
}

// ClearCart 清空客户购物车
func (s *CartService) ClearCart(_ context.Context, customerID uint) (int64, error) {
	if s == nil || customerID == 0 {
		return 0, nil
	}
	return s.cartRepo.ClearByCustomer(customerID)
}
