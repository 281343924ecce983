package application

import (
	"context"

	"github.com/wyfcoding/ecommerce/internal/cart/domain"
)

// CartQueryService 购物车查询服务
type CartQueryService struct {
	cartLoader
	products ProductReader
}

// NewCartQueryService 创建购物车查询服务
func NewCartQueryService(carts domain.CartRepository, products ProductReader, users UserChecker) *CartQueryService {
	return &CartQueryService{
		cartLoader: cartLoader{carts: carts, users: users},
		products:   products,
	}
}

// ViewCart 购物车视图，用户首次访问时会创建空购物车
func (s *CartQueryService) ViewCart(ctx context.Context, userID uint) (*CartDTO, error) {
	cart, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(cart.Items))
	for i, it := range cart.Items {
		ids[i] = it.ProductID
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return toCartDTO(cart, products), nil
}

// ItemCount 购物车商品件数，没有购物车时为 0
func (s *CartQueryService) ItemCount(ctx context.Context, userID uint) (int, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if cart == nil {
		return 0, nil
	}
	return cart.ItemCount(), nil
}
