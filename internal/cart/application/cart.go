package application

import (
	"context"

	"gorm.io/gorm"

	"github.com/wyfcoding/ecommerce/internal/cart/domain"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
)

// CartService 购物车服务门面，变更操作返回变更后的购物车视图
type CartService struct {
	commandService *CartCommandService
	queryService   *CartQueryService
}

// NewCartService 创建购物车服务门面
func NewCartService(gdb *gorm.DB, carts domain.CartRepository, products ProductReader, users UserChecker, m *metrics.Metrics) *CartService {
	return &CartService{
		commandService: NewCartCommandService(gdb, carts, products, users, m),
		queryService:   NewCartQueryService(carts, products, users),
	}
}

// GetOrCreateCart 获取或创建购物车
func (s *CartService) GetOrCreateCart(ctx context.Context, userID uint) (*domain.Cart, error) {
	return s.commandService.GetOrCreateCart(ctx, userID)
}

// AddItem 加购
func (s *CartService) AddItem(ctx context.Context, userID, productID uint, quantity int) (*CartDTO, error) {
	if err := s.commandService.AddItem(ctx, AddItemCommand{UserID: userID, ProductID: productID, Quantity: quantity}); err != nil {
		return nil, err
	}
	return s.queryService.ViewCart(ctx, userID)
}

// SetItemQuantity 修改数量
func (s *CartService) SetItemQuantity(ctx context.Context, userID, itemID uint, quantity int) (*CartDTO, error) {
	if err := s.commandService.SetItemQuantity(ctx, SetItemQuantityCommand{UserID: userID, ItemID: itemID, Quantity: quantity}); err != nil {
		return nil, err
	}
	return s.queryService.ViewCart(ctx, userID)
}

// RemoveItem 删除行
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uint) (*CartDTO, error) {
	if err := s.commandService.RemoveItem(ctx, RemoveItemCommand{UserID: userID, ItemID: itemID}); err != nil {
		return nil, err
	}
	return s.queryService.ViewCart(ctx, userID)
}

// ClearCart 清空购物车
func (s *CartService) ClearCart(ctx context.Context, userID uint) (int, error) {
	return s.commandService.ClearCart(ctx, userID)
}

// ViewCart 查看购物车
func (s *CartService) ViewCart(ctx context.Context, userID uint) (*CartDTO, error) {
	return s.queryService.ViewCart(ctx, userID)
}

// ItemCount 件数
func (s *CartService) ItemCount(ctx context.Context, userID uint) (int, error) {
	return s.queryService.ItemCount(ctx, userID)
}
