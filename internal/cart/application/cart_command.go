package application

import (
	"context"

	"gorm.io/gorm"

	"github.com/wyfcoding/ecommerce/internal/cart/domain"
	"github.com/wyfcoding/ecommerce/pkg/db"
	"github.com/wyfcoding/ecommerce/pkg/errorx"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
)

// AddItemCommand 加购命令
type AddItemCommand struct {
	UserID    uint
	ProductID uint
	Quantity  int
}

// SetItemQuantityCommand 修改行数量命令，Quantity <= 0 等同删除
type SetItemQuantityCommand struct {
	UserID   uint
	ItemID   uint
	Quantity int
}

// RemoveItemCommand 删除行命令
type RemoveItemCommand struct {
	UserID uint
	ItemID uint
}

// CartCommandService 购物车命令服务。
// 每次变更在一个事务内完成，事务开始先锁住购物车行，同一购物车的并发变更因此串行。
// 这里的库存校验只是提示性的，权威校验在下单事务内。
type CartCommandService struct {
	cartLoader
	db       *gorm.DB
	products ProductReader
	metrics  *metrics.Metrics
}

// NewCartCommandService 创建购物车命令服务
func NewCartCommandService(gdb *gorm.DB, carts domain.CartRepository, products ProductReader, users UserChecker, m *metrics.Metrics) *CartCommandService {
	return &CartCommandService{
		cartLoader: cartLoader{carts: carts, users: users},
		db:         gdb,
		products:   products,
		metrics:    m,
	}
}

// GetOrCreateCart 返回用户购物车，不存在时创建
func (s *CartCommandService) GetOrCreateCart(ctx context.Context, userID uint) (*domain.Cart, error) {
	return s.getOrCreate(ctx, userID)
}

// AddItem 加购；已有同一商品时合并数量，合并后的总数也要满足库存
func (s *CartCommandService) AddItem(ctx context.Context, cmd AddItemCommand) error {
	if cmd.Quantity < 1 {
		return errorx.InvalidArgument("quantity must be at least 1, got %d", cmd.Quantity)
	}
	return s.mutate(ctx, cmd.UserID, domain.OpAddItem, func(txCtx context.Context, cart *domain.Cart) error {
		product, err := s.products.GetByID(txCtx, cmd.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return errorx.NotFound("Product", "id", cmd.ProductID)
		}
		if !product.HasStock(cmd.Quantity) {
			return errorx.InsufficientStock(product.ID, product.Name, product.StockQuantity, cmd.Quantity)
		}

		newQty := cart.QuantityAfterAdd(product.ID, cmd.Quantity)
		if !product.HasStock(newQty) {
			return errorx.InsufficientStock(product.ID, product.Name, product.StockQuantity, newQty)
		}

		item := cart.FindByProduct(product.ID)
		if item == nil {
			item = &domain.CartItem{CartID: cart.ID, ProductID: product.ID}
		}
		item.Quantity = newQty
		item.Price = product.Price
		return s.carts.SaveItem(txCtx, item)
	})
}

// SetItemQuantity 设置行的绝对数量并刷新价格快照
func (s *CartCommandService) SetItemQuantity(ctx context.Context, cmd SetItemQuantityCommand) error {
	if cmd.Quantity <= 0 {
		return s.RemoveItem(ctx, RemoveItemCommand{UserID: cmd.UserID, ItemID: cmd.ItemID})
	}
	return s.mutate(ctx, cmd.UserID, domain.OpSetQuantity, func(txCtx context.Context, cart *domain.Cart) error {
		item, err := s.ownedItem(txCtx, cart, cmd.ItemID)
		if err != nil {
			return err
		}
		product, err := s.products.GetByID(txCtx, item.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return errorx.NotFound("Product", "id", item.ProductID)
		}
		if !product.HasStock(cmd.Quantity) {
			return errorx.InsufficientStock(product.ID, product.Name, product.StockQuantity, cmd.Quantity)
		}
		item.Quantity = cmd.Quantity
		item.Price = product.Price
		return s.carts.SaveItem(txCtx, item)
	})
}

// RemoveItem 删除行；行不存在返回 NotFound，属于其他用户返回 Forbidden
func (s *CartCommandService) RemoveItem(ctx context.Context, cmd RemoveItemCommand) error {
	return s.mutate(ctx, cmd.UserID, domain.OpRemoveItem, func(txCtx context.Context, cart *domain.Cart) error {
		item, err := s.ownedItem(txCtx, cart, cmd.ItemID)
		if err != nil {
			return err
		}
		return s.carts.DeleteItem(txCtx, item.ID)
	})
}

// ClearCart 清空购物车，幂等；返回删除的行数
func (s *CartCommandService) ClearCart(ctx context.Context, userID uint) (int, error) {
	var removed int64
	err := s.mutate(ctx, userID, domain.OpClear, func(txCtx context.Context, cart *domain.Cart) error {
		if cart.IsEmpty() {
			return nil
		}
		n, err := s.carts.ClearItems(txCtx, cart.ID)
		removed = n
		return err
	})
	return int(removed), err
}

// mutate 确保购物车存在，然后在事务内锁住购物车行执行 fn
func (s *CartCommandService) mutate(ctx context.Context, userID uint, op string, fn func(txCtx context.Context, cart *domain.Cart) error) error {
	if _, err := s.getOrCreate(ctx, userID); err != nil {
		s.metrics.RecordCartMutation(op, err)
		return err
	}
	err := db.Transaction(ctx, s.db, func(txCtx context.Context) error {
		cart, err := s.carts.GetByUserIDForUpdate(txCtx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return errorx.NotFound("Cart", "user id", userID)
		}
		return fn(txCtx, cart)
	})
	s.metrics.RecordCartMutation(op, err)
	if err != nil && errorx.KindOf(err) == errorx.KindInternal {
		logger.Error(ctx, "cart mutation failed", "op", op, "user_id", userID, "error", err)
	}
	return err
}

// ownedItem 校验行属于当前购物车
func (s *CartCommandService) ownedItem(ctx context.Context, cart *domain.Cart, itemID uint) (*domain.CartItem, error) {
	if item := cart.FindItem(itemID); item != nil {
		return item, nil
	}
	item, err := s.carts.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errorx.NotFound("CartItem", "id", itemID)
	}
	return nil, errorx.Forbidden("cart item %d does not belong to the current user's cart", itemID)
}
