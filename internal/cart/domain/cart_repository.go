package domain

import "context"

// CartRepository 购物车仓储，查不到时返回 nil, nil
type CartRepository interface {
	// GetByUserID 读取购物车及其行
	GetByUserID(ctx context.Context, userID uint) (*Cart, error)
	// GetByUserIDForUpdate 锁定购物车行后读取，必须在事务内调用
	GetByUserIDForUpdate(ctx context.Context, userID uint) (*Cart, error)
	// Create 新建购物车，用户已有购物车时返回唯一键冲突
	Create(ctx context.Context, cart *Cart) error
	GetItem(ctx context.Context, itemID uint) (*CartItem, error)
	SaveItem(ctx context.Context, item *CartItem) error
	DeleteItem(ctx context.Context, itemID uint) error
	// ClearItems 删除购物车的全部行，返回删除行数
	ClearItems(ctx context.Context, cartID uint) (int64, error)
}
