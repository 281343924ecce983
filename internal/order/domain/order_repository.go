package domain

import (
	"context"
)

// OrderRepository 订单仓储接口，查不到时返回 nil, nil
type OrderRepository interface {
	// Save 新建订单及其全部订单行
	Save(ctx context.Context, order *Order) error
	// GetByID 读取订单及订单行
	GetByID(ctx context.Context, id uint) (*Order, error)
	// ListByUser 用户订单，按下单时间倒序
	ListByUser(ctx context.Context, userID uint) ([]*Order, error)
	// ListAll 全部订单，按下单时间倒序
	ListAll(ctx context.Context, offset, limit int) ([]*Order, int64, error)
	// UpdateStatus 更新订单状态
	UpdateStatus(ctx context.Context, id uint, status OrderStatus) error
}

// OrderCache 订单详情读缓存
type OrderCache interface {
	Get(ctx context.Context, id uint) (*Order, error)
	Set(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id uint) error
}

// IdempotencyStore 下单幂等键存储，键按用户隔离
type IdempotencyStore interface {
	// Acquire 占用幂等键，已被占用时返回 false
	Acquire(ctx context.Context, userID uint, key string) (bool, error)
	// Complete 记录幂等键对应的订单
	Complete(ctx context.Context, userID uint, key string, orderID uint) error
	// Lookup 查询幂等键对应的订单，尚未完成时返回 0
	Lookup(ctx context.Context, userID uint, key string) (uint, error)
	// Release 下单失败时释放幂等键
	Release(ctx context.Context, userID uint, key string) error
}
