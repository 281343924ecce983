package application

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/wyfcoding/ecommerce/internal/order/domain"
	"github.com/wyfcoding/ecommerce/pkg/db"
	"github.com/wyfcoding/ecommerce/pkg/errorx"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
)

// PlaceOrderCommand 下单命令
type PlaceOrderCommand struct {
	UserID uint
	// IdempotencyKey 可选，同一用户重复提交同一个键只会产生一张订单
	IdempotencyKey string
}

// UpdateStatusCommand 修改订单状态命令
type UpdateStatusCommand struct {
	OrderID uint
	Status  string
}

// Dependencies 订单服务依赖，Cache 与 Idempotency 可以为空
type Dependencies struct {
	DB          *gorm.DB
	Orders      domain.OrderRepository
	Carts       CartStore
	CartClearer CartClearer
	Stock       StockKeeper
	Users       UserChecker
	Publisher   domain.EventPublisher
	Numbers     OrderNumberer
	Cache       domain.OrderCache
	Idempotency domain.IdempotencyStore
	Metrics     *metrics.Metrics
	// Now 测试时替换时钟
	Now func() time.Time
}

// OrderCommandService 处理订单相关的命令操作
type OrderCommandService struct {
	deps Dependencies
}

// NewOrderCommandService 创建新的 OrderCommandService 实例
func NewOrderCommandService(deps Dependencies) *OrderCommandService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &OrderCommandService{deps: deps}
}

// PlaceOrder 把购物车转换为订单
// 所有行先全部校验库存再统一扣减，任一行不足时整单失败且不留下任何写入
func (c *OrderCommandService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error) {
	start := time.Now()

	// key 非空表示本次请求持有幂等键
	var key string
	if cmd.IdempotencyKey != "" && c.deps.Idempotency != nil {
		existing, acquired, err := c.acquireKey(ctx, cmd.UserID, cmd.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
		if acquired {
			key = cmd.IdempotencyKey
		}
	}

	order, err := c.placeOrder(ctx, cmd.UserID)
	if err != nil {
		c.deps.Metrics.RecordOrderFailure(string(errorx.KindOf(err)))
		if key != "" {
			if relErr := c.deps.Idempotency.Release(ctx, cmd.UserID, key); relErr != nil {
				logger.Warn(ctx, "failed to release idempotency key", "user_id", cmd.UserID, "error", relErr)
			}
		}
		return nil, err
	}

	if key != "" {
		if err := c.deps.Idempotency.Complete(ctx, cmd.UserID, key, order.ID); err != nil {
			logger.Warn(ctx, "failed to record idempotency key", "user_id", cmd.UserID, "order_id", order.ID, "error", err)
		}
	}

	// 订单行已在下单事务内删除，这里只做补充清理，失败不影响下单结果
	if _, err := c.deps.CartClearer.ClearCart(ctx, cmd.UserID); err != nil {
		logger.Error(ctx, "failed to clear cart after order", "user_id", cmd.UserID, "order_no", order.OrderNo, "error", err)
	}

	c.deps.Metrics.RecordOrderPlaced(time.Since(start))
	logger.Info(ctx, "order placed",
		"order_no", order.OrderNo,
		"user_id", order.UserID,
		"total_amount", order.TotalAmount.String(),
		"lines", len(order.Items),
	)
	return order, nil
}

// acquireKey 占用幂等键。键已完成时返回原订单；键正被另一个请求使用时返回 Conflict。
// Redis 不可用时放弃幂等保护继续下单，acquired 为 false。
func (c *OrderCommandService) acquireKey(ctx context.Context, userID uint, key string) (*domain.Order, bool, error) {
	acquired, err := c.deps.Idempotency.Acquire(ctx, userID, key)
	if err != nil {
		logger.Warn(ctx, "idempotency store unavailable, placing order without key", "user_id", userID, "error", err)
		return nil, false, nil
	}
	if acquired {
		return nil, true, nil
	}

	orderID, err := c.deps.Idempotency.Lookup(ctx, userID, key)
	if err != nil {
		return nil, false, err
	}
	if orderID == 0 {
		return nil, false, errorx.Conflict("an order with idempotency key %q is already being placed", key)
	}
	order, err := c.deps.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	if order == nil || !order.BelongsTo(userID) {
		return nil, false, errorx.NotFound("Order", "id", orderID)
	}
	logger.Info(ctx, "idempotent replay of order", "order_no", order.OrderNo, "user_id", userID)
	return order, false, nil
}

func (c *OrderCommandService) placeOrder(ctx context.Context, userID uint) (*domain.Order, error) {
	exists, err := c.deps.Users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errorx.NotFound("User", "id", userID)
	}

	var order *domain.Order
	err = db.Transaction(ctx, c.deps.DB, func(txCtx context.Context) error {
		cart, err := c.deps.Carts.GetByUserIDForUpdate(txCtx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return errorx.NotFound("Cart", "user ID", userID)
		}
		if cart.IsEmpty() {
			return errorx.InvalidArgument("Cannot place an order for an empty cart.")
		}

		ids := make([]uint, len(cart.Items))
		for i, it := range cart.Items {
			ids[i] = it.ProductID
		}
		products, err := c.deps.Stock.GetByIDsForUpdate(txCtx, ids)
		if err != nil {
			return err
		}

		for _, it := range cart.Items {
			p, ok := products[it.ProductID]
			if !ok {
				return errorx.NotFound("Product", "id", it.ProductID)
			}
			if !p.HasStock(it.Quantity) {
				return errorx.InsufficientStock(p.ID, p.Name, p.StockQuantity, it.Quantity)
			}
		}

		order = domain.NewOrder(c.deps.Numbers.NextWithPrefix("ORD"), userID, c.deps.Now())
		for _, it := range cart.Items {
			p := products[it.ProductID]
			ok, err := c.deps.Stock.DecrementStock(txCtx, p.ID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return errorx.InsufficientStock(p.ID, p.Name, p.StockQuantity, it.Quantity)
			}
			order.AddLine(p.ID, p.Name, it.Quantity, p.Price)
		}

		if err := c.deps.Orders.Save(txCtx, order); err != nil {
			return err
		}
		// 购物车行锁仍被持有，同一购物车的并发下单只能看到空购物车
		if _, err := c.deps.Carts.ClearItems(txCtx, cart.ID); err != nil {
			return err
		}
		return c.deps.Publisher.PublishOrderPlaced(txCtx, domain.NewOrderPlacedEvent(order))
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrderStatus 修改订单状态，任意合法状态之间都可以切换
func (c *OrderCommandService) UpdateOrderStatus(ctx context.Context, cmd UpdateStatusCommand) (*domain.Order, error) {
	var order *domain.Order
	err := db.Transaction(ctx, c.deps.DB, func(txCtx context.Context) error {
		o, err := c.deps.Orders.GetByID(txCtx, cmd.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return errorx.NotFound("Order", "id", cmd.OrderID)
		}
		status, err := domain.ParseStatus(cmd.Status)
		if err != nil {
			return errorx.InvalidArgument("Invalid order status: %s", cmd.Status)
		}

		old := o.ChangeStatus(status)
		if err := c.deps.Orders.UpdateStatus(txCtx, o.ID, status); err != nil {
			return err
		}
		order = o
		return c.deps.Publisher.PublishOrderStatusChanged(txCtx, domain.OrderStatusChangedEvent{
			OrderID:    o.ID,
			OrderNo:    o.OrderNo,
			OldStatus:  old,
			NewStatus:  status,
			OccurredOn: c.deps.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	if c.deps.Cache != nil {
		if err := c.deps.Cache.Delete(ctx, order.ID); err != nil {
			logger.Warn(ctx, "failed to evict order cache", "order_id", order.ID, "error", err)
		}
	}
	logger.Info(ctx, "order status updated", "order_no", order.OrderNo, "status", order.Status)
	return order, nil
}
