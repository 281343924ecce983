package application

import (
	"context"

	cartdomain "github.com/wyfcoding/ecommerce/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
)

// CartStore 下单事务内的购物车访问。ForUpdate 版本锁住购物车行，
// ClearItems 在同一把锁下删除已转成订单的行，两者都必须在事务内调用
type CartStore interface {
	GetByUserIDForUpdate(ctx context.Context, userID uint) (*cartdomain.Cart, error)
	ClearItems(ctx context.Context, cartID uint) (int64, error)
}

// CartClearer 订单提交后的补充清理，由购物车服务实现，购物车已空时是空操作
type CartClearer interface {
	ClearCart(ctx context.Context, userID uint) (int, error)
}

// StockKeeper 下单所需的商品加锁读取与库存扣减
type StockKeeper interface {
	GetByIDsForUpdate(ctx context.Context, ids []uint) (map[uint]*catalogdomain.Product, error)
	DecrementStock(ctx context.Context, id uint, amount int) (bool, error)
}

// UserChecker 校验用户存在
type UserChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// OrderNumberer 生成对外订单号
type OrderNumberer interface {
	NextWithPrefix(prefix string) string
}
