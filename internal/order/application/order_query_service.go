package application

import (
	"context"

	"github.com/wyfcoding/ecommerce/internal/order/domain"
	"github.com/wyfcoding/ecommerce/pkg/errorx"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/utils"
)

// OrderQueryService 处理订单相关的查询操作
type OrderQueryService struct {
	repo  domain.OrderRepository
	cache domain.OrderCache
}

// NewOrderQueryService 创建订单查询服务，cache 可以为空
func NewOrderQueryService(repo domain.OrderRepository, cache domain.OrderCache) *OrderQueryService {
	return &OrderQueryService{repo: repo, cache: cache}
}

// GetMyOrders 用户自己的订单，最新的在前
func (q *OrderQueryService) GetMyOrders(ctx context.Context, userID uint) ([]*OrderDTO, error) {
	orders, err := q.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toOrderDTOs(orders), nil
}

// GetOrderDetails 订单详情；订单属于其他用户时与不存在一样返回 NotFound
func (q *OrderQueryService) GetOrderDetails(ctx context.Context, userID, orderID uint) (*OrderDTO, error) {
	order, err := q.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || !order.BelongsTo(userID) {
		return nil, errorx.NotFound("Order", "id", orderID)
	}
	return toOrderDTO(order), nil
}

// GetAllOrders 管理端全量订单列表
func (q *OrderQueryService) GetAllOrders(ctx context.Context, page, pageSize int) (*OrderPage, error) {
	pg := utils.NewPagination(page, pageSize)
	orders, total, err := q.repo.ListAll(ctx, pg.Offset(), pg.Limit())
	if err != nil {
		return nil, err
	}
	return &OrderPage{Items: toOrderDTOs(orders), Total: total, Page: pg.Page, PageSize: pg.PageSize}, nil
}

// load 先读缓存，未命中再查库并回填；缓存故障只记日志
func (q *OrderQueryService) load(ctx context.Context, orderID uint) (*domain.Order, error) {
	if q.cache != nil {
		cached, err := q.cache.Get(ctx, orderID)
		if err != nil {
			logger.Warn(ctx, "order cache read failed", "order_id", orderID, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	order, err := q.repo.GetByID(ctx, orderID)
	if err != nil || order == nil {
		return nil, err
	}
	if q.cache != nil {
		if err := q.cache.Set(ctx, order); err != nil {
			logger.Warn(ctx, "order cache write failed", "order_id", orderID, "error", err)
		}
	}
	return order, nil
}
