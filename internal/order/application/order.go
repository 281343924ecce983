package application

import (
	"context"
)

// OrderService 订单服务门面
type OrderService struct {
	commandService *OrderCommandService
	queryService   *OrderQueryService
}

// NewOrderService 创建订单服务门面
func NewOrderService(deps Dependencies) *OrderService {
	return &OrderService{
		commandService: NewOrderCommandService(deps),
		queryService:   NewOrderQueryService(deps.Orders, deps.Cache),
	}
}

// PlaceOrder 下单
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint, idempotencyKey string) (*OrderDTO, error) {
	order, err := s.commandService.PlaceOrder(ctx, PlaceOrderCommand{UserID: userID, IdempotencyKey: idempotencyKey})
	if err != nil {
		return nil, err
	}
	return toOrderDTO(order), nil
}

// UpdateOrderStatus 管理员修改订单状态
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uint, status string) (*OrderDTO, error) {
	order, err := s.commandService.UpdateOrderStatus(ctx, UpdateStatusCommand{OrderID: orderID, Status: status})
	if err != nil {
		return nil, err
	}
	return toOrderDTO(order), nil
}

// GetMyOrders 我的订单
func (s *OrderService) GetMyOrders(ctx context.Context, userID uint) ([]*OrderDTO, error) {
	return s.queryService.GetMyOrders(ctx, userID)
}

// GetOrderDetails 订单详情
func (s *OrderService) GetOrderDetails(ctx context.Context, userID, orderID uint) (*OrderDTO, error) {
	return s.queryService.GetOrderDetails(ctx, userID, orderID)
}

// GetAllOrders 全部订单
func (s *OrderService) GetAllOrders(ctx context.Context, page, pageSize int) (*OrderPage, error) {
	return s.queryService.GetAllOrders(ctx, page, pageSize)
}
