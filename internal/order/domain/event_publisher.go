package domain

import "context"

// EventPublisher 事件发布者接口
// 实现必须参与调用方的事务：事务回滚时事件也不会发出
type EventPublisher interface {
	// PublishOrderPlaced 发布下单成功事件
	PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error

	// PublishOrderStatusChanged 发布订单状态变更事件
	PublishOrderStatusChanged(ctx context.Context, event OrderStatusChangedEvent) error
}
