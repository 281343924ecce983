package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kafka 主题
const (
	TopicOrderPlaced        = "shop.order.placed"
	TopicOrderStatusChanged = "shop.order.status_changed"
)

// OrderLine 事件中的订单行
type OrderLine struct {
	ProductID       uint            `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

// OrderPlacedEvent 下单成功事件
type OrderPlacedEvent struct {
	OrderID     uint            `json:"order_id"`
	OrderNo     string          `json:"order_no"`
	UserID      uint            `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Lines       []OrderLine     `json:"lines"`
	OccurredOn  time.Time       `json:"occurred_on"`
}

// NewOrderPlacedEvent 由已保存的订单构造事件
func NewOrderPlacedEvent(o *Order) OrderPlacedEvent {
	lines := make([]OrderLine, len(o.Items))
	for i, it := range o.Items {
		lines[i] = OrderLine{
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.PriceAtPurchase,
		}
	}
	return OrderPlacedEvent{
		OrderID:     o.ID,
		OrderNo:     o.OrderNo,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount,
		Lines:       lines,
		OccurredOn:  o.OrderedAt,
	}
}

// OrderStatusChangedEvent 订单状态变更事件
type OrderStatusChangedEvent struct {
	OrderID    uint        `json:"order_id"`
	OrderNo    string      `json:"order_no"`
	OldStatus  OrderStatus `json:"old_status"`
	NewStatus  OrderStatus `json:"new_status"`
	OccurredOn time.Time   `json:"occurred_on"`
}
