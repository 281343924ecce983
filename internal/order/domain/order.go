// Package domain 订单领域模型
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var validStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:    {},
	OrderStatusProcessing: {},
	OrderStatusShipped:    {},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// ParseStatus 校验状态名，大小写敏感
func ParseStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if _, ok := validStatuses[st]; !ok {
		return "", fmt.Errorf("invalid order status: %s", s)
	}
	return st, nil
}

// Order 订单实体
// 下单后明细不可变；状态可以在任意合法状态之间切换
type Order struct {
	ID uint
	// 对外订单号
	OrderNo     string
	UserID      uint
	OrderedAt   time.Time
	TotalAmount decimal.Decimal
	Status      OrderStatus
	Items       []*OrderItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderItem 订单行，商品名与单价在下单时冻结
type OrderItem struct {
	ID              uint
	OrderID         uint
	ProductID       uint
	ProductName     string
	Quantity        int
	PriceAtPurchase decimal.Decimal
	Subtotal        decimal.Decimal
}

// NewOrder 创建 PENDING 订单
func NewOrder(orderNo string, userID uint, orderedAt time.Time) *Order {
	return &Order{
		OrderNo:     orderNo,
		UserID:      userID,
		OrderedAt:   orderedAt,
		TotalAmount: decimal.Zero,
		Status:      OrderStatusPending,
	}
}

// AddLine 追加订单行并累加总额
func (o *Order) AddLine(productID uint, productName string, quantity int, price decimal.Decimal) *OrderItem {
	item := &OrderItem{
		ProductID:       productID,
		ProductName:     productName,
		Quantity:        quantity,
		PriceAtPurchase: price,
		Subtotal:        price.Mul(decimal.NewFromInt(int64(quantity))),
	}
	o.Items = append(o.Items, item)
	o.TotalAmount = o.TotalAmount.Add(item.Subtotal)
	return item
}

// ChangeStatus 切换状态，返回旧状态
func (o *Order) ChangeStatus(to OrderStatus) OrderStatus {
	from := o.Status
	o.Status = to
	return from
}

// BelongsTo 是否属于该用户
func (o *Order) BelongsTo(userID uint) bool {
	return o.UserID == userID
}
