package mysql

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/ecommerce/internal/order/domain"
)

// OrderModel 订单表映射
type OrderModel struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
	OrderNo     string          `gorm:"column:order_no;type:varchar(32);uniqueIndex;not null;comment:对外订单号"`
	UserID      uint            `gorm:"column:user_id;index;not null;comment:下单用户"`
	OrderedAt   time.Time       `gorm:"column:ordered_at;index;not null"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:decimal(20,2);not null"`
	Status      string          `gorm:"column:status;type:varchar(20);index;not null"`
}

func (OrderModel) TableName() string { return "orders" }

// OrderItemModel 订单行表映射，随订单一起写入，之后不再修改
type OrderItemModel struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"`
	OrderID         uint            `gorm:"column:order_id;index;not null"`
	ProductID       uint            `gorm:"column:product_id;index;not null"`
	ProductName     string          `gorm:"column:product_name;type:varchar(255);not null;comment:下单时的商品名"`
	Quantity        int             `gorm:"column:quantity;not null"`
	PriceAtPurchase decimal.Decimal `gorm:"column:price_at_purchase;type:decimal(20,2);not null"`
	Subtotal        decimal.Decimal `gorm:"column:subtotal;type:decimal(20,2);not null"`
}

func (OrderItemModel) TableName() string { return "order_items" }

// mapping helpers

func toOrderModel(o *domain.Order) *OrderModel {
	return &OrderModel{
		ID:          o.ID,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		OrderNo:     o.OrderNo,
		UserID:      o.UserID,
		OrderedAt:   o.OrderedAt,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
	}
}

func toItemModel(orderID uint, it *domain.OrderItem) *OrderItemModel {
	return &OrderItemModel{
		ID:              it.ID,
		OrderID:         orderID,
		ProductID:       it.ProductID,
		ProductName:     it.ProductName,
		Quantity:        it.Quantity,
		PriceAtPurchase: it.PriceAtPurchase,
		Subtotal:        it.Subtotal,
	}
}

func toOrder(m *OrderModel, items []*OrderItemModel) *domain.Order {
	o := &domain.Order{
		ID:          m.ID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		OrderNo:     m.OrderNo,
		UserID:      m.UserID,
		OrderedAt:   m.OrderedAt,
		TotalAmount: m.TotalAmount,
		Status:      domain.OrderStatus(m.Status),
		Items:       make([]*domain.OrderItem, 0, len(items)),
	}
	for _, it := range items {
		o.Items = append(o.Items, &domain.OrderItem{
			ID:              it.ID,
			OrderID:         it.OrderID,
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.PriceAtPurchase,
			Subtotal:        it.Subtotal,
		})
	}
	return o
}
