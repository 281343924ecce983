package application

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/ecommerce/internal/order/domain"
)

// OrderItemDTO 订单行视图
type OrderItemDTO struct {
	ID              uint            `json:"id"`
	ProductID       uint            `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

// OrderDTO 订单视图
type OrderDTO struct {
	ID          uint            `json:"id"`
	OrderNo     string          `json:"order_no"`
	UserID      uint            `json:"user_id"`
	OrderedAt   time.Time       `json:"ordered_at"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	Items       []*OrderItemDTO `json:"items"`
}

// OrderPage 订单分页结果
type OrderPage struct {
	Items    []*OrderDTO `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func toOrderDTO(o *domain.Order) *OrderDTO {
	items := make([]*OrderItemDTO, len(o.Items))
	for i, it := range o.Items {
		items[i] = &OrderItemDTO{
			ID:              it.ID,
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.PriceAtPurchase,
			Subtotal:        it.Subtotal,
		}
	}
	return &OrderDTO{
		ID:          o.ID,
		OrderNo:     o.OrderNo,
		UserID:      o.UserID,
		OrderedAt:   o.OrderedAt,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		Items:       items,
	}
}

func toOrderDTOs(orders []*domain.Order) []*OrderDTO {
	out := make([]*OrderDTO, len(orders))
	for i, o := range orders {
		out[i] = toOrderDTO(o)
	}
	return out
}
