package application

import (
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/ecommerce/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
)

// CartItemDTO 购物车行视图
type CartItemDTO struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	ImageURL    string          `json:"image_url"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// CartDTO 购物车视图，金额均按快照单价计算
type CartDTO struct {
	ID        uint            `json:"id"`
	UserID    uint            `json:"user_id"`
	Items     []*CartItemDTO  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

func toCartDTO(cart *domain.Cart, products map[uint]*catalogdomain.Product) *CartDTO {
	items := make([]*CartItemDTO, 0, len(cart.Items))
	for _, it := range cart.Items {
		line := &CartItemDTO{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Subtotal:  it.Subtotal(),
		}
		if p, ok := products[it.ProductID]; ok {
			line.ProductName = p.Name
			line.ImageURL = p.ImageURL
		}
		items = append(items, line)
	}
	return &CartDTO{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Items:     items,
		Total:     cart.Total(),
		ItemCount: cart.ItemCount(),
	}
}
