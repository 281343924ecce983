// Package domain 购物车领域模型
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart 用户购物车，与用户一一对应，首次访问时创建且不会被删除
type Cart struct {
	ID        uint      `gorm:"primarykey"`
	UserID    uint      `gorm:"column:user_id;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	// Items 按加入顺序（item id 升序）排列，不随 Cart 一起保存
	Items []*CartItem `gorm:"-"`
}

// TableName 指定表名
func (Cart) TableName() string { return "carts" }

// CartItem 购物车行，同一购物车内每个商品至多一行
type CartItem struct {
	ID        uint            `gorm:"primarykey"`
	CartID    uint            `gorm:"column:cart_id;not null;uniqueIndex:idx_cart_product"`
	ProductID uint            `gorm:"column:product_id;not null;uniqueIndex:idx_cart_product"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(20,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定表名
func (CartItem) TableName() string { return "cart_items" }

// Subtotal 快照单价 × 数量
func (i *CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// FindByProduct 查找商品对应的行
func (c *Cart) FindByProduct(productID uint) *CartItem {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it
		}
	}
	return nil
}

// FindItem 按行 ID 查找
func (c *Cart) FindItem(itemID uint) *CartItem {
	for _, it := range c.Items {
		if it.ID == itemID {
			return it
		}
	}
	return nil
}

// QuantityAfterAdd 再加入 quantity 件后该商品在购物车中的总数
func (c *Cart) QuantityAfterAdd(productID uint, quantity int) int {
	if it := c.FindByProduct(productID); it != nil {
		return it.Quantity + quantity
	}
	return quantity
}

// Total 所有行小计之和，空购物车为 0
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// ItemCount 商品件数之和
func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// IsEmpty 是否没有任何行
func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }
