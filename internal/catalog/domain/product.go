// Package domain 商品目录领域模型
package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product 商品
type Product struct {
	gorm.Model
	Name          string          `gorm:"column:name;type:varchar(255);not null"`
	Description   string          `gorm:"column:description;type:text"`
	Price         decimal.Decimal `gorm:"column:price;type:decimal(20,2);not null"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0"`
	ImageURL      string          `gorm:"column:image_url;type:varchar(512)"`
	Category      string          `gorm:"column:category;type:varchar(100);index"`
}

// TableName 指定表名
func (Product) TableName() string { return "products" }

// HasStock 库存是否满足 quantity
func (p *Product) HasStock(quantity int) bool {
	return p.StockQuantity >= quantity
}

// ProductRepository 商品仓储，查不到时返回 nil, nil
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id uint) (*Product, error)
	// GetByIDs 批量读取，结果以 ID 为键
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*Product, error)
	// GetByIDsForUpdate 按 ID 升序加行锁读取，必须在事务内调用
	GetByIDsForUpdate(ctx context.Context, ids []uint) (map[uint]*Product, error)
	// DecrementStock 条件扣减库存，库存不足时返回 false
	DecrementStock(ctx context.Context, id uint, amount int) (bool, error)
	List(ctx context.Context, category string, offset, limit int) ([]*Product, int64, error)
	Delete(ctx context.Context, id uint) error
}
