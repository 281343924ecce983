// Package mysql 商品仓储的 GORM 实现
package mysql

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/pkg/db"
)

type productRepository struct{ db *gorm.DB }

// NewProductRepository 创建商品仓储
func NewProductRepository(gdb *gorm.DB) domain.ProductRepository {
	return &productRepository{db: gdb}
}

func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	if err := db.Conn(ctx, r.db).Save(product).Error; err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var p domain.Product
	if err := db.Conn(ctx, r.db).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &p, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*domain.Product, error) {
	return r.findByIDs(db.Conn(ctx, r.db), ids)
}

func (r *productRepository) GetByIDsForUpdate(ctx context.Context, ids []uint) (map[uint]*domain.Product, error) {
	return r.findByIDs(db.Conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), ids)
}

// findByIDs 去重并按 ID 升序查询，加锁时各事务的加锁顺序一致
func (r *productRepository) findByIDs(q *gorm.DB, ids []uint) (map[uint]*domain.Product, error) {
	out := make(map[uint]*domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var products []*domain.Product
	if err := q.Where("id IN ?", sorted).Order("id ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *productRepository) DecrementStock(ctx context.Context, id uint, amount int) (bool, error) {
	res := db.Conn(ctx, r.db).Model(&domain.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, amount).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", amount))
	if res.Error != nil {
		return false, fmt.Errorf("failed to decrement stock of product %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepository) List(ctx context.Context, category string, offset, limit int) ([]*domain.Product, int64, error) {
	q := db.Conn(ctx, r.db).Model(&domain.Product{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}
	var products []*domain.Product
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	if err := db.Conn(ctx, r.db).Delete(&domain.Product{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}
