// Package mysql 购物车仓储的 GORM 实现
package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/ecommerce/internal/cart/domain"
	"github.com/wyfcoding/ecommerce/pkg/db"
)

type cartRepository struct{ db *gorm.DB }

// NewCartRepository 创建购物车仓储
func NewCartRepository(gdb *gorm.DB) domain.CartRepository {
	return &cartRepository{db: gdb}
}

func (r *cartRepository) GetByUserID(ctx context.Context, userID uint) (*domain.Cart, error) {
	return r.load(ctx, db.Conn(ctx, r.db), userID)
}

func (r *cartRepository) GetByUserIDForUpdate(ctx context.Context, userID uint) (*domain.Cart, error) {
	return r.load(ctx, db.Conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (r *cartRepository) load(ctx context.Context, q *gorm.DB, userID uint) (*domain.Cart, error) {
	var cart domain.Cart
	if err := q.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cart of user %d: %w", userID, err)
	}
	if err := db.Conn(ctx, r.db).Where("cart_id = ?", cart.ID).Order("id ASC").Find(&cart.Items).Error; err != nil {
		return nil, fmt.Errorf("failed to load items of cart %d: %w", cart.ID, err)
	}
	return &cart, nil
}

func (r *cartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	return db.Conn(ctx, r.db).Create(cart).Error
}

func (r *cartRepository) GetItem(ctx context.Context, itemID uint) (*domain.CartItem, error) {
	var item domain.CartItem
	if err := db.Conn(ctx, r.db).First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cart item %d: %w", itemID, err)
	}
	return &item, nil
}

func (r *cartRepository) SaveItem(ctx context.Context, item *domain.CartItem) error {
	if err := db.Conn(ctx, r.db).Save(item).Error; err != nil {
		return fmt.Errorf("failed to save cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, itemID uint) error {
	if err := db.Conn(ctx, r.db).Delete(&domain.CartItem{}, itemID).Error; err != nil {
		return fmt.Errorf("failed to delete cart item %d: %w", itemID, err)
	}
	return nil
}

func (r *cartRepository) ClearItems(ctx context.Context, cartID uint) (int64, error) {
	res := db.Conn(ctx, r.db).Where("cart_id = ?", cartID).Delete(&domain.CartItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear cart %d: %w", cartID, res.Error)
	}
	return res.RowsAffected, nil
}
