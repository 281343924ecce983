// Package mysql 提供了订单仓储接口的 GORM 实现。
package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wyfcoding/ecommerce/internal/order/domain"
	"github.com/wyfcoding/ecommerce/pkg/db"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// orderRepositoryImpl 是 domain.OrderRepository 接口的 GORM 实现。
type orderRepositoryImpl struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储实例
func NewOrderRepository(gdb *gorm.DB) domain.OrderRepository {
	return &orderRepositoryImpl{db: gdb}
}

// Save 写入订单头与订单行，调用方负责提供事务
func (r *orderRepositoryImpl) Save(ctx context.Context, order *domain.Order) error {
	conn := db.Conn(ctx, r.db)
	model := toOrderModel(order)
	if err := conn.Create(model).Error; err != nil {
		logger.Error(ctx, "order_repository.save failed", "order_no", order.OrderNo, "error", err)
		return fmt.Errorf("failed to save order: %w", err)
	}
	order.ID = model.ID
	order.CreatedAt = model.CreatedAt
	order.UpdatedAt = model.UpdatedAt

	if len(order.Items) == 0 {
		return nil
	}
	items := make([]*OrderItemModel, len(order.Items))
	for i, it := range order.Items {
		items[i] = toItemModel(order.ID, it)
	}
	if err := conn.Create(&items).Error; err != nil {
		logger.Error(ctx, "order_repository.save_items failed", "order_no", order.OrderNo, "error", err)
		return fmt.Errorf("failed to save order items: %w", err)
	}
	for i, it := range order.Items {
		it.ID = items[i].ID
		it.OrderID = order.ID
	}
	return nil
}

// GetByID 实现 domain.OrderRepository.GetByID
func (r *orderRepositoryImpl) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	var model OrderModel
	if err := db.Conn(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "order_repository.get failed", "order_id", id, "error", err)
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	orders, err := r.withItems(ctx, []*OrderModel{&model})
	if err != nil {
		return nil, err
	}
	return orders[0], nil
}

// ListByUser 实现 domain.OrderRepository.ListByUser
func (r *orderRepositoryImpl) ListByUser(ctx context.Context, userID uint) ([]*domain.Order, error) {
	var models []*OrderModel
	if err := db.Conn(ctx, r.db).Where("user_id = ?", userID).Order("ordered_at DESC, id DESC").Find(&models).Error; err != nil {
		logger.Error(ctx, "order_repository.list_by_user failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return r.withItems(ctx, models)
}

// ListAll 实现 domain.OrderRepository.ListAll
func (r *orderRepositoryImpl) ListAll(ctx context.Context, offset, limit int) ([]*domain.Order, int64, error) {
	q := db.Conn(ctx, r.db).Model(&OrderModel{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	var models []*OrderModel
	if err := q.Order("ordered_at DESC, id DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		logger.Error(ctx, "order_repository.list_all failed", "error", err)
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	orders, err := r.withItems(ctx, models)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus 实现 domain.OrderRepository.UpdateStatus
func (r *orderRepositoryImpl) UpdateStatus(ctx context.Context, id uint, status domain.OrderStatus) error {
	err := db.Conn(ctx, r.db).Model(&OrderModel{}).Where("id = ?", id).Update("status", string(status)).Error
	if err != nil {
		logger.Error(ctx, "order_repository.update_status failed", "order_id", id, "error", err)
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

// withItems 一次查询装载多张订单的订单行
func (r *orderRepositoryImpl) withItems(ctx context.Context, models []*OrderModel) ([]*domain.Order, error) {
	if len(models) == 0 {
		return []*domain.Order{}, nil
	}
	ids := make([]uint, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}
	var items []*OrderItemModel
	if err := db.Conn(ctx, r.db).Where("order_id IN ?", ids).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	byOrder := make(map[uint][]*OrderItemModel, len(models))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	orders := make([]*domain.Order, len(models))
	for i, m := range models {
		orders[i] = toOrder(m, byOrder[m.ID])
	}
	return orders, nil
}
