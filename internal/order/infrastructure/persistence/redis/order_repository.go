// Package redis 订单读缓存与下单幂等键的 Redis 实现
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/wyfcoding/ecommerce/internal/order/domain"
	"github.com/wyfcoding/ecommerce/pkg/cache"
)

// evictedMarker 失效标记。失效时写入标记而不是删除 key，
// 回填使用 SETNX，标记存活期间查库得到的旧数据无法写回缓存
const (
	evictedMarker = "evicted"
	evictionGuard = 5 * time.Second
)

// OrderRedisRepository 订单详情缓存
type OrderRedisRepository struct {
	cache  *cache.RedisCache
	prefix string
	ttl    time.Duration
	guard  time.Duration
}

// NewOrderRedisRepository 创建订单缓存，ttl 为 0 时使用 15 分钟
func NewOrderRedisRepository(c *cache.RedisCache, ttl time.Duration) *OrderRedisRepository {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &OrderRedisRepository{
		cache:  c,
		prefix: "order:",
		ttl:    ttl,
		guard:  evictionGuard,
	}
}

func (r *OrderRedisRepository) Set(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return nil
	}
	// 已有值或失效标记时放弃回填
	if _, err := r.cache.SetNXJSON(ctx, r.key(order.ID), order, r.ttl); err != nil {
		return fmt.Errorf("failed to cache order: %w", err)
	}
	return nil
}

func (r *OrderRedisRepository) Get(ctx context.Context, id uint) (*domain.Order, error) {
	val, ok, err := r.cache.Get(ctx, r.key(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get order from redis: %w", err)
	}
	if !ok || val == evictedMarker {
		return nil, nil
	}
	var order domain.Order
	if err := json.Unmarshal([]byte(val), &order); err != nil {
		return nil, fmt.Errorf("decode cached order %d: %w", id, err)
	}
	return &order, nil
}

// Delete 写入短期失效标记，覆盖并发读回填的旧值
func (r *OrderRedisRepository) Delete(ctx context.Context, id uint) error {
	return r.cache.Set(ctx, r.key(id), evictedMarker, r.guard)
}

func (r *OrderRedisRepository) key(id uint) string {
	return r.prefix + strconv.FormatUint(uint64(id), 10)
}
