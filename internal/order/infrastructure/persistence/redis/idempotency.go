package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/wyfcoding/ecommerce/pkg/cache"
)

// pendingTTL 占用中的键只保留一分钟，进程在 Complete/Release 前退出时键会自行过期
const (
	pendingMarker = "pending"
	pendingTTL    = time.Minute
)

// IdempotencyStore 基于 SETNX 的下单幂等键
type IdempotencyStore struct {
	cache      *cache.RedisCache
	ttl        time.Duration
	pendingTTL time.Duration
}

// NewIdempotencyStore 创建幂等键存储，ttl 为 0 时已完成的键保留 24 小时
func NewIdempotencyStore(c *cache.RedisCache, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{cache: c, ttl: ttl, pendingTTL: min(pendingTTL, ttl)}
}

func (s *IdempotencyStore) Acquire(ctx context.Context, userID uint, key string) (bool, error) {
	return s.cache.SetNX(ctx, s.key(userID, key), pendingMarker, s.pendingTTL)
}

func (s *IdempotencyStore) Complete(ctx context.Context, userID uint, key string, orderID uint) error {
	return s.cache.Set(ctx, s.key(userID, key), strconv.FormatUint(uint64(orderID), 10), s.ttl)
}

func (s *IdempotencyStore) Lookup(ctx context.Context, userID uint, key string) (uint, error) {
	val, ok, err := s.cache.Get(ctx, s.key(userID, key))
	if err != nil || !ok || val == pendingMarker {
		return 0, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt idempotency record %q: %w", val, err)
	}
	return uint(id), nil
}

func (s *IdempotencyStore) Release(ctx context.Context, userID uint, key string) error {
	return s.cache.Delete(ctx, s.key(userID, key))
}

func (s *IdempotencyStore) key(userID uint, key string) string {
	return fmt.Sprintf("idem:order:%d:%s", userID, key)
}
