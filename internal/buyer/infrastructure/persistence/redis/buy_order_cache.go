// Package redis 买单详情缓存
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/p2pexchange/internal/buyer/domain"
	"github.com/wyfcoding/p2pexchange/pkg/cache"
)

// BuyOrderRedisRepository 实现 domain.BuyOrderReadRepository
type BuyOrderRedisRepository struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewBuyOrderRedisRepository 创建买单缓存
func NewBuyOrderRedisRepository(c *cache.RedisCache, ttl time.Duration) *BuyOrderRedisRepository {
	return &BuyOrderRedisRepository{cache: c, ttl: ttl}
}

var _ domain.BuyOrderReadRepository = (*BuyOrderRedisRepository)(nil)

// Get 未命中时返回 nil, nil
func (r *BuyOrderRedisRepository) Get(ctx context.Context, id uint) (*domain.BuyOrder, error) {
	var o domain.BuyOrder
	found, err := r.cache.GetJSON(ctx, key(id), &o)
	if err != nil || !found {
		return nil, err
	}
	return &o, nil
}

// Save 写入缓存
func (r *BuyOrderRedisRepository) Save(ctx context.Context, o *domain.BuyOrder) error {
	if o == nil {
		return nil
	}
	return r.cache.SetJSON(ctx, key(o.ID), o, r.ttl)
}

// Delete 失效缓存
func (r *BuyOrderRedisRepository) Delete(ctx context.Context, id uint) error {
	return r.cache.Delete(ctx, key(id))
}

func key(id uint) string {
	return fmt.Sprintf("p2p:buy_order:%d", id)
}
