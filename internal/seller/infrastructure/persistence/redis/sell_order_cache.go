// Package redis 卖单详情的读穿缓存
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/p2pexchange/internal/seller/domain"
	"github.com/wyfcoding/p2pexchange/pkg/cache"
)

// SellOrderRedisRepository 实现 domain.SellOrderReadRepository
type SellOrderRedisRepository struct {
	cache  *cache.RedisCache
	prefix string
	ttl    time.Duration
}

// NewSellOrderRedisRepository 创建卖单缓存
func NewSellOrderRedisRepository(c *cache.RedisCache, ttl time.Duration) *SellOrderRedisRepository {
	return &SellOrderRedisRepository{
		cache:  c,
		prefix: "p2p:sell_order:",
		ttl:    ttl,
	}
}

var _ domain.SellOrderReadRepository = (*SellOrderRedisRepository)(nil)

// Get 未命中时返回 nil, nil
func (r *SellOrderRedisRepository) Get(ctx context.Context, id uint) (*domain.SellOrder, error) {
	var o domain.SellOrder
	found, err := r.cache.GetJSON(ctx, r.key(id), &o)
	if err != nil || !found {
		return nil, err
	}
	return &o, nil
}

// Save 写入缓存
func (r *SellOrderRedisRepository) Save(ctx context.Context, o *domain.SellOrder) error {
	if o == nil {
		return nil
	}
	return r.cache.SetJSON(ctx, r.key(o.ID), o, r.ttl)
}

// Delete 失效缓存
func (r *SellOrderRedisRepository) Delete(ctx context.Context, id uint) error {
	return r.cache.Delete(ctx, r.key(id))
}

func (r *SellOrderRedisRepository) key(id uint) string {
	return fmt.Sprintf("%s%d", r.prefix, id)
}
