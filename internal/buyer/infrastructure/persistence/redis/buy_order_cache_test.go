package redis

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/p2pexchange/internal/buyer/domain"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"github.com/wyfcoding/p2pexchange/pkg/cache/cachetest"
)

func TestBuyOrderCacheKey(t *testing.T) {
	assert.Equal(t, "p2p:buy_order:7", key(7))
}

func TestBuyOrderCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, store := cachetest.New()
	r := NewBuyOrderRedisRepository(c, time.Minute)

	got, err := r.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)

	o := domain.NewBuyOrder(4, exchange.Terms{
		SellCurrency:    exchange.NGN,
		BuyCurrency:     exchange.USD,
		AvailableAmount: decimal.RequireFromString("250000"),
		ExchangeRate:    decimal.RequireFromString("0.00065"),
	})
	o.ID = 7
	o.Owner = &exchange.OwnerSummary{}
	require.NoError(t, r.Save(ctx, o))
	assert.True(t, store.Has("p2p:buy_order:7"))
	assert.Equal(t, time.Minute, store.TTL("p2p:buy_order:7"))

	got, err = r.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint(4), got.UserID)
	assert.Equal(t, exchange.StatusOpen, got.Status)
	assert.True(t, got.IsActive)
	assert.True(t, o.ExchangeRate.Equal(got.ExchangeRate))
	assert.True(t, o.AvailableAmount.Equal(got.AvailableAmount))
	assert.NotNil(t, got.Owner)

	require.NoError(t, r.Delete(ctx, 7))
	assert.False(t, store.Has("p2p:buy_order:7"))
	require.NoError(t, r.Save(ctx, nil))
	assert.Empty(t, store.Keys())
}
