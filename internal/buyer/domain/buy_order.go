// Package domain 买单聚合
package domain

import (
	"context"
	"time"

	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
)

// BuyOrder 买单：用 SellCurrency 换取 BuyCurrency，创建即上架
type BuyOrder struct {
	ID     uint
	UserID uint
	exchange.Terms
	Status   exchange.OrderStatus
	IsActive bool
	exchange.Reputation
	Owner       *exchange.OwnerSummary `json:",omitempty"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	MatchedAt   *time.Time
	CompletedAt *time.Time
}

// NewBuyOrder 创建已上架的买单
func NewBuyOrder(userID uint, terms exchange.Terms) *BuyOrder {
	return &BuyOrder{
		UserID:   userID,
		Terms:    terms,
		Status:   exchange.StatusOpen,
		IsActive: true,
	}
}

// OwnedBy 是否为该用户的买单
func (o *BuyOrder) OwnedBy(userID uint) bool {
	return o.UserID == userID
}

// Amend 应用合并后的条款
func (o *BuyOrder) Amend(terms exchange.Terms) {
	o.Terms = terms
}

// Cancel 取消并下架
func (o *BuyOrder) Cancel() {
	o.Status = exchange.StatusCancelled
	o.IsActive = false
}

// BuyOrderRepository 买单仓储，不存在时返回 nil, nil
type BuyOrderRepository interface {
	Create(ctx context.Context, o *BuyOrder) error
	Save(ctx context.Context, o *BuyOrder) error
	Get(ctx context.Context, id uint) (*BuyOrder, error)
	GetForUpdate(ctx context.Context, id uint) (*BuyOrder, error)
	ListPublic(ctx context.Context, filter exchange.ListFilter) ([]*BuyOrder, int64, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*BuyOrder, int64, error)
}

// BuyOrderReadRepository 买单详情缓存
type BuyOrderReadRepository interface {
	Get(ctx context.Context, id uint) (*BuyOrder, error)
	Save(ctx context.Context, o *BuyOrder) error
	Delete(ctx context.Context, id uint) error
}
