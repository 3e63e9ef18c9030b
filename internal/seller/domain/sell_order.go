// Package domain 卖单聚合
package domain

import (
	"context"
	"time"

	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"github.com/wyfcoding/p2pexchange/pkg/errorx"
)

// SellOrder 卖单：卖出 SellCurrency，换取 BuyCurrency
type SellOrder struct {
	ID     uint
	UserID uint
	exchange.Terms
	TermsOfPayment string
	Status         exchange.OrderStatus
	IsActive       bool
	exchange.Reputation
	AwaitingSeller bool
	IsNegotiating  bool
	// Owner 仅列表查询时填充
	Owner       *exchange.OwnerSummary `json:",omitempty"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	MatchedAt   *time.Time
	CompletedAt *time.Time
}

// NewSellOrder 按动作创建草稿或已发布的卖单
func NewSellOrder(userID uint, terms exchange.Terms, termsOfPayment string, action exchange.OrderAction) *SellOrder {
	return &SellOrder{
		UserID:         userID,
		Terms:          terms,
		TermsOfPayment: termsOfPayment,
		Status:         action.Status(),
		IsActive:       true,
	}
}

// OwnedBy 是否为该用户的卖单
func (o *SellOrder) OwnedBy(userID uint) bool {
	return o.UserID == userID
}

// Amend 应用合并后的条款与可选的状态动作
func (o *SellOrder) Amend(terms exchange.Terms, termsOfPayment *string, action *exchange.OrderAction) error {
	if action != nil {
		switch {
		case o.Status.Unpublished():
			o.Status = action.Status()
		case *action == exchange.ActionDraft:
			return errorx.Conflict("published orders cannot return to draft")
		}
	}
	o.Terms = terms
	if termsOfPayment != nil {
		o.TermsOfPayment = *termsOfPayment
	}
	return nil
}

// Cancel 取消并下架
func (o *SellOrder) Cancel() {
	o.Status = exchange.StatusCancelled
	o.IsActive = false
}

// StartNegotiation 标记有买家发起议价，等待卖家处理
func (o *SellOrder) StartNegotiation() {
	o.IsNegotiating = true
	o.AwaitingSeller = true
}

// SellOrderRepository 卖单仓储，不存在时返回 nil, nil
type SellOrderRepository interface {
	Create(ctx context.Context, o *SellOrder) error
	Save(ctx context.Context, o *SellOrder) error
	Get(ctx context.Context, id uint) (*SellOrder, error)
	// GetForUpdate 事务内加行锁读取
	GetForUpdate(ctx context.Context, id uint) (*SellOrder, error)
	// ListPublic 公开列表，filter.CallerID 为 0 时不排除任何用户
	ListPublic(ctx context.Context, filter exchange.ListFilter) ([]*SellOrder, int64, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*SellOrder, int64, error)
}

// SellOrderReadRepository 卖单详情缓存
type SellOrderReadRepository interface {
	Get(ctx context.Context, id uint) (*SellOrder, error)
	Save(ctx context.Context, o *SellOrder) error
	Delete(ctx context.Context, id uint) error
}
