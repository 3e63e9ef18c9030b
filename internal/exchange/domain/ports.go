package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// KYCSuccess 已通过实名认证
const KYCSuccess = "SUCCESS"

// OwnerProfile 校验挂单资格所需的用户信息
type OwnerProfile struct {
	UserID    uint
	PINSet    bool
	KYCStatus string
}

// Onboarded 已设置交易密码且 KYC 通过
func (p OwnerProfile) Onboarded() bool {
	return p.PINSet && p.KYCStatus == KYCSuccess
}

// UserLookup 用户不存在时返回 nil, nil
type UserLookup interface {
	FindProfile(ctx context.Context, userID uint) (*OwnerProfile, error)
}

// WalletLookup 钱包不存在时返回 nil, nil；事务内对钱包行加锁
type WalletLookup interface {
	Balance(ctx context.Context, userID uint, currency Currency) (*decimal.Decimal, error)
}

// NegotiationGuard 卖单上是否存在进行中的议价 (pending, in_progress, agreed)
type NegotiationGuard interface {
	HasActive(ctx context.Context, sellOrderID uint) (bool, error)
}

// TradeGuard 订单上是否存在进行中的 P2P 交易 (pending, active, payment_sent)
type TradeGuard interface {
	HasActive(ctx context.Context, kind OrderKind, orderID uint) (bool, error)
}

// Transactor 在同一事务中执行 fn，事务通过 ctx 传递给仓储
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
