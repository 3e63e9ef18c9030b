// Package domain 钱包（只读），发布挂单前校验余额
package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Wallet 用户在某一币种下的钱包
type Wallet struct {
	ID       uint
	UserID   uint
	Currency string
	Balance  decimal.Decimal
}

// Covers 余额是否足够
func (w *Wallet) Covers(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}

// WalletRepository 钱包仓储，不存在时返回 nil, nil
type WalletRepository interface {
	FindByUserAndCurrency(ctx context.Context, userID uint, currency string) (*Wallet, error)
}
