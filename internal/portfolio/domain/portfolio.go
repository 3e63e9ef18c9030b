// Package domain 用户按币种维护的资金配置
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"github.com/wyfcoding/p2pexchange/pkg/errorx"
	"github.com/wyfcoding/p2pexchange/pkg/utils"
)

// Portfolio 每个用户每个币种一条
type Portfolio struct {
	ID              uint
	UserID          uint
	Currency        exchange.Currency
	AvailableAmount decimal.Decimal
	ExchangeRate    decimal.Decimal
	Payment         exchange.PaymentDetails
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Patch 更新字段，nil 表示沿用原值；币种不可修改
type Patch struct {
	AvailableAmount *decimal.Decimal
	ExchangeRate    *decimal.Decimal
	BankName        *string
	AccountNumber   *string
	AccountName     *string
	InteracEmail    *string
}

// NewPortfolio 创建并校验
func NewPortfolio(userID uint, currency exchange.Currency, amount, rate decimal.Decimal, payment exchange.PaymentDetails) (*Portfolio, error) {
	p := &Portfolio{
		UserID:          userID,
		Currency:        currency,
		AvailableAmount: amount,
		ExchangeRate:    rate,
		Payment:         payment,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// OwnedBy 是否属于该用户
func (p *Portfolio) OwnedBy(userID uint) bool {
	return p.UserID == userID
}

// Apply 合并更新字段
func (p *Portfolio) Apply(patch Patch) error {
	next := *p
	next.AvailableAmount = utils.DerefDecimal(patch.AvailableAmount, p.AvailableAmount)
	next.ExchangeRate = utils.DerefDecimal(patch.ExchangeRate, p.ExchangeRate)
	next.Payment = exchange.PaymentDetails{
		BankName:      utils.DerefString(patch.BankName, p.Payment.BankName),
		AccountNumber: utils.DerefString(patch.AccountNumber, p.Payment.AccountNumber),
		AccountName:   utils.DerefString(patch.AccountName, p.Payment.AccountName),
		InteracEmail:  utils.DerefString(patch.InteracEmail, p.Payment.InteracEmail),
	}
	if err := next.validate(); err != nil {
		return err
	}
	*p = next
	return nil
}

func (p *Portfolio) validate() error {
	if !p.Currency.Valid() {
		return errorx.BadInput("unsupported currency: %s", p.Currency)
	}
	if p.AvailableAmount.IsNegative() || p.ExchangeRate.IsNegative() {
		return errorx.BadInput("amount and exchange rate must not be negative")
	}
	return nil
}

// PortfolioRepository 资金配置仓储，不存在时返回 nil, nil
type PortfolioRepository interface {
	// Create 同一用户同一币种重复时返回 Conflict
	Create(ctx context.Context, p *Portfolio) error
	Save(ctx context.Context, p *Portfolio) error
	Get(ctx context.Context, id uint) (*Portfolio, error)
	FindByUserAndCurrency(ctx context.Context, userID uint, currency exchange.Currency) (*Portfolio, error)
	ListByUser(ctx context.Context, userID uint) ([]*Portfolio, error)
	Delete(ctx context.Context, id uint) error
}
