// Package mysql 钱包的 GORM 只读实现
package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/p2pexchange/internal/account/domain"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"github.com/wyfcoding/p2pexchange/pkg/db"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletModel wallets 表映射
type WalletModel struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	UserID    uint            `gorm:"column:user_id;uniqueIndex:idx_user_currency;not null"`
	Currency  string          `gorm:"column:currency;type:varchar(3);uniqueIndex:idx_user_currency;not null"`
	Balance   decimal.Decimal `gorm:"column:balance;type:decimal(20,2);default:0;not null;comment:可用余额"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

// TableName 指定表名
func (WalletModel) TableName() string {
	return "wallets"
}

// WalletRepository domain.WalletRepository 的 GORM 实现
type WalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository 创建钱包仓储
func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

var (
	_ domain.WalletRepository = (*WalletRepository)(nil)
	_ exchange.WalletLookup   = (*WalletRepository)(nil)
)

// FindByUserAndCurrency 查询钱包，事务内加行锁
func (r *WalletRepository) FindByUserAndCurrency(ctx context.Context, userID uint, currency string) (*domain.Wallet, error) {
	q := db.Conn(ctx, r.db)
	if db.InTx(ctx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var m WalletModel
	if err := q.Where("user_id = ? AND currency = ?", userID, currency).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "wallet_repository.find failed", "user_id", userID, "currency", currency, "error", err)
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &domain.Wallet{
		ID:       m.ID,
		UserID:   m.UserID,
		Currency: m.Currency,
		Balance:  m.Balance,
	}, nil
}

// Balance 钱包余额，没有钱包时返回 nil
func (r *WalletRepository) Balance(ctx context.Context, userID uint, currency exchange.Currency) (*decimal.Decimal, error) {
	w, err := r.FindByUserAndCurrency(ctx, userID, currency.String())
	if err != nil || w == nil {
		return nil, err
	}
	return &w.Balance, nil
}
