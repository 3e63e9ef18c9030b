// Package mysql 资金配置的 GORM 实现
package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"github.com/wyfcoding/p2pexchange/internal/portfolio/domain"
	"github.com/wyfcoding/p2pexchange/pkg/db"
	"github.com/wyfcoding/p2pexchange/pkg/errorx"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
	"gorm.io/gorm"
)

// PortfolioModel portfolios 表映射
type PortfolioModel struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"`
	UserID          uint            `gorm:"column:user_id;uniqueIndex:idx_portfolio_user_currency;not null"`
	Currency        string          `gorm:"column:currency;type:varchar(3);uniqueIndex:idx_portfolio_user_currency;not null"`
	AvailableAmount decimal.Decimal `gorm:"column:available_amount;type:decimal(20,2);default:0;comment:计划兑换金额"`
	ExchangeRate    decimal.Decimal `gorm:"column:exchange_rate;type:decimal(20,4);default:0"`
	BankName        string          `gorm:"column:bank_name;type:varchar(100)"`
	AccountNumber   string          `gorm:"column:account_number;type:varchar(50)"`
	AccountName     string          `gorm:"column:account_name;type:varchar(100)"`
	InteracEmail    string          `gorm:"column:interac_email;type:varchar(255)"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

// TableName 指定表名
func (PortfolioModel) TableName() string {
	return "portfolios"
}

// PortfolioRepository domain.PortfolioRepository 的 GORM 实现
type PortfolioRepository struct {
	db *gorm.DB
}

// NewPortfolioRepository 创建资金配置仓储
func NewPortfolioRepository(db *gorm.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

var _ domain.PortfolioRepository = (*PortfolioRepository)(nil)

func (r *PortfolioRepository) Create(ctx context.Context, p *domain.Portfolio) error {
	m := toModel(p)
	if err := db.Conn(ctx, r.db).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errorx.Conflict("portfolio for %s already exists", p.Currency)
		}
		logger.Error(ctx, "portfolio_repository.create failed", "user_id", p.UserID, "error", err)
		return fmt.Errorf("failed to create portfolio: %w", err)
	}
	p.ID = m.ID
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *PortfolioRepository) Save(ctx context.Context, p *domain.Portfolio) error {
	m := toModel(p)
	if err := db.Conn(ctx, r.db).Save(m).Error; err != nil {
		logger.Error(ctx, "portfolio_repository.save failed", "portfolio_id", p.ID, "error", err)
		return fmt.Errorf("failed to save portfolio: %w", err)
	}
	p.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *PortfolioRepository) Get(ctx context.Context, id uint) (*domain.Portfolio, error) {
	var m PortfolioModel
	if err := db.Conn(ctx, r.db).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "portfolio_repository.get failed", "portfolio_id", id, "error", err)
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return toDomain(&m), nil
}

func (r *PortfolioRepository) FindByUserAndCurrency(ctx context.Context, userID uint, currency exchange.Currency) (*domain.Portfolio, error) {
	var m PortfolioModel
	err := db.Conn(ctx, r.db).Where("user_id = ? AND currency = ?", userID, string(currency)).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find portfolio: %w", err)
	}
	return toDomain(&m), nil
}

func (r *PortfolioRepository) ListByUser(ctx context.Context, userID uint) ([]*domain.Portfolio, error) {
	var models []PortfolioModel
	if err := db.Conn(ctx, r.db).Where("user_id = ?", userID).Order("currency ASC").Find(&models).Error; err != nil {
		logger.Error(ctx, "portfolio_repository.list failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	out := make([]*domain.Portfolio, len(models))
	for i := range models {
		out[i] = toDomain(&models[i])
	}
	return out, nil
}

func (r *PortfolioRepository) Delete(ctx context.Context, id uint) error {
	if err := db.Conn(ctx, r.db).Delete(&PortfolioModel{}, id).Error; err != nil {
		logger.Error(ctx, "portfolio_repository.delete failed", "portfolio_id", id, "error", err)
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	return nil
}

func toModel(p *domain.Portfolio) *PortfolioModel {
	return &PortfolioModel{
		ID:              p.ID,
		UserID:          p.UserID,
		Currency:        string(p.Currency),
		AvailableAmount: p.AvailableAmount,
		ExchangeRate:    p.ExchangeRate,
		BankName:        p.Payment.BankName,
		AccountNumber:   p.Payment.AccountNumber,
		AccountName:     p.Payment.AccountName,
		InteracEmail:    p.Payment.InteracEmail,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toDomain(m *PortfolioModel) *domain.Portfolio {
	return &domain.Portfolio{
		ID:              m.ID,
		UserID:          m.UserID,
		Currency:        exchange.Currency(m.Currency),
		AvailableAmount: m.AvailableAmount,
		ExchangeRate:    m.ExchangeRate,
		Payment: exchange.PaymentDetails{
			BankName:      m.BankName,
			AccountNumber: m.AccountNumber,
			AccountName:   m.AccountName,
			InteracEmail:  m.InteracEmail,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
