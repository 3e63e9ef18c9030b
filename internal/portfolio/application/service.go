// Package application 资金配置增删改查，仅本人可访问
package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"github.com/wyfcoding/p2pexchange/internal/portfolio/domain"
	"github.com/wyfcoding/p2pexchange/pkg/errorx"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
)

// CreatePortfolioCommand 创建资金配置
type CreatePortfolioCommand struct {
	UserID          uint
	Currency        exchange.Currency
	AvailableAmount decimal.Decimal
	ExchangeRate    decimal.Decimal
	Payment         exchange.PaymentDetails
}

// PortfolioDTO 资金配置
type PortfolioDTO struct {
	ID              uint            `json:"id"`
	UserID          uint            `json:"userId"`
	Currency        string          `json:"currency"`
	AvailableAmount decimal.Decimal `json:"availableAmount"`
	ExchangeRate    decimal.Decimal `json:"exchangeRate"`
	BankName        string          `json:"bankName,omitempty"`
	AccountNumber   string          `json:"accountNumber,omitempty"`
	AccountName     string          `json:"accountName,omitempty"`
	InteracEmail    string          `json:"interacEmail,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// PortfolioService 资金配置服务
type PortfolioService struct {
	repo domain.PortfolioRepository
}

// NewPortfolioService 创建资金配置服务
func NewPortfolioService(repo domain.PortfolioRepository) *PortfolioService {
	return &PortfolioService{repo: repo}
}

// Create 同一币种只能有一条
func (s *PortfolioService) Create(ctx context.Context, cmd CreatePortfolioCommand) (*PortfolioDTO, error) {
	p, err := domain.NewPortfolio(cmd.UserID, cmd.Currency, cmd.AvailableAmount, cmd.ExchangeRate, cmd.Payment)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByUserAndCurrency(ctx, cmd.UserID, cmd.Currency)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errorx.Conflict("portfolio for %s already exists", cmd.Currency)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Portfolio created", "portfolio_id", p.ID, "user_id", p.UserID, "currency", p.Currency)
	return toDTO(p), nil
}

// ListMine 当前用户的全部资金配置
func (s *PortfolioService) ListMine(ctx context.Context, userID uint) ([]*PortfolioDTO, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*PortfolioDTO, len(items))
	for i, p := range items {
		out[i] = toDTO(p)
	}
	return out, nil
}

// Get 不属于当前用户时按不存在处理
func (s *PortfolioService) Get(ctx context.Context, id, userID uint) (*PortfolioDTO, error) {
	p, err := s.loadOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return toDTO(p), nil
}

// Update 更新本人的资金配置
func (s *PortfolioService) Update(ctx context.Context, id, userID uint, patch domain.Patch) (*PortfolioDTO, error) {
	p, err := s.loadOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(patch); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return toDTO(p), nil
}

// Delete 删除本人的资金配置
func (s *PortfolioService) Delete(ctx context.Context, id, userID uint) error {
	if _, err := s.loadOwned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info(ctx, "Portfolio deleted", "portfolio_id", id, "user_id", userID)
	return nil
}

func (s *PortfolioService) loadOwned(ctx context.Context, id, userID uint) (*domain.Portfolio, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.OwnedBy(userID) {
		return nil, errorx.NotFound("portfolio %d not found", id)
	}
	return p, nil
}

func toDTO(p *domain.Portfolio) *PortfolioDTO {
	return &PortfolioDTO{
		ID:              p.ID,
		UserID:          p.UserID,
		Currency:        p.Currency.String(),
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
