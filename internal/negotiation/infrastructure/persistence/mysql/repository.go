// Package mysql 议价仓储的 GORM 实现
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"github.com/wyfcoding/p2pexchange/internal/negotiation/domain"
	"github.com/wyfcoding/p2pexchange/pkg/db"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
	"gorm.io/gorm"
)

// NegotiationModel negotiations 表映射
type NegotiationModel struct {
	gorm.Model
	SellOrderID  uint            `gorm:"column:sell_order_id;index:idx_order_buyer;not null;comment:卖单ID"`
	BuyerID      uint            `gorm:"column:buyer_id;index:idx_order_buyer;not null;comment:发起议价的买家"`
	SellerID     uint            `gorm:"column:seller_id;index;not null"`
	ProposedRate decimal.Decimal `gorm:"column:proposed_rate;type:decimal(20,4);not null;comment:还价汇率"`
	Status       string          `gorm:"column:status;type:varchar(20);index;not null"`
	Message      string          `gorm:"column:message;type:varchar(500)"`
}

// TableName 指定表名
func (NegotiationModel) TableName() string {
	return "negotiations"
}

// NegotiationRepository domain.NegotiationRepository 的 GORM 实现
// 同时满足汇率解析的 AgreedRateFinder 与取消校验的 NegotiationGuard
type NegotiationRepository struct {
	db *gorm.DB
}

// NewNegotiationRepository 创建议价仓储
func NewNegotiationRepository(db *gorm.DB) *NegotiationRepository {
	return &NegotiationRepository{db: db}
}

var (
	_ domain.NegotiationRepository = (*NegotiationRepository)(nil)
	_ exchange.AgreedRateFinder    = (*NegotiationRepository)(nil)
	_ exchange.NegotiationGuard    = (*NegotiationRepository)(nil)
)

// Create 保存新议价
func (r *NegotiationRepository) Create(ctx context.Context, n *domain.Negotiation) error {
	m := &NegotiationModel{
		SellOrderID:  n.SellOrderID,
		BuyerID:      n.BuyerID,
		SellerID:     n.SellerID,
		ProposedRate: n.ProposedRate,
		Status:       string(n.Status),
		Message:      n.Message,
	}
	if err := db.Conn(ctx, r.db).Create(m).Error; err != nil {
		logger.Error(ctx, "negotiation_repository.create failed", "sell_order_id", n.SellOrderID, "error", err)
		return fmt.Errorf("failed to create negotiation: %w", err)
	}
	n.ID = m.ID
	n.CreatedAt = m.CreatedAt
	n.UpdatedAt = m.UpdatedAt
	return nil
}

// FindOpenByBuyer 实现 domain.NegotiationRepository.FindOpenByBuyer
func (r *NegotiationRepository) FindOpenByBuyer(ctx context.Context, sellOrderID, buyerID uint) (*domain.Negotiation, error) {
	return r.findOne(ctx, sellOrderID, buyerID, domain.OpenStatuses)
}

// FindLatestAgreed 实现 domain.NegotiationRepository.FindLatestAgreed
func (r *NegotiationRepository) FindLatestAgreed(ctx context.Context, sellOrderID, buyerID uint) (*domain.Negotiation, error) {
	return r.findOne(ctx, sellOrderID, buyerID, []domain.Status{domain.StatusAgreed})
}

func (r *NegotiationRepository) findOne(ctx context.Context, sellOrderID, buyerID uint, statuses []domain.Status) (*domain.Negotiation, error) {
	var m NegotiationModel
	err := db.Conn(ctx, r.db).
		Where("sell_order_id = ? AND buyer_id = ? AND status IN ?", sellOrderID, buyerID, toStrings(statuses)).
		Order("updated_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find negotiation: %w", err)
	}
	return toDomain(&m), nil
}

// HasActive 实现 exchange.NegotiationGuard
func (r *NegotiationRepository) HasActive(ctx context.Context, sellOrderID uint) (bool, error) {
	var count int64
	err := db.Conn(ctx, r.db).Model(&NegotiationModel{}).
		Where("sell_order_id = ? AND status IN ?", sellOrderID, toStrings(domain.ActiveStatuses)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count negotiations: %w", err)
	}
	return count > 0, nil
}

// FindAgreed 实现 exchange.AgreedRateFinder
func (r *NegotiationRepository) FindAgreed(ctx context.Context, sellOrderID, buyerID uint) (*exchange.AgreedRate, error) {
	n, err := r.FindLatestAgreed(ctx, sellOrderID, buyerID)
	if err != nil || n == nil {
		return nil, err
	}
	return &exchange.AgreedRate{NegotiationID: n.ID, ProposedRate: n.ProposedRate}, nil
}

func toStrings(statuses []domain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func toDomain(m *NegotiationModel) *domain.Negotiation {
	return &domain.Negotiation{
		ID:           m.ID,
		SellOrderID:  m.SellOrderID,
		BuyerID:      m.BuyerID,
		SellerID:     m.SellerID,
		ProposedRate: m.ProposedRate,
		Status:       domain.Status(m.Status),
		Message:      m.Message,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
