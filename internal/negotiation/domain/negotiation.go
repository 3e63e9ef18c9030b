// Package domain 卖单议价
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status 议价状态
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusAgreed     Status = "agreed"
	StatusRejected   Status = "rejected"
	StatusCancelled  Status = "cancelled"
)

// ActiveStatuses 阻止卖单取消的状态
var ActiveStatuses = []Status{StatusPending, StatusInProgress, StatusAgreed}

// OpenStatuses 买家不能重复发起议价的状态
var OpenStatuses = []Status{StatusPending, StatusInProgress}

// Negotiation 买家对卖单汇率的还价
type Negotiation struct {
	ID           uint
	SellOrderID  uint
	BuyerID      uint
	SellerID     uint
	ProposedRate decimal.Decimal
	Status       Status
	Message      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewNegotiation 创建待处理的议价
func NewNegotiation(sellOrderID, buyerID, sellerID uint, proposedRate decimal.Decimal, message string) *Negotiation {
	return &Negotiation{
		SellOrderID:  sellOrderID,
		BuyerID:      buyerID,
		SellerID:     sellerID,
		ProposedRate: proposedRate,
		Status:       StatusPending,
		Message:      message,
	}
}

// NegotiationRepository 议价仓储
type NegotiationRepository interface {
	Create(ctx context.Context, n *Negotiation) error
	// FindOpenByBuyer 同一买家在该卖单上未结束的议价，没有时返回 nil, nil
	FindOpenByBuyer(ctx context.Context, sellOrderID, buyerID uint) (*Negotiation, error)
	// FindLatestAgreed 同一买家在该卖单上最近一次达成的议价
	FindLatestAgreed(ctx context.Context, sellOrderID, buyerID uint) (*Negotiation, error)
	HasActive(ctx context.Context, sellOrderID uint) (bool, error)
}
