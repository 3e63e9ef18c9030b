package application

import (
	"time"

	"github.com/shopspring/decimal"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"github.com/wyfcoding/p2pexchange/internal/seller/domain"
)

// CreateSellOrderCommand 创建卖单命令
type CreateSellOrderCommand struct {
	UserID         uint
	Terms          exchange.Terms
	TermsOfPayment string
	Action         exchange.OrderAction
}

// UpdateSellOrderCommand 更新卖单命令，未提供的字段沿用原值
type UpdateSellOrderCommand struct {
	OrderID        uint
	UserID         uint
	Patch          exchange.TermsPatch
	TermsOfPayment *string
	Action         *exchange.OrderAction
}

// RequestNegotiationCommand 买家发起议价
type RequestNegotiationCommand struct {
	SellOrderID  uint
	BuyerID      uint
	ProposedRate decimal.Decimal
	Message      string
}

// ConversionQuery 换算请求，RequesterID 为 0 表示匿名
type ConversionQuery struct {
	OrderID      uint
	Amount       decimal.Decimal
	FromCurrency exchange.Currency
	ToCurrency   exchange.Currency
	RequesterID  uint
}

// OwnerDTO 挂单方资料
type OwnerDTO struct {
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	Rating          decimal.Decimal `json:"rating"`
	CompletedTrades int             `json:"completedTrades"`
	CompletionRate  decimal.Decimal `json:"completionRate"`
}

// SellOrderDTO 卖单
type SellOrderDTO struct {
	ID                  uint            `json:"id"`
	UserID              uint            `json:"userId"`
	SellCurrency        string          `json:"sellCurrency"`
	BuyCurrency         string          `json:"buyCurrency"`
	AvailableAmount     decimal.Decimal `json:"availableAmount"`
	ExchangeRate        decimal.Decimal `json:"exchangeRate"`
	MinTransactionLimit decimal.Decimal `json:"minTransactionLimit"`
	TransactionDuration int             `json:"transactionDuration"`
	BankName            string          `json:"bankName,omitempty"`
	AccountNumber       string          `json:"accountNumber,omitempty"`
	AccountName         string          `json:"accountName,omitempty"`
	InteracEmail        string          `json:"interacEmail,omitempty"`
	TermsOfPayment      string          `json:"termsOfPayment,omitempty"`
	Status              string          `json:"status"`
	IsActive            bool            `json:"isActive"`
	Rating              decimal.Decimal `json:"rating"`
	CompletedTrades     int             `json:"completedTrades"`
	TotalTrades         int             `json:"totalTrades"`
	TotalReviews        int             `json:"totalReviews"`
	CompletionRate      decimal.Decimal `json:"completionRate"`
	AwaitingSeller      bool            `json:"awaitingSeller"`
	IsNegotiating       bool            `json:"isNegotiating"`
	Owner               *OwnerDTO       `json:"user,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
	MatchedAt           *time.Time      `json:"matchedAt,omitempty"`
	CompletedAt         *time.Time      `json:"completedAt,omitempty"`
}

// SellOrderPage 分页结果
type SellOrderPage struct {
	Items       []*SellOrderDTO
	Total       int64
	CurrentPage int
	TotalPages  int64
}

// NegotiationDTO 议价
type NegotiationDTO struct {
	ID           uint            `json:"id"`
	SellOrderID  uint            `json:"sellOrderId"`
	BuyerID      uint            `json:"buyerId"`
	SellerID     uint            `json:"sellerId"`
	ProposedRate decimal.Decimal `json:"proposedRate"`
	Status       string          `json:"status"`
	Message      string          `json:"message,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// RateComparisonDTO 议价对比
type RateComparisonDTO struct {
	Difference       decimal.Decimal `json:"difference"`
	PercentageChange decimal.Decimal `json:"percentageChange"`
	BuyerImpact      string          `json:"buyerImpact"`
}

// ConversionDTO 换算结果
type ConversionDTO struct {
	FromAmount            decimal.Decimal    `json:"fromAmount"`
	FromCurrency          string             `json:"fromCurrency"`
	ToAmount              decimal.Decimal    `json:"toAmount"`
	ToCurrency            string             `json:"toCurrency"`
	Rate                  decimal.Decimal    `json:"rate"`
	RateSource            string             `json:"rateSource"`
	Fee                   decimal.Decimal    `json:"fee"`
	IsUsingNegotiatedRate bool               `json:"isUsingNegotiatedRate"`
	OriginalSellerRate    decimal.Decimal    `json:"originalSellerRate"`
	NegotiationID         *uint              `json:"negotiationId,omitempty"`
	RateComparison        *RateComparisonDTO `json:"rateComparison,omitempty"`
}

func toSellOrderDTO(o *domain.SellOrder) *SellOrderDTO {
	if o == nil {
		return nil
	}
	dto := &SellOrderDTO{
		ID:                  o.ID,
		UserID:              o.UserID,
		SellCurrency:        o.SellCurrency.String(),
		BuyCurrency:         o.BuyCurrency.String(),
		AvailableAmount:     o.AvailableAmount,
		ExchangeRate:        o.ExchangeRate,
		MinTransactionLimit: o.MinTransactionLimit,
		TransactionDuration: o.TransactionDuration,
		BankName:            o.Payment.BankName,
		AccountNumber:       o.Payment.AccountNumber,
		AccountName:         o.Payment.AccountName,
		InteracEmail:        o.Payment.InteracEmail,
		TermsOfPayment:      o.TermsOfPayment,
		Status:              string(o.Status),
		IsActive:            o.IsActive,
		Rating:              o.Rating,
		CompletedTrades:     o.CompletedTrades,
		TotalTrades:         o.TotalTrades,
		TotalReviews:        o.TotalReviews,
		CompletionRate:      o.CompletionRate,
		AwaitingSeller:      o.AwaitingSeller,
		IsNegotiating:       o.IsNegotiating,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
		MatchedAt:           o.MatchedAt,
		CompletedAt:         o.CompletedAt,
	}
	if o.Owner != nil {
		dto.Owner = &OwnerDTO{
			FirstName:       o.Owner.FirstName,
			LastName:        o.Owner.LastName,
			Rating:          o.Owner.Rating,
			CompletedTrades: o.Owner.CompletedTrades,
			CompletionRate:  o.Owner.CompletionRate,
		}
	}
	return dto
}

func toSellOrderDTOs(orders []*domain.SellOrder) []*SellOrderDTO {
	out := make([]*SellOrderDTO, len(orders))
	for i, o := range orders {
		out[i] = toSellOrderDTO(o)
	}
	return out
}

func toConversionDTO(c *exchange.Conversion, res exchange.RateResolution) *ConversionDTO {
	dto := &ConversionDTO{
		FromAmount:            c.FromAmount,
		FromCurrency:          c.FromCurrency.String(),
		ToAmount:              c.ToAmount,
		ToCurrency:            c.ToCurrency.String(),
		Rate:                  c.Rate,
		RateSource:            string(res.RateSource),
		Fee:                   c.Fee,
		IsUsingNegotiatedRate: res.IsUsingNegotiatedRate,
		OriginalSellerRate:    res.OriginalRate,
		NegotiationID:         res.NegotiationID,
	}
	if res.Comparison != nil {
		dto.RateComparison = &RateComparisonDTO{
			Difference:       res.Comparison.Difference,
			PercentageChange: res.Comparison.PercentageChange,
			BuyerImpact:      string(res.Comparison.BuyerImpact),
		}
	}
	return dto
}
