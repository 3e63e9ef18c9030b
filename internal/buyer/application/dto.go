package application

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/p2pexchange/internal/buyer/domain"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
)

// CreateBuyOrderCommand 创建买单命令
type CreateBuyOrderCommand struct {
	UserID uint
	Terms  exchange.Terms
}

// UpdateBuyOrderCommand 更新买单命令
type UpdateBuyOrderCommand struct {
	OrderID uint
	UserID  uint
	Patch   exchange.TermsPatch
}

// ConversionQuery 买单换算请求，RequesterID 为 0 表示匿名
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

// BuyOrderDTO 买单
type BuyOrderDTO struct {
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
	Status              string          `json:"status"`
	IsActive            bool            `json:"isActive"`
	Rating              decimal.Decimal `json:"rating"`
	CompletedTrades     int             `json:"completedTrades"`
	TotalTrades         int             `json:"totalTrades"`
	TotalReviews        int             `json:"totalReviews"`
	CompletionRate      decimal.Decimal `json:"completionRate"`
	Owner               *OwnerDTO       `json:"user,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
	MatchedAt           *time.Time      `json:"matchedAt,omitempty"`
	CompletedAt         *time.Time      `json:"completedAt,omitempty"`
}

// BuyOrderPage 分页结果
type BuyOrderPage = exchange.Page[*BuyOrderDTO]

// ConversionDTO 买单换算结果
type ConversionDTO struct {
	FromAmount   decimal.Decimal `json:"fromAmount"`
	FromCurrency string          `json:"fromCurrency"`
	ToAmount     decimal.Decimal `json:"toAmount"`
	ToCurrency   string          `json:"toCurrency"`
	Rate         decimal.Decimal `json:"rate"`
	RateSource   string          `json:"rateSource"`
	Fee          decimal.Decimal `json:"fee"`
	// 买单不参与议价，恒为 false
	IsUsingNegotiatedRate bool             `json:"isUsingNegotiatedRate"`
	OriginalSellerRate    decimal.Decimal  `json:"originalSellerRate"`
	WalletBalance         *decimal.Decimal `json:"walletBalance"`
}

func toBuyOrderDTO(o *domain.BuyOrder) *BuyOrderDTO {
	if o == nil {
		return nil
	}
	dto := &BuyOrderDTO{
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
		Status:              string(o.Status),
		IsActive:            o.IsActive,
		Rating:              o.Rating,
		CompletedTrades:     o.CompletedTrades,
		TotalTrades:         o.TotalTrades,
		TotalReviews:        o.TotalReviews,
		CompletionRate:      o.CompletionRate,
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

func toPage(orders []*domain.BuyOrder, total int64, p *exchange.ListFilter) *BuyOrderPage {
	items := make([]*BuyOrderDTO, len(orders))
	for i, o := range orders {
		items[i] = toBuyOrderDTO(o)
	}
	return &BuyOrderPage{Items: items, Total: total, Pagination: p.Pagination(total)}
}
