package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/p2pexchange/internal/buyer/domain"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
)

// BuyOrderModel buy_orders 表映射
type BuyOrderModel struct {
	ID                  uint            `gorm:"primaryKey;autoIncrement"`
	UserID              uint            `gorm:"column:user_id;index;not null;comment:挂单用户"`
	SellCurrency        string          `gorm:"column:sell_currency;type:varchar(3);index;not null;comment:支付币种"`
	BuyCurrency         string          `gorm:"column:buy_currency;type:varchar(3);index;not null;comment:想要的币种"`
	AvailableAmount     decimal.Decimal `gorm:"column:available_amount;type:decimal(20,2);not null"`
	ExchangeRate        decimal.Decimal `gorm:"column:exchange_rate;type:decimal(20,4);not null"`
	MinTransactionLimit decimal.Decimal `gorm:"column:min_transaction_limit;type:decimal(20,2);not null"`
	TransactionDuration int             `gorm:"column:transaction_duration;not null;comment:分钟"`
	BankName            string          `gorm:"column:bank_name;type:varchar(100)"`
	AccountNumber       string          `gorm:"column:account_number;type:varchar(50)"`
	AccountName         string          `gorm:"column:account_name;type:varchar(100)"`
	InteracEmail        string          `gorm:"column:interac_email;type:varchar(255)"`
	Status              string          `gorm:"column:status;type:varchar(20);index;not null"`
	IsActive            bool            `gorm:"column:is_active;index;default:true"`
	Rating              decimal.Decimal `gorm:"column:rating;type:decimal(3,1);default:0"`
	CompletedTrades     int             `gorm:"column:completed_trades;default:0"`
	TotalTrades         int             `gorm:"column:total_trades;default:0"`
	TotalReviews        int             `gorm:"column:total_reviews;default:0"`
	CompletionRate      decimal.Decimal `gorm:"column:completion_rate;type:decimal(5,2);default:0"`
	CreatedAt           time.Time       `gorm:"column:created_at;index"`
	UpdatedAt           time.Time       `gorm:"column:updated_at"`
	MatchedAt           *time.Time      `gorm:"column:matched_at"`
	CompletedAt         *time.Time      `gorm:"column:completed_at"`
}

// TableName 指定表名
func (BuyOrderModel) TableName() string {
	return "buy_orders"
}

type buyOrderRow struct {
	BuyOrderModel        `gorm:"embedded"`
	OwnerFirstName       string          `gorm:"column:owner_first_name"`
	OwnerLastName        string          `gorm:"column:owner_last_name"`
	OwnerRating          decimal.Decimal `gorm:"column:owner_rating"`
	OwnerCompletedTrades int             `gorm:"column:owner_completed_trades"`
	OwnerCompletionRate  decimal.Decimal `gorm:"column:owner_completion_rate"`
}

func toModel(o *domain.BuyOrder) *BuyOrderModel {
	return &BuyOrderModel{
		ID:                  o.ID,
		UserID:              o.UserID,
		SellCurrency:        string(o.SellCurrency),
		BuyCurrency:         string(o.BuyCurrency),
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
}

func toDomain(m *BuyOrderModel) *domain.BuyOrder {
	return &domain.BuyOrder{
		ID:     m.ID,
		UserID: m.UserID,
		Terms: exchange.Terms{
			SellCurrency:        exchange.Currency(m.SellCurrency),
			BuyCurrency:         exchange.Currency(m.BuyCurrency),
			AvailableAmount:     m.AvailableAmount,
			ExchangeRate:        m.ExchangeRate,
			MinTransactionLimit: m.MinTransactionLimit,
			TransactionDuration: m.TransactionDuration,
			Payment: exchange.PaymentDetails{
				BankName:      m.BankName,
				AccountNumber: m.AccountNumber,
				AccountName:   m.AccountName,
				InteracEmail:  m.InteracEmail,
			},
		},
		Status:   exchange.OrderStatus(m.Status),
		IsActive: m.IsActive,
		Reputation: exchange.Reputation{
			Rating:          m.Rating,
			CompletedTrades: m.CompletedTrades,
			TotalTrades:     m.TotalTrades,
			TotalReviews:    m.TotalReviews,
			CompletionRate:  m.CompletionRate,
		},
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		MatchedAt:   m.MatchedAt,
		CompletedAt: m.CompletedAt,
	}
}

func rowToDomain(r *buyOrderRow) *domain.BuyOrder {
	o := toDomain(&r.BuyOrderModel)
	o.Owner = &exchange.OwnerSummary{
		FirstName:       r.OwnerFirstName,
		LastName:        r.OwnerLastName,
		Rating:          r.OwnerRating,
		CompletedTrades: r.OwnerCompletedTrades,
		CompletionRate:  r.OwnerCompletionRate,
	}
	return o
}
