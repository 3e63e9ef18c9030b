package domain

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/p2pexchange/pkg/utils"
)

// PaymentDetails 收款信息
type PaymentDetails struct {
	BankName      string
	AccountNumber string
	AccountName   string
	InteracEmail  string
}

// Terms 挂单的交易条款，买卖单共用
type Terms struct {
	SellCurrency        Currency
	BuyCurrency         Currency
	AvailableAmount     decimal.Decimal
	ExchangeRate        decimal.Decimal
	MinTransactionLimit decimal.Decimal
	// TransactionDuration 单位分钟
	TransactionDuration int
	Payment             PaymentDetails
}

// Pair 条款对应的币对
func (t Terms) Pair() Pair {
	return Pair{Sell: t.SellCurrency, Buy: t.BuyCurrency}
}

// TermsPatch 更新请求中出现的字段，nil 表示沿用原值
type TermsPatch struct {
	SellCurrency        *Currency
	BuyCurrency         *Currency
	AvailableAmount     *decimal.Decimal
	ExchangeRate        *decimal.Decimal
	MinTransactionLimit *decimal.Decimal
	TransactionDuration *int
	BankName            *string
	AccountNumber       *string
	AccountName         *string
	InteracEmail        *string
}

// Merge 合并原条款与更新字段
func (t Terms) Merge(p TermsPatch) Terms {
	merged := t
	if p.SellCurrency != nil {
		merged.SellCurrency = *p.SellCurrency
	}
	if p.BuyCurrency != nil {
		merged.BuyCurrency = *p.BuyCurrency
	}
	merged.AvailableAmount = utils.DerefDecimal(p.AvailableAmount, t.AvailableAmount)
	merged.ExchangeRate = utils.DerefDecimal(p.ExchangeRate, t.ExchangeRate)
	merged.MinTransactionLimit = utils.DerefDecimal(p.MinTransactionLimit, t.MinTransactionLimit)
	merged.TransactionDuration = utils.DerefInt(p.TransactionDuration, t.TransactionDuration)
	merged.Payment = PaymentDetails{
		BankName:      utils.DerefString(p.BankName, t.Payment.BankName),
		AccountNumber: utils.DerefString(p.AccountNumber, t.Payment.AccountNumber),
		AccountName:   utils.DerefString(p.AccountName, t.Payment.AccountName),
		InteracEmail:  utils.DerefString(p.InteracEmail, t.Payment.InteracEmail),
	}
	return merged
}

// missingPaymentField 返回收款币种缺失的第一个收款字段名，齐全时返回空串
func (p PaymentDetails) missingPaymentField(c Currency) string {
	blank := func(s string) bool { return strings.TrimSpace(s) == "" }
	switch c {
	case NGN:
		switch {
		case blank(p.BankName):
			return "bankName"
		case blank(p.AccountNumber):
			return "accountNumber"
		case blank(p.AccountName):
			return "accountName"
		}
	case CAD:
		if blank(p.InteracEmail) {
			return "interacEmail"
		}
	case USD:
		switch {
		case blank(p.BankName):
			return "bankName"
		case blank(p.AccountNumber):
			return "accountNumber"
		}
	}
	return ""
}

// OwnerSummary 挂单方的公开资料，列表查询时联表带出
type OwnerSummary struct {
	FirstName       string
	LastName        string
	Rating          decimal.Decimal
	CompletedTrades int
	CompletionRate  decimal.Decimal
}

// Reputation 订单上的统计字段
type Reputation struct {
	Rating          decimal.Decimal
	CompletedTrades int
	TotalTrades     int
	TotalReviews    int
	CompletionRate  decimal.Decimal
}
