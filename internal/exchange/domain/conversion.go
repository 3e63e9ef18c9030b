package domain

import (
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/p2pexchange/pkg/errorx"
	"github.com/wyfcoding/p2pexchange/pkg/utils"
)

// Conversion 换算结果
type Conversion struct {
	FromAmount   decimal.Decimal
	FromCurrency Currency
	ToAmount     decimal.Decimal
	ToCurrency   Currency
	Rate         decimal.Decimal
	Fee          decimal.Decimal
}

// Convert 按订单币对与汇率换算金额
// base -> quote 乘以汇率，quote -> base 除以汇率，结果保留两位小数
func Convert(amount decimal.Decimal, from, to Currency, pair Pair, rate decimal.Decimal) (*Conversion, error) {
	if !amount.IsPositive() {
		return nil, errorx.BadInput("amount must be greater than 0")
	}
	if !rate.IsPositive() {
		return nil, errorx.BadInput("exchange rate must be greater than 0")
	}
	if from == to || !pair.Contains(from, to) {
		return nil, errorx.BadInput("unsupported conversion: %s to %s", from, to)
	}

	var converted decimal.Decimal
	if from == pair.Base() {
		converted = amount.Mul(rate)
	} else {
		converted = amount.Div(rate)
	}

	return &Conversion{
		FromAmount:   amount,
		FromCurrency: from,
		ToAmount:     utils.RoundMoney(converted),
		ToCurrency:   to,
		Rate:         rate,
		Fee:          decimal.Zero,
	}, nil
}
