// Package domain 汇兑撮合的核心定价领域：币种、订单状态、换算、议价汇率解析、列表筛选与生命周期校验
package domain

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/p2pexchange/pkg/errorx"
)

// Currency 支持的法币
type Currency string

const (
	CAD Currency = "CAD"
	NGN Currency = "NGN"
	USD Currency = "USD"
)

// Currencies 全部支持的币种
var Currencies = []Currency{CAD, NGN, USD}

// rank 决定币对中的基础币种：USD > CAD > NGN
var rank = map[Currency]int{
	USD: 3,
	CAD: 2,
	NGN: 1,
}

// sellerFloor 卖单 availableAmount 下限
var sellerFloor = map[Currency]decimal.Decimal{
	CAD: decimal.NewFromInt(100),
	NGN: decimal.NewFromInt(100000),
	USD: decimal.NewFromInt(100),
}

// ParseCurrency 解析币种代码，大小写不敏感
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", errorx.BadInput("unsupported currency: %s", s)
	}
	return c, nil
}

// Valid 是否为支持的币种
func (c Currency) Valid() bool {
	_, ok := rank[c]
	return ok
}

func (c Currency) String() string { return string(c) }

// SellerFloor 卖单在该币种下的最小挂单量
func (c Currency) SellerFloor() decimal.Decimal {
	return sellerFloor[c]
}

// Pair 订单币对
type Pair struct {
	Sell Currency
	Buy  Currency
}

// Base 币对中排名更高的一方，汇率按 “quote / 1 base” 报价
func (p Pair) Base() Currency {
	if rank[p.Sell] >= rank[p.Buy] {
		return p.Sell
	}
	return p.Buy
}

// Quote 币对中的报价币种
func (p Pair) Quote() Currency {
	if p.Base() == p.Sell {
		return p.Buy
	}
	return p.Sell
}

// Contains 判断 from/to 是否恰好为该币对的两端
func (p Pair) Contains(from, to Currency) bool {
	return (from == p.Sell && to == p.Buy) || (from == p.Buy && to == p.Sell)
}
