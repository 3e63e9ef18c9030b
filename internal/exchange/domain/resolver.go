package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
	"github.com/wyfcoding/p2pexchange/pkg/utils"
)

// RateSource 生效汇率来源
type RateSource string

const (
	RateSourceNegotiated    RateSource = "negotiated"
	RateSourceSellerListing RateSource = "seller_listing"
	RateSourceBuyerListing  RateSource = "buyer_listing"
)

// BuyerImpact 议价后买方的成本变化
type BuyerImpact string

const (
	PaysMore BuyerImpact = "pays_more"
	PaysLess BuyerImpact = "pays_less"
)

// AgreedRate 已达成一致的议价
type AgreedRate struct {
	NegotiationID uint
	ProposedRate  decimal.Decimal
}

// AgreedRateFinder 查询 (订单, 买家) 是否有已达成的议价，没有时返回 nil, nil
type AgreedRateFinder interface {
	FindAgreed(ctx context.Context, sellOrderID, buyerID uint) (*AgreedRate, error)
}

// RateComparison 议价汇率与挂单汇率的对比
type RateComparison struct {
	Difference       decimal.Decimal
	PercentageChange decimal.Decimal
	BuyerImpact      BuyerImpact
}

// RateResolution 汇率解析结果
type RateResolution struct {
	EffectiveRate         decimal.Decimal
	OriginalRate          decimal.Decimal
	IsUsingNegotiatedRate bool
	RateSource            RateSource
	NegotiationID         *uint
	Comparison            *RateComparison
}

// RateResolver 为卖单解析生效汇率
type RateResolver struct {
	finder AgreedRateFinder
}

// NewRateResolver 创建汇率解析器
func NewRateResolver(finder AgreedRateFinder) *RateResolver {
	return &RateResolver{finder: finder}
}

// Resolve 请求方有已达成的议价时使用议价汇率，否则使用挂单汇率
// 议价查询失败只记录告警，不影响换算
func (r *RateResolver) Resolve(ctx context.Context, sellOrderID uint, postedRate decimal.Decimal, requesterID uint) RateResolution {
	res := RateResolution{
		EffectiveRate: postedRate,
		OriginalRate:  postedRate,
		RateSource:    RateSourceSellerListing,
	}
	if requesterID == 0 || r.finder == nil {
		return res
	}

	agreed, err := r.finder.FindAgreed(ctx, sellOrderID, requesterID)
	if err != nil {
		logger.Warn(ctx, "Negotiation lookup failed, falling back to listing rate",
			"sell_order_id", sellOrderID,
			"requester_id", requesterID,
			"error", err,
		)
		return res
	}
	if agreed == nil {
		return res
	}

	id := agreed.NegotiationID
	res.EffectiveRate = agreed.ProposedRate
	res.IsUsingNegotiatedRate = true
	res.RateSource = RateSourceNegotiated
	res.NegotiationID = &id
	res.Comparison = CompareRates(postedRate, agreed.ProposedRate)
	return res
}

// CompareRates 计算议价相对挂单汇率的差值与百分比
func CompareRates(original, negotiated decimal.Decimal) *RateComparison {
	diff := utils.RoundMoney(negotiated.Sub(original))

	pct := decimal.Zero
	if !original.IsZero() {
		pct = utils.RoundMoney(negotiated.Sub(original).Div(original).Mul(decimal.NewFromInt(100)))
	}

	impact := PaysLess
	if diff.IsPositive() {
		impact = PaysMore
	}

	return &RateComparison{
		Difference:       diff,
		PercentageChange: pct,
		BuyerImpact:      impact,
	}
}
