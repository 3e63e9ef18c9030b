// Package http 买卖单 HTTP 层共用的请求解析
package http

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"github.com/wyfcoding/p2pexchange/pkg/contextx"
	"github.com/wyfcoding/p2pexchange/pkg/errorx"
)

// ListQuery 公开列表的查询参数
type ListQuery struct {
	CounterpartCurrency string `form:"counterpartCurrency" binding:"omitempty,currency"`
	OwnCurrency         string `form:"ownCurrency" binding:"omitempty,currency"`
	Rating              string `form:"rating"`
	ExchangeRate        string `form:"exchangeRate"`
	CompletionTime      *int   `form:"completionTime" binding:"omitempty,min=1"`
	Search              string `form:"search"`
	SortBy              string `form:"sortBy" binding:"omitempty,oneof=exchangeRate completionTime rating recommended"`
	SortOrder           string `form:"sortOrder" binding:"omitempty,oneof=ASC DESC asc desc"`
	Page                int    `form:"page" binding:"omitempty,min=1"`
	Limit               int    `form:"limit" binding:"omitempty,min=1"`
}

// BindListFilter 解析列表查询参数，allowRecommended 为 false 时拒绝 recommended 排序
func BindListFilter(c *gin.Context, allowRecommended bool) (domain.ListFilter, error) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return domain.ListFilter{}, errorx.BadInput("invalid query: %s", err.Error())
	}

	f := domain.ListFilter{
		CompletionTime: q.CompletionTime,
		Search:         q.Search,
		SortBy:         domain.SortKey(q.SortBy),
		SortOrder:      q.SortOrder,
		Page:           q.Page,
		Limit:          q.Limit,
	}
	if f.SortBy == domain.SortRecommended && !allowRecommended {
		return domain.ListFilter{}, errorx.BadInput("sortBy recommended is not supported here")
	}

	var err error
	if f.CounterpartCurrency, err = optionalCurrency(q.CounterpartCurrency); err != nil {
		return domain.ListFilter{}, err
	}
	if f.OwnCurrency, err = optionalCurrency(q.OwnCurrency); err != nil {
		return domain.ListFilter{}, err
	}
	if f.Rating, err = optionalDecimal("rating", q.Rating); err != nil {
		return domain.ListFilter{}, err
	}
	if f.ExchangeRate, err = optionalDecimal("exchangeRate", q.ExchangeRate); err != nil {
		return domain.ListFilter{}, err
	}
	return f, nil
}

func optionalCurrency(s string) (*domain.Currency, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	c, err := domain.ParseCurrency(s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func optionalDecimal(name, s string) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, errorx.BadInput("%s must be a number", name)
	}
	return &d, nil
}

// ParseID 解析路径中的数字 id
func ParseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errorx.BadInput("invalid %s: %s", name, c.Param(name))
	}
	return uint(id), nil
}

// BindJSON 绑定请求体，失败时返回 BadInput
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return errorx.BadInput("invalid request body: %s", err.Error())
	}
	return nil
}

// CurrentUser 已认证用户 id，匿名时返回 0
func CurrentUser(c *gin.Context) uint {
	id, _ := contextx.UserID(c.Request.Context())
	return id
}

// ConversionRequest 换算请求体
type ConversionRequest struct {
	Amount       *decimal.Decimal `json:"amount" binding:"required"`
	FromCurrency string           `json:"fromCurrency" binding:"required,currency"`
	ToCurrency   string           `json:"toCurrency" binding:"required,currency"`
}

// Parse 转换为领域值
func (r ConversionRequest) Parse() (decimal.Decimal, domain.Currency, domain.Currency, error) {
	from, err := domain.ParseCurrency(r.FromCurrency)
	if err != nil {
		return decimal.Zero, "", "", err
	}
	to, err := domain.ParseCurrency(r.ToCurrency)
	if err != nil {
		return decimal.Zero, "", "", err
	}
	return *r.Amount, from, to, nil
}

// PaymentFields 请求体中的收款信息
type PaymentFields struct {
	BankName      string `json:"bankName" binding:"max=100"`
	AccountNumber string `json:"accountNumber" binding:"max=50"`
	AccountName   string `json:"accountName" binding:"max=100"`
	InteracEmail  string `json:"interacEmail" binding:"omitempty,email"`
}

// Details 转换为领域收款信息
func (p PaymentFields) Details() domain.PaymentDetails {
	return domain.PaymentDetails{
		BankName:      strings.TrimSpace(p.BankName),
		AccountNumber: strings.TrimSpace(p.AccountNumber),
		AccountName:   strings.TrimSpace(p.AccountName),
		InteracEmail:  strings.TrimSpace(p.InteracEmail),
	}
}

// TermsRequest 创建挂单共用的条款字段
type TermsRequest struct {
	SellCurrency        string           `json:"sellCurrency" binding:"required,currency"`
	BuyCurrency         string           `json:"buyCurrency" binding:"required,currency"`
	AvailableAmount     *decimal.Decimal `json:"availableAmount" binding:"required"`
	ExchangeRate        *decimal.Decimal `json:"exchangeRate" binding:"required"`
	MinTransactionLimit *decimal.Decimal `json:"minTransactionLimit" binding:"required"`
	TransactionDuration *int             `json:"transactionDuration" binding:"required"`
	PaymentFields
}

// Terms 转换为领域条款
func (r TermsRequest) Terms() (domain.Terms, error) {
	sell, err := domain.ParseCurrency(r.SellCurrency)
	if err != nil {
		return domain.Terms{}, err
	}
	buy, err := domain.ParseCurrency(r.BuyCurrency)
	if err != nil {
		return domain.Terms{}, err
	}
	return domain.Terms{
		SellCurrency:        sell,
		BuyCurrency:         buy,
		AvailableAmount:     *r.AvailableAmount,
		ExchangeRate:        *r.ExchangeRate,
		MinTransactionLimit: *r.MinTransactionLimit,
		TransactionDuration: *r.TransactionDuration,
		Payment:             r.Details(),
	}, nil
}

// PatchRequest 更新挂单共用字段，缺省字段沿用原值
type PatchRequest struct {
	SellCurrency        *string          `json:"sellCurrency" binding:"omitempty,currency"`
	BuyCurrency         *string          `json:"buyCurrency" binding:"omitempty,currency"`
	AvailableAmount     *decimal.Decimal `json:"availableAmount"`
	ExchangeRate        *decimal.Decimal `json:"exchangeRate"`
	MinTransactionLimit *decimal.Decimal `json:"minTransactionLimit"`
	TransactionDuration *int             `json:"transactionDuration"`
	BankName            *string          `json:"bankName"`
	AccountNumber       *string          `json:"accountNumber"`
	AccountName         *string          `json:"accountName"`
	InteracEmail        *string          `json:"interacEmail" binding:"omitempty,email"`
}

// Patch 转换为领域补丁
func (r PatchRequest) Patch() (domain.TermsPatch, error) {
	p := domain.TermsPatch{
		AvailableAmount:     r.AvailableAmount,
		ExchangeRate:        r.ExchangeRate,
		MinTransactionLimit: r.MinTransactionLimit,
		TransactionDuration: r.TransactionDuration,
		BankName:            r.BankName,
		AccountNumber:       r.AccountNumber,
		AccountName:         r.AccountName,
		InteracEmail:        r.InteracEmail,
	}
	if r.SellCurrency != nil {
		c, err := domain.ParseCurrency(*r.SellCurrency)
		if err != nil {
			return domain.TermsPatch{}, err
		}
		p.SellCurrency = &c
	}
	if r.BuyCurrency != nil {
		c, err := domain.ParseCurrency(*r.BuyCurrency)
		if err != nil {
			return domain.TermsPatch{}, err
		}
		p.BuyCurrency = &c
	}
	return p, nil
}
