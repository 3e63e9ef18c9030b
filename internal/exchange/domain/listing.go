package domain

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/p2pexchange/pkg/utils"
)

// SortKey 列表排序字段
type SortKey string

const (
	SortCreatedAt      SortKey = ""
	SortExchangeRate   SortKey = "exchangeRate"
	SortCompletionTime SortKey = "completionTime"
	SortRating         SortKey = "rating"
	// SortRecommended 仅卖单列表：成交数降序、完成率降序、注册时间升序
	SortRecommended SortKey = "recommended"
)

// SortOrder 排序方向
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// ListFilter 公开挂单列表的筛选条件
type ListFilter struct {
	// CallerID 浏览者，结果中排除其自己的挂单
	CallerID uint
	// CounterpartCurrency 挂单方卖出的币种
	CounterpartCurrency *Currency
	// OwnCurrency 挂单方想要买入的币种，即浏览者支付的币种
	OwnCurrency    *Currency
	Rating         *decimal.Decimal
	ExchangeRate   *decimal.Decimal
	CompletionTime *int
	Search         string
	SortBy         SortKey
	SortOrder      string
	Page           int
	Limit          int
}

// Normalize 填充默认分页与排序方向
func (f *ListFilter) Normalize() {
	p := utils.NewPagination(f.Page, f.Limit, 0)
	f.Page = p.Page
	f.Limit = p.PageSize

	f.Search = strings.TrimSpace(f.Search)
	f.SortOrder = strings.ToUpper(strings.TrimSpace(f.SortOrder))
	if f.SortOrder != SortAsc {
		f.SortOrder = SortDesc
	}
}

// Pagination 当前筛选对应的分页信息
func (f ListFilter) Pagination(total int64) *utils.Pagination {
	return utils.NewPagination(f.Page, f.Limit, total)
}

// Skip 偏移量 (page-1)*limit
func (f ListFilter) Skip() int {
	return f.Pagination(0).Offset()
}

// RatingBand 评分区间 [floor(r), floor(r)+0.9]
func RatingBand(r decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	lo := r.Floor()
	return lo, lo.Add(decimal.NewFromFloat(0.9))
}

// Page 分页结果
type Page[T any] struct {
	Items      []T
	Total      int64
	Pagination *utils.Pagination
}
