// Package mysql 买卖单共用的公开列表查询构建
package mysql

import (
	"fmt"
	"strings"

	"github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"gorm.io/gorm"
)

// RatingMatch 评分筛选方式
type RatingMatch int

const (
	// RatingBand [floor(r), floor(r)+0.9]
	RatingBand RatingMatch = iota
	// RatingExact users.rating = r
	RatingExact
)

// ListingSpec 描述一类挂单表的列表查询差异
type ListingSpec struct {
	Table string
	// ExtendedSearch 额外搜索评分、完成率、币种代码与状态
	ExtendedSearch bool
	Rating         RatingMatch
	// AllowRecommended 是否支持 recommended 综合排序
	AllowRecommended bool
}

// OwnerColumns 联表带出的挂单方资料列
const OwnerColumns = "users.first_name AS owner_first_name, users.last_name AS owner_last_name, " +
	"users.rating AS owner_rating, users.completed_trades AS owner_completed_trades, " +
	"users.completion_rate AS owner_completion_rate"

func (s ListingSpec) col(name string) string {
	return s.Table + "." + name
}

// Select 查询列：挂单表全部列加挂单方资料
func (s ListingSpec) Select() string {
	return s.Table + ".*, " + OwnerColumns
}

// Scope 公开列表的 JOIN 与 WHERE 条件，Count 与 Find 共用
// CallerID 非 0 时排除浏览者自己的挂单
func (s ListingSpec) Scope(f domain.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		tx = tx.Joins(fmt.Sprintf("JOIN users ON users.id = %s", s.col("user_id"))).
			Where(s.col("status")+" = ?", string(domain.StatusOpen)).
			Where(s.col("is_active")+" = ?", true)

		if f.CallerID != 0 {
			tx = tx.Where(s.col("user_id")+" <> ?", f.CallerID)
		}
		if f.CounterpartCurrency != nil {
			tx = tx.Where(s.col("sell_currency")+" = ?", string(*f.CounterpartCurrency))
		}
		if f.OwnCurrency != nil {
			tx = tx.Where(s.col("buy_currency")+" = ?", string(*f.OwnCurrency))
		}
		if f.Rating != nil {
			if s.Rating == RatingBand {
				lo, hi := domain.RatingBand(*f.Rating)
				tx = tx.Where("users.rating BETWEEN ? AND ?", lo, hi)
			} else {
				tx = tx.Where("users.rating = ?", *f.Rating)
			}
		}
		if f.ExchangeRate != nil {
			tx = tx.Where(s.col("exchange_rate")+" = ?", *f.ExchangeRate)
		}
		if f.CompletionTime != nil {
			tx = tx.Where(s.col("transaction_duration")+" = ?", *f.CompletionTime)
		}
		if f.Search != "" {
			tx = tx.Where(s.searchClause(), s.searchArgs(f.Search)...)
		}
		return tx
	}
}

func (s ListingSpec) searchColumns() []string {
	cols := []string{
		"LOWER(users.first_name)",
		"LOWER(users.last_name)",
		"LOWER(" + s.col("bank_name") + ")",
		"CAST(" + s.col("exchange_rate") + " AS CHAR)",
		"CAST(" + s.col("min_transaction_limit") + " AS CHAR)",
	}
	if s.ExtendedSearch {
		cols = append(cols,
			"CAST(users.rating AS CHAR)",
			"CAST(users.completion_rate AS CHAR)",
			"LOWER("+s.col("sell_currency")+")",
			"LOWER("+s.col("buy_currency")+")",
			"LOWER("+s.col("status")+")",
		)
	}
	return cols
}

// likeEscaper 搜索词中的通配符按字面匹配
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s ListingSpec) searchClause() string {
	cols := s.searchColumns()
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c + ` LIKE ? ESCAPE '\\'`
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func (s ListingSpec) searchArgs(search string) []interface{} {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
	cols := s.searchColumns()
	args := make([]interface{}, len(cols))
	for i := range cols {
		args[i] = pattern
	}
	return args
}

// Order 排序
func (s ListingSpec) Order(f domain.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		dir := domain.SortDesc
		if f.SortOrder == domain.SortAsc {
			dir = domain.SortAsc
		}

		switch f.SortBy {
		case domain.SortExchangeRate:
			return tx.Order(s.col("exchange_rate") + " " + dir)
		case domain.SortCompletionTime:
			return tx.Order(s.col("transaction_duration") + " " + dir)
		case domain.SortRating:
			return tx.Order("users.rating " + dir)
		case domain.SortRecommended:
			if s.AllowRecommended {
				return tx.Order("users.completed_trades DESC").
					Order("users.completion_rate DESC").
					Order("users.created_at ASC")
			}
		}
		return tx.Order(s.col("created_at") + " DESC")
	}
}

// Paginate 分页
func Paginate(f domain.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Offset(f.Skip()).Limit(f.Limit)
	}
}
