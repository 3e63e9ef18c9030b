// Package utils 提供分页、金额舍入与指针解引用等通用工具
package utils

import (
	"github.com/shopspring/decimal"
)

const (
	// DefaultPageSize 默认每页条数
	DefaultPageSize = 10
	// MaxPageSize 每页条数上限
	MaxPageSize = 100
)

// Pagination 分页信息
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	Pages    int64 `json:"pages"`
}

// NewPagination 创建分页信息，页码与条数越界时取默认值
func NewPagination(page, pageSize int, total int64) *Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	p := &Pagination{Page: page, PageSize: pageSize}
	p.SetTotal(total)
	return p
}

// SetTotal 设置总数并计算总页数 ceil(total / pageSize)
func (p *Pagination) SetTotal(total int64) {
	p.Total = total
	p.Pages = (total + int64(p.PageSize) - 1) / int64(p.PageSize)
}

// Offset 获取数据库查询偏移量 (page-1)*pageSize
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit 获取数据库查询限制
func (p *Pagination) Limit() int {
	return p.PageSize
}

// RoundMoney 金额保留两位小数，0.005 进位
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// DerefString 解引用字符串指针，nil 时返回 fallback
func DerefString(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

// DerefInt 解引用整数指针，nil 时返回 fallback
func DerefInt(i *int, fallback int) int {
	if i == nil {
		return fallback
	}
	return *i
}

// DerefDecimal 解引用 decimal 指针，nil 时返回 fallback
func DerefDecimal(d *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if d == nil {
		return fallback
	}
	return *d
}
