// Package domain 用户资料（只读），供挂单校验与列表联表使用
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// KYCSuccess KYC 已通过
const KYCSuccess = "SUCCESS"

// User 用户资料
type User struct {
	ID              uint
	FirstName       string
	LastName        string
	Email           string
	PIN             *string
	KYCStatus       string
	Rating          decimal.Decimal
	CompletedTrades int
	CompletionRate  decimal.Decimal
	CreatedAt       time.Time
}

// Onboarded 已设置交易密码且 KYC 通过
func (u *User) Onboarded() bool {
	return u.PIN != nil && *u.PIN != "" && u.KYCStatus == KYCSuccess
}

// FullName 姓名
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserRepository 用户仓储接口，不存在时返回 nil, nil
type UserRepository interface {
	Get(ctx context.Context, id uint) (*User, error)
}
