// Package mysql 用户资料的 GORM 只读实现
package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"github.com/wyfcoding/p2pexchange/internal/user/domain"
	"github.com/wyfcoding/p2pexchange/pkg/db"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
	"gorm.io/gorm"
)

// UserModel users 表映射，由账户服务维护，这里只读
type UserModel struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"`
	FirstName       string          `gorm:"column:first_name;type:varchar(100);comment:名"`
	LastName        string          `gorm:"column:last_name;type:varchar(100);comment:姓"`
	Email           string          `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	PIN             *string         `gorm:"column:pin;type:varchar(255);comment:交易密码哈希"`
	KYCStatus       string          `gorm:"column:kyc_status;type:varchar(20);index;default:'PENDING'"`
	Rating          decimal.Decimal `gorm:"column:rating;type:decimal(3,1);default:0;comment:综合评分"`
	CompletedTrades int             `gorm:"column:completed_trades;default:0;comment:完成交易数"`
	CompletionRate  decimal.Decimal `gorm:"column:completion_rate;type:decimal(5,2);default:0;comment:完成率"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// UserRepository domain.UserRepository 的 GORM 实现，同时满足挂单校验的 UserLookup
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

var (
	_ domain.UserRepository = (*UserRepository)(nil)
	_ exchange.UserLookup   = (*UserRepository)(nil)
)

// Get 按 ID 查询
func (r *UserRepository) Get(ctx context.Context, id uint) (*domain.User, error) {
	var m UserModel
	if err := db.Conn(ctx, r.db).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "user_repository.get failed", "user_id", id, "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toDomain(&m), nil
}

// FindProfile 挂单资格校验所需的资料
func (r *UserRepository) FindProfile(ctx context.Context, userID uint) (*exchange.OwnerProfile, error) {
	u, err := r.Get(ctx, userID)
	if err != nil || u == nil {
		return nil, err
	}
	return &exchange.OwnerProfile{
		UserID:    u.ID,
		PINSet:    u.PIN != nil && *u.PIN != "",
		KYCStatus: u.KYCStatus,
	}, nil
}

func toDomain(m *UserModel) *domain.User {
	return &domain.User{
		ID:              m.ID,
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		Email:           m.Email,
		PIN:             m.PIN,
		KYCStatus:       m.KYCStatus,
		Rating:          m.Rating,
		CompletedTrades: m.CompletedTrades,
		CompletionRate:  m.CompletionRate,
		CreatedAt:       m.CreatedAt,
	}
}
