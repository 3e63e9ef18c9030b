// Package mysql P2P 交易的只读查询
package mysql

import (
	"context"
	"fmt"
	"time"

	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"github.com/wyfcoding/p2pexchange/internal/trade/domain"
	"github.com/wyfcoding/p2pexchange/pkg/db"
	"gorm.io/gorm"
)

// TradeModel p2p_trades 表映射，由交易服务写入
type TradeModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	SellOrderID *uint     `gorm:"column:sell_order_id;index"`
	BuyOrderID  *uint     `gorm:"column:buy_order_id;index"`
	Status      string    `gorm:"column:status;type:varchar(20);index;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

// TableName 指定表名
func (TradeModel) TableName() string {
	return "p2p_trades"
}

// TradeRepository 实现 exchange.TradeGuard
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository 创建交易仓储
func NewTradeRepository(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

var _ exchange.TradeGuard = (*TradeRepository)(nil)

// HasActive 订单上是否有进行中的交易
func (r *TradeRepository) HasActive(ctx context.Context, kind exchange.OrderKind, orderID uint) (bool, error) {
	column := "sell_order_id"
	if kind == exchange.KindBuy {
		column = "buy_order_id"
	}

	statuses := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		statuses[i] = string(s)
	}

	var count int64
	err := db.Conn(ctx, r.db).Model(&TradeModel{}).
		Where(column+" = ? AND status IN ?", orderID, statuses).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count trades: %w", err)
	}
	return count > 0, nil
}
