// Package mysql 买单仓储的 GORM 实现
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/p2pexchange/internal/buyer/domain"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	listing "github.com/wyfcoding/p2pexchange/internal/exchange/infrastructure/persistence/mysql"
	"github.com/wyfcoding/p2pexchange/pkg/db"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// buyListing 买单列表：评分精确匹配，无 recommended 排序
var buyListing = listing.ListingSpec{
	Table:  "buy_orders",
	Rating: listing.RatingExact,
}

// BuyOrderRepository domain.BuyOrderRepository 的 GORM 实现
type BuyOrderRepository struct {
	db *gorm.DB
}

// NewBuyOrderRepository 创建买单仓储
func NewBuyOrderRepository(db *gorm.DB) *BuyOrderRepository {
	return &BuyOrderRepository{db: db}
}

var _ domain.BuyOrderRepository = (*BuyOrderRepository)(nil)

func (r *BuyOrderRepository) Create(ctx context.Context, o *domain.BuyOrder) error {
	m := toModel(o)
	if err := db.Conn(ctx, r.db).Create(m).Error; err != nil {
		logger.Error(ctx, "buy_order_repository.create failed", "user_id", o.UserID, "error", err)
		return fmt.Errorf("failed to create buy order: %w", err)
	}
	o.ID = m.ID
	o.CreatedAt = m.CreatedAt
	o.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *BuyOrderRepository) Save(ctx context.Context, o *domain.BuyOrder) error {
	m := toModel(o)
	if err := db.Conn(ctx, r.db).Save(m).Error; err != nil {
		logger.Error(ctx, "buy_order_repository.save failed", "buy_order_id", o.ID, "error", err)
		return fmt.Errorf("failed to save buy order: %w", err)
	}
	o.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *BuyOrderRepository) Get(ctx context.Context, id uint) (*domain.BuyOrder, error) {
	return r.get(ctx, db.Conn(ctx, r.db), id)
}

// GetForUpdate 事务内加行锁读取
func (r *BuyOrderRepository) GetForUpdate(ctx context.Context, id uint) (*domain.BuyOrder, error) {
	return r.get(ctx, db.Conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *BuyOrderRepository) get(ctx context.Context, q *gorm.DB, id uint) (*domain.BuyOrder, error) {
	var m BuyOrderModel
	if err := q.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "buy_order_repository.get failed", "buy_order_id", id, "error", err)
		return nil, fmt.Errorf("failed to get buy order: %w", err)
	}
	return toDomain(&m), nil
}

// ListPublic 公开买单列表
func (r *BuyOrderRepository) ListPublic(ctx context.Context, filter exchange.ListFilter) ([]*domain.BuyOrder, int64, error) {
	var total int64
	if err := db.Conn(ctx, r.db).Model(&BuyOrderModel{}).
		Scopes(buyListing.Scope(filter)).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count buy orders: %w", err)
	}
	if total == 0 {
		return []*domain.BuyOrder{}, 0, nil
	}

	var rows []buyOrderRow
	if err := publicQuery(db.Conn(ctx, r.db), filter).Find(&rows).Error; err != nil {
		logger.Error(ctx, "buy_order_repository.list_public failed", "error", err)
		return nil, 0, fmt.Errorf("failed to list buy orders: %w", err)
	}

	orders := make([]*domain.BuyOrder, len(rows))
	for i := range rows {
		orders[i] = rowToDomain(&rows[i])
	}
	return orders, total, nil
}

func publicQuery(q *gorm.DB, filter exchange.ListFilter) *gorm.DB {
	return q.Model(&BuyOrderModel{}).
		Select(buyListing.Select()).
		Scopes(buyListing.Scope(filter), buyListing.Order(filter), listing.Paginate(filter))
}

// ListByUser 用户自己的买单，任意状态
func (r *BuyOrderRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*domain.BuyOrder, int64, error) {
	q := db.Conn(ctx, r.db).Model(&BuyOrderModel{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count buy orders: %w", err)
	}

	var models []BuyOrderModel
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		logger.Error(ctx, "buy_order_repository.list_by_user failed", "user_id", userID, "error", err)
		return nil, 0, fmt.Errorf("failed to list buy orders: %w", err)
	}

	orders := make([]*domain.BuyOrder, len(models))
	for i := range models {
		orders[i] = toDomain(&models[i])
	}
	return orders, total, nil
}
