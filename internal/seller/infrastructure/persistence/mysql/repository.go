// Package mysql 卖单仓储的 GORM 实现
package mysql

import (
	"context"
	"errors"
	"fmt"

	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	listing "github.com/wyfcoding/p2pexchange/internal/exchange/infrastructure/persistence/mysql"
	"github.com/wyfcoding/p2pexchange/internal/seller/domain"
	"github.com/wyfcoding/p2pexchange/pkg/db"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sellListing 卖单列表：评分区间匹配、扩展搜索、支持 recommended 排序
var sellListing = listing.ListingSpec{
	Table:            "sell_orders",
	ExtendedSearch:   true,
	Rating:           listing.RatingBand,
	AllowRecommended: true,
}

// SellOrderRepository domain.SellOrderRepository 的 GORM 实现
type SellOrderRepository struct {
	db *gorm.DB
}

// NewSellOrderRepository 创建卖单仓储
func NewSellOrderRepository(db *gorm.DB) *SellOrderRepository {
	return &SellOrderRepository{db: db}
}

var _ domain.SellOrderRepository = (*SellOrderRepository)(nil)

// Create 实现 domain.SellOrderRepository.Create
func (r *SellOrderRepository) Create(ctx context.Context, o *domain.SellOrder) error {
	m := toModel(o)
	if err := db.Conn(ctx, r.db).Create(m).Error; err != nil {
		logger.Error(ctx, "sell_order_repository.create failed", "user_id", o.UserID, "error", err)
		return fmt.Errorf("failed to create sell order: %w", err)
	}
	o.ID = m.ID
	o.CreatedAt = m.CreatedAt
	o.UpdatedAt = m.UpdatedAt
	return nil
}

// Save 实现 domain.SellOrderRepository.Save
func (r *SellOrderRepository) Save(ctx context.Context, o *domain.SellOrder) error {
	m := toModel(o)
	if err := db.Conn(ctx, r.db).Save(m).Error; err != nil {
		logger.Error(ctx, "sell_order_repository.save failed", "sell_order_id", o.ID, "error", err)
		return fmt.Errorf("failed to save sell order: %w", err)
	}
	o.UpdatedAt = m.UpdatedAt
	return nil
}

// Get 实现 domain.SellOrderRepository.Get
func (r *SellOrderRepository) Get(ctx context.Context, id uint) (*domain.SellOrder, error) {
	return r.get(ctx, db.Conn(ctx, r.db), id)
}

// GetForUpdate 实现 domain.SellOrderRepository.GetForUpdate
func (r *SellOrderRepository) GetForUpdate(ctx context.Context, id uint) (*domain.SellOrder, error) {
	return r.get(ctx, db.Conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *SellOrderRepository) get(ctx context.Context, q *gorm.DB, id uint) (*domain.SellOrder, error) {
	var m SellOrderModel
	if err := q.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "sell_order_repository.get failed", "sell_order_id", id, "error", err)
		return nil, fmt.Errorf("failed to get sell order: %w", err)
	}
	return toDomain(&m), nil
}

// ListPublic 实现 domain.SellOrderRepository.ListPublic
func (r *SellOrderRepository) ListPublic(ctx context.Context, filter exchange.ListFilter) ([]*domain.SellOrder, int64, error) {
	var total int64
	if err := db.Conn(ctx, r.db).Model(&SellOrderModel{}).
		Scopes(sellListing.Scope(filter)).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sell orders: %w", err)
	}
	if total == 0 {
		return []*domain.SellOrder{}, 0, nil
	}

	var rows []sellOrderRow
	if err := publicQuery(db.Conn(ctx, r.db), filter).Find(&rows).Error; err != nil {
		logger.Error(ctx, "sell_order_repository.list_public failed", "error", err)
		return nil, 0, fmt.Errorf("failed to list sell orders: %w", err)
	}

	orders := make([]*domain.SellOrder, len(rows))
	for i := range rows {
		orders[i] = rowToDomain(&rows[i])
	}
	return orders, total, nil
}

// publicQuery 列表查询（不含执行），单独拆出便于生成 SQL 校验
func publicQuery(q *gorm.DB, filter exchange.ListFilter) *gorm.DB {
	return q.Model(&SellOrderModel{}).
		Select(sellListing.Select()).
		Scopes(sellListing.Scope(filter), sellListing.Order(filter), listing.Paginate(filter))
}

// ListByUser 实现 domain.SellOrderRepository.ListByUser
func (r *SellOrderRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*domain.SellOrder, int64, error) {
	q := db.Conn(ctx, r.db).Model(&SellOrderModel{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sell orders: %w", err)
	}

	var models []SellOrderModel
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		logger.Error(ctx, "sell_order_repository.list_by_user failed", "user_id", userID, "error", err)
		return nil, 0, fmt.Errorf("failed to list sell orders: %w", err)
	}

	orders := make([]*domain.SellOrder, len(models))
	for i := range models {
		orders[i] = toDomain(&models[i])
	}
	return orders, total, nil
}
