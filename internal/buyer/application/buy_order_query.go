package application

import (
	"context"

	"github.com/wyfcoding/p2pexchange/internal/buyer/domain"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"github.com/wyfcoding/p2pexchange/pkg/errorx"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
)

// BuyOrderQueryService 买单查询
type BuyOrderQueryService struct {
	repo     domain.BuyOrderRepository
	readRepo domain.BuyOrderReadRepository
}

// NewBuyOrderQueryService 创建查询服务，readRepo 可为 nil
func NewBuyOrderQueryService(repo domain.BuyOrderRepository, readRepo domain.BuyOrderReadRepository) *BuyOrderQueryService {
	return &BuyOrderQueryService{repo: repo, readRepo: readRepo}
}

// FindPublic 其他用户的可交易买单
func (s *BuyOrderQueryService) FindPublic(ctx context.Context, callerID uint, filter exchange.ListFilter) (*BuyOrderPage, error) {
	filter.CallerID = callerID
	filter.Normalize()
	orders, total, err := s.repo.ListPublic(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toPage(orders, total, &filter), nil
}

// ListMine 自己的买单
func (s *BuyOrderQueryService) ListMine(ctx context.Context, userID uint, page, limit int) (*BuyOrderPage, error) {
	filter := exchange.ListFilter{Page: page, Limit: limit}
	filter.Normalize()
	orders, total, err := s.repo.ListByUser(ctx, userID, filter.Limit, filter.Skip())
	if err != nil {
		return nil, err
	}
	return toPage(orders, total, &filter), nil
}

// Get 买单详情
func (s *BuyOrderQueryService) Get(ctx context.Context, id uint) (*BuyOrderDTO, error) {
	if s.readRepo != nil {
		if cached, err := s.readRepo.Get(ctx, id); err != nil {
			logger.Warn(ctx, "Buy order cache read failed", "buy_order_id", id, "error", err)
		} else if cached != nil {
			return toBuyOrderDTO(cached), nil
		}
	}

	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errorx.NotFound("buy order %d not found", id)
	}
	if s.readRepo != nil {
		if err := s.readRepo.Save(ctx, order); err != nil {
			logger.Warn(ctx, "Buy order cache write failed", "buy_order_id", id, "error", err)
		}
	}
	return toBuyOrderDTO(order), nil
}
