package application

import (
	"context"

	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"github.com/wyfcoding/p2pexchange/internal/seller/domain"
	"github.com/wyfcoding/p2pexchange/pkg/errorx"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
	"github.com/wyfcoding/p2pexchange/pkg/utils"
)

// SellOrderQueryService 处理卖单查询
type SellOrderQueryService struct {
	repo     domain.SellOrderRepository
	readRepo domain.SellOrderReadRepository
}

// NewSellOrderQueryService 创建卖单查询服务，readRepo 可为空
func NewSellOrderQueryService(repo domain.SellOrderRepository, readRepo domain.SellOrderReadRepository) *SellOrderQueryService {
	return &SellOrderQueryService{repo: repo, readRepo: readRepo}
}

// FindAll 全部可交易卖单，包含自己的
func (s *SellOrderQueryService) FindAll(ctx context.Context, filter exchange.ListFilter) (*SellOrderPage, error) {
	filter.CallerID = 0
	return s.list(ctx, filter)
}

// FindPublic 其他用户的可交易卖单
func (s *SellOrderQueryService) FindPublic(ctx context.Context, callerID uint, filter exchange.ListFilter) (*SellOrderPage, error) {
	filter.CallerID = callerID
	return s.list(ctx, filter)
}

func (s *SellOrderQueryService) list(ctx context.Context, filter exchange.ListFilter) (*SellOrderPage, error) {
	filter.Normalize()
	orders, total, err := s.repo.ListPublic(ctx, filter)
	if err != nil {
		return nil, err
	}
	p := filter.Pagination(total)
	return &SellOrderPage{
		Items:       toSellOrderDTOs(orders),
		Total:       total,
		CurrentPage: p.Page,
		TotalPages:  p.Pages,
	}, nil
}

// ListMine 自己的全部卖单（任意状态）
func (s *SellOrderQueryService) ListMine(ctx context.Context, userID uint, page, limit int) (*SellOrderPage, error) {
	p := utils.NewPagination(page, limit, 0)
	orders, total, err := s.repo.ListByUser(ctx, userID, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	p.SetTotal(total)
	return &SellOrderPage{
		Items:       toSellOrderDTOs(orders),
		Total:       total,
		CurrentPage: p.Page,
		TotalPages:  p.Pages,
	}, nil
}

// Get 卖单详情，优先读缓存
func (s *SellOrderQueryService) Get(ctx context.Context, id uint) (*SellOrderDTO, error) {
	if s.readRepo != nil {
		cached, err := s.readRepo.Get(ctx, id)
		if err != nil {
			logger.Warn(ctx, "Sell order cache read failed", "sell_order_id", id, "error", err)
		} else if cached != nil {
			return toSellOrderDTO(cached), nil
		}
	}

	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errorx.NotFound("sell order %d not found", id)
	}

	if s.readRepo != nil {
		if err := s.readRepo.Save(ctx, order); err != nil {
			logger.Warn(ctx, "Sell order cache write failed", "sell_order_id", id, "error", err)
		}
	}
	return toSellOrderDTO(order), nil
}
