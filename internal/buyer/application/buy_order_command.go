// Package application 买单用例
package application

import (
	"context"

	"github.com/wyfcoding/p2pexchange/internal/buyer/domain"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"github.com/wyfcoding/p2pexchange/pkg/errorx"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
	"github.com/wyfcoding/p2pexchange/pkg/metrics"
)

// BuyOrderCommandService 处理买单命令
type BuyOrderCommandService struct {
	repo      domain.BuyOrderRepository
	readRepo  domain.BuyOrderReadRepository
	wallets   exchange.WalletLookup
	validator *exchange.Validator
	tx        exchange.Transactor
	metrics   *metrics.Metrics
}

// NewBuyOrderCommandService 创建买单命令服务，readRepo 与 m 可为空
func NewBuyOrderCommandService(
	repo domain.BuyOrderRepository,
	readRepo domain.BuyOrderReadRepository,
	wallets exchange.WalletLookup,
	validator *exchange.Validator,
	tx exchange.Transactor,
	m *metrics.Metrics,
) *BuyOrderCommandService {
	return &BuyOrderCommandService{
		repo:      repo,
		readRepo:  readRepo,
		wallets:   wallets,
		validator: validator,
		tx:        tx,
		metrics:   m,
	}
}

// CreateBuyOrder 创建买单，总是直接上架
func (s *BuyOrderCommandService) CreateBuyOrder(ctx context.Context, cmd CreateBuyOrderCommand) (*BuyOrderDTO, error) {
	var order *domain.BuyOrder
	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		if err := s.validator.ValidateCreate(txCtx, exchange.Draft{
			OwnerID: cmd.UserID,
			Kind:    exchange.KindBuy,
			Terms:   cmd.Terms,
			Publish: true,
		}); err != nil {
			return err
		}
		order = domain.NewBuyOrder(cmd.UserID, cmd.Terms)
		return s.repo.Create(txCtx, order)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordOrderCreated(string(exchange.KindBuy), string(order.Status))
	logger.Info(ctx, "Buy order created", "buy_order_id", order.ID, "user_id", order.UserID)
	return toBuyOrderDTO(order), nil
}

// UpdateBuyOrder 更新买单
func (s *BuyOrderCommandService) UpdateBuyOrder(ctx context.Context, cmd UpdateBuyOrderCommand) (*BuyOrderDTO, error) {
	var order *domain.BuyOrder
	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		if order, err = s.loadOwned(txCtx, cmd.OrderID, cmd.UserID); err != nil {
			return err
		}
		merged, err := s.validator.ValidateUpdate(txCtx, exchange.Amendment{
			OwnerID:  cmd.UserID,
			Kind:     exchange.KindBuy,
			Status:   order.Status,
			Existing: order.Terms,
			Patch:    cmd.Patch,
		})
		if err != nil {
			return err
		}
		order.Amend(merged)
		return s.repo.Save(txCtx, order)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, order.ID)
	logger.Info(ctx, "Buy order updated", "buy_order_id", order.ID)
	return toBuyOrderDTO(order), nil
}

// CancelBuyOrder 取消买单，存在进行中的交易时拒绝
func (s *BuyOrderCommandService) CancelBuyOrder(ctx context.Context, orderID, userID uint) (*BuyOrderDTO, error) {
	var order *domain.BuyOrder
	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		if order, err = s.loadOwned(txCtx, orderID, userID); err != nil {
			return err
		}
		if err := s.validator.ValidateCancel(txCtx, exchange.KindBuy, order.ID, order.Status); err != nil {
			return err
		}
		order.Cancel()
		return s.repo.Save(txCtx, order)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, order.ID)
	s.metrics.RecordOrderCancelled(string(exchange.KindBuy))
	logger.Info(ctx, "Buy order cancelled", "buy_order_id", order.ID, "user_id", userID)
	return toBuyOrderDTO(order), nil
}

// CalculateConversionBuyer 按买单挂出的汇率换算，附带请求方 fromCurrency 钱包余额
func (s *BuyOrderCommandService) CalculateConversionBuyer(ctx context.Context, q ConversionQuery) (*ConversionDTO, error) {
	order, err := s.repo.Get(ctx, q.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errorx.NotFound("buy order %d not found", q.OrderID)
	}

	conv, err := exchange.Convert(q.Amount, q.FromCurrency, q.ToCurrency, order.Pair(), order.ExchangeRate)
	if err != nil {
		return nil, err
	}

	dto := &ConversionDTO{
		FromAmount:   conv.FromAmount,
		FromCurrency: conv.FromCurrency.String(),
		ToAmount:     conv.ToAmount,
		ToCurrency:   conv.ToCurrency.String(),
		Rate:         conv.Rate,
		RateSource:   string(exchange.RateSourceBuyerListing),
		Fee:          conv.Fee,
		// 无议价，原始汇率即挂单汇率
		IsUsingNegotiatedRate: false,
		OriginalSellerRate:    order.ExchangeRate,
	}
	if q.RequesterID != 0 && s.wallets != nil {
		balance, err := s.wallets.Balance(ctx, q.RequesterID, q.FromCurrency)
		if err != nil {
			logger.Warn(ctx, "Wallet lookup failed during conversion", "user_id", q.RequesterID, "error", err)
		} else {
			dto.WalletBalance = balance
		}
	}

	s.metrics.RecordConversion(string(exchange.RateSourceBuyerListing))
	return dto, nil
}

func (s *BuyOrderCommandService) loadOwned(ctx context.Context, orderID, userID uint) (*domain.BuyOrder, error) {
	order, err := s.repo.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errorx.NotFound("buy order %d not found", orderID)
	}
	if !order.OwnedBy(userID) {
		return nil, errorx.Forbidden("you can only modify your own orders")
	}
	return order, nil
}

func (s *BuyOrderCommandService) invalidate(ctx context.Context, orderID uint) {
	if s.readRepo == nil {
		return
	}
	if err := s.readRepo.Delete(ctx, orderID); err != nil {
		logger.Warn(ctx, "Failed to invalidate buy order cache", "buy_order_id", orderID, "error", err)
	}
}
