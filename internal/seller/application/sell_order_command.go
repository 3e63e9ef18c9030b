// Package application 卖单用例：创建、更新、取消、议价与换算
package application

import (
	"context"
	"fmt"

	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	negotiation "github.com/wyfcoding/p2pexchange/internal/negotiation/domain"
	notification "github.com/wyfcoding/p2pexchange/internal/notification/domain"
	"github.com/wyfcoding/p2pexchange/internal/seller/domain"
	user "github.com/wyfcoding/p2pexchange/internal/user/domain"
	"github.com/wyfcoding/p2pexchange/pkg/errorx"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
	"github.com/wyfcoding/p2pexchange/pkg/metrics"
)

// CommandDeps 卖单命令服务依赖，ReadRepo、Users、Notifier、Metrics 可为空
type CommandDeps struct {
	Repo         domain.SellOrderRepository
	ReadRepo     domain.SellOrderReadRepository
	Negotiations negotiation.NegotiationRepository
	Users        user.UserRepository
	Validator    *exchange.Validator
	Resolver     *exchange.RateResolver
	Tx           exchange.Transactor
	Notifier     notification.Notifier
	Metrics      *metrics.Metrics
}

// SellOrderCommandService 处理卖单相关的命令操作
type SellOrderCommandService struct {
	CommandDeps
}

// NewSellOrderCommandService 创建卖单命令服务
func NewSellOrderCommandService(deps CommandDeps) *SellOrderCommandService {
	return &SellOrderCommandService{CommandDeps: deps}
}

// CreateSellOrder 创建卖单，action=publish 时校验余额与收款信息并直接上架
func (s *SellOrderCommandService) CreateSellOrder(ctx context.Context, cmd CreateSellOrderCommand) (*SellOrderDTO, error) {
	if cmd.Action == "" {
		cmd.Action = exchange.ActionDraft
	}
	if cmd.Action != exchange.ActionDraft && cmd.Action != exchange.ActionPublish {
		return nil, errorx.BadInput("action must be draft or publish")
	}

	var order *domain.SellOrder
	err := s.Tx.Transaction(ctx, func(txCtx context.Context) error {
		draft := exchange.Draft{
			OwnerID: cmd.UserID,
			Kind:    exchange.KindSell,
			Terms:   cmd.Terms,
			Publish: cmd.Action == exchange.ActionPublish,
		}
		if err := s.Validator.ValidateCreate(txCtx, draft); err != nil {
			return err
		}

		order = domain.NewSellOrder(cmd.UserID, cmd.Terms, cmd.TermsOfPayment, cmd.Action)
		return s.Repo.Create(txCtx, order)
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.RecordOrderCreated(string(exchange.KindSell), string(order.Status))
	logger.Info(ctx, "Sell order created",
		"sell_order_id", order.ID,
		"user_id", order.UserID,
		"status", order.Status,
	)
	return toSellOrderDTO(order), nil
}

// UpdateSellOrder 更新卖单，校验使用合并后的字段
func (s *SellOrderCommandService) UpdateSellOrder(ctx context.Context, cmd UpdateSellOrderCommand) (*SellOrderDTO, error) {
	if cmd.Action != nil && *cmd.Action != exchange.ActionDraft && *cmd.Action != exchange.ActionPublish {
		return nil, errorx.BadInput("action must be draft or publish")
	}

	var order *domain.SellOrder
	err := s.Tx.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		order, err = s.loadOwned(txCtx, cmd.OrderID, cmd.UserID)
		if err != nil {
			return err
		}

		merged, err := s.Validator.ValidateUpdate(txCtx, exchange.Amendment{
			OwnerID:  cmd.UserID,
			Kind:     exchange.KindSell,
			Status:   order.Status,
			Existing: order.Terms,
			Patch:    cmd.Patch,
			Publish:  cmd.Action != nil && *cmd.Action == exchange.ActionPublish,
		})
		if err != nil {
			return err
		}
		if err := order.Amend(merged, cmd.TermsOfPayment, cmd.Action); err != nil {
			return err
		}
		return s.Repo.Save(txCtx, order)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, order.ID)
	logger.Info(ctx, "Sell order updated", "sell_order_id", order.ID, "status", order.Status)
	return toSellOrderDTO(order), nil
}

// CancelSellOrder 取消卖单，存在进行中的议价或交易时拒绝
func (s *SellOrderCommandService) CancelSellOrder(ctx context.Context, orderID, userID uint) (*SellOrderDTO, error) {
	var order *domain.SellOrder
	err := s.Tx.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		order, err = s.loadOwned(txCtx, orderID, userID)
		if err != nil {
			return err
		}
		if err := s.Validator.ValidateCancel(txCtx, exchange.KindSell, order.ID, order.Status); err != nil {
			return err
		}
		order.Cancel()
		return s.Repo.Save(txCtx, order)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, order.ID)
	s.Metrics.RecordOrderCancelled(string(exchange.KindSell))
	logger.Info(ctx, "Sell order cancelled", "sell_order_id", order.ID, "user_id", userID)
	return toSellOrderDTO(order), nil
}

// RequestNegotiation 买家对卖单发起还价，并通知卖家
func (s *SellOrderCommandService) RequestNegotiation(ctx context.Context, cmd RequestNegotiationCommand) (*NegotiationDTO, error) {
	if !cmd.ProposedRate.IsPositive() {
		return nil, errorx.BadInput("proposed rate must be greater than 0")
	}

	var (
		order *domain.SellOrder
		n     *negotiation.Negotiation
	)
	err := s.Tx.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		order, err = s.Repo.GetForUpdate(txCtx, cmd.SellOrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return errorx.NotFound("sell order %d not found", cmd.SellOrderID)
		}
		if order.OwnedBy(cmd.BuyerID) {
			return errorx.Forbidden("cannot negotiate on your own order")
		}
		if order.Status != exchange.StatusOpen || !order.IsActive {
			return errorx.Conflict("sell order is not open for negotiation")
		}

		existing, err := s.Negotiations.FindOpenByBuyer(txCtx, order.ID, cmd.BuyerID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errorx.Conflict("you already have an open negotiation on this order")
		}

		n = negotiation.NewNegotiation(order.ID, cmd.BuyerID, order.UserID, cmd.ProposedRate, cmd.Message)
		if err := s.Negotiations.Create(txCtx, n); err != nil {
			return err
		}

		order.StartNegotiation()
		return s.Repo.Save(txCtx, order)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, order.ID)
	s.Metrics.RecordNegotiationRequested()
	s.notifySeller(ctx, order, n)

	return &NegotiationDTO{
		ID:           n.ID,
		SellOrderID:  n.SellOrderID,
		BuyerID:      n.BuyerID,
		SellerID:     n.SellerID,
		ProposedRate: n.ProposedRate,
		Status:       string(n.Status),
		Message:      n.Message,
		CreatedAt:    n.CreatedAt,
	}, nil
}

// CalculateConversion 按生效汇率（议价优先）换算
func (s *SellOrderCommandService) CalculateConversion(ctx context.Context, q ConversionQuery) (*ConversionDTO, error) {
	order, err := s.Repo.Get(ctx, q.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errorx.NotFound("sell order %d not found", q.OrderID)
	}

	res := s.Resolver.Resolve(ctx, order.ID, order.ExchangeRate, q.RequesterID)
	conv, err := exchange.Convert(q.Amount, q.FromCurrency, q.ToCurrency, order.Pair(), res.EffectiveRate)
	if err != nil {
		return nil, err
	}

	s.Metrics.RecordConversion(string(res.RateSource))
	return toConversionDTO(conv, res), nil
}

func (s *SellOrderCommandService) loadOwned(ctx context.Context, orderID, userID uint) (*domain.SellOrder, error) {
	order, err := s.Repo.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errorx.NotFound("sell order %d not found", orderID)
	}
	if !order.OwnedBy(userID) {
		return nil, errorx.Forbidden("you can only modify your own orders")
	}
	return order, nil
}

func (s *SellOrderCommandService) invalidate(ctx context.Context, orderID uint) {
	if s.ReadRepo == nil {
		return
	}
	if err := s.ReadRepo.Delete(ctx, orderID); err != nil {
		logger.Warn(ctx, "Failed to invalidate sell order cache", "sell_order_id", orderID, "error", err)
	}
}

// notifySeller 推送失败只记录告警
func (s *SellOrderCommandService) notifySeller(ctx context.Context, order *domain.SellOrder, n *negotiation.Negotiation) {
	if s.Notifier == nil {
		return
	}

	buyerName := "A buyer"
	if s.Users != nil {
		if buyer, err := s.Users.Get(ctx, n.BuyerID); err == nil && buyer != nil && buyer.FullName() != "" {
			buyerName = buyer.FullName()
		}
	}

	push := notification.Push{
		UserID: order.UserID,
		Type:   notification.PushNegotiationRequested,
		Title:  "New rate negotiation",
		Body: fmt.Sprintf("%s proposed a rate of %s %s per %s on your order",
			buyerName, n.ProposedRate.String(), order.Pair().Quote(), order.Pair().Base()),
		Data: map[string]string{
			"sellOrderId":   fmt.Sprint(order.ID),
			"negotiationId": fmt.Sprint(n.ID),
		},
	}
	if err := s.Notifier.Notify(ctx, push); err != nil {
		logger.Warn(ctx, "Failed to send negotiation push", "sell_order_id", order.ID, "error", err)
	}
}
