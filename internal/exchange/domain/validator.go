package domain

import (
	"context"
	"fmt"

	"github.com/wyfcoding/p2pexchange/pkg/errorx"
)

// Draft 待创建的挂单
type Draft struct {
	OwnerID uint
	Kind    OrderKind
	Terms   Terms
	Publish bool
}

// Amendment 对已有挂单的修改
type Amendment struct {
	OwnerID  uint
	Kind     OrderKind
	Status   OrderStatus
	Existing Terms
	Patch    TermsPatch
	// Publish 本次修改是否要求发布
	Publish bool
}

// Validator 挂单生命周期校验，按顺序执行，遇到第一个违规即返回
type Validator struct {
	users             UserLookup
	wallets           WalletLookup
	negotiations      NegotiationGuard
	trades            TradeGuard
	buyerBalanceCheck bool
}

// NewValidator 创建校验器，negotiations 为 nil 时跳过议价检查
func NewValidator(users UserLookup, wallets WalletLookup, negotiations NegotiationGuard, trades TradeGuard, buyerBalanceCheck bool) *Validator {
	return &Validator{
		users:             users,
		wallets:           wallets,
		negotiations:      negotiations,
		trades:            trades,
		buyerBalanceCheck: buyerBalanceCheck,
	}
}

// ValidateCreate 创建时校验
func (v *Validator) ValidateCreate(ctx context.Context, d Draft) error {
	if err := v.checkOnboarded(ctx, d.OwnerID); err != nil {
		return err
	}
	if err := checkPair(d.Terms); err != nil {
		return err
	}
	if d.Kind == KindSell {
		if err := checkSellerFloor(d.Terms); err != nil {
			return err
		}
	}
	if err := checkAmounts(d.Terms); err != nil {
		return err
	}
	if !d.Publish {
		return nil
	}
	return v.checkPublishable(ctx, d.OwnerID, d.Kind, d.Terms)
}

// ValidateUpdate 更新时校验，返回合并后的条款
// 余额与收款信息只在从未发布状态转为发布时校验
func (v *Validator) ValidateUpdate(ctx context.Context, a Amendment) (Terms, error) {
	if !a.Status.Mutable() {
		return Terms{}, errorx.Conflict("order in status %s cannot be updated", a.Status)
	}

	merged := a.Existing.Merge(a.Patch)
	if err := checkPair(merged); err != nil {
		return Terms{}, err
	}
	if a.Kind == KindSell {
		if err := checkSellerFloor(merged); err != nil {
			return Terms{}, err
		}
	}
	if err := checkAmounts(merged); err != nil {
		return Terms{}, err
	}

	if a.Publish && a.Status.Unpublished() {
		if err := v.checkPublishable(ctx, a.OwnerID, a.Kind, merged); err != nil {
			return Terms{}, err
		}
	}
	return merged, nil
}

// ValidateCancel 取消时校验：状态可变，且无进行中的议价或交易
func (v *Validator) ValidateCancel(ctx context.Context, kind OrderKind, orderID uint, status OrderStatus) error {
	if !status.Mutable() {
		return errorx.Conflict("order in status %s cannot be cancelled", status)
	}

	if kind == KindSell && v.negotiations != nil {
		active, err := v.negotiations.HasActive(ctx, orderID)
		if err != nil {
			return fmt.Errorf("failed to check active negotiations: %w", err)
		}
		if active {
			return errorx.Conflict("order has an active negotiation, resolve first")
		}
	}

	if v.trades != nil {
		active, err := v.trades.HasActive(ctx, kind, orderID)
		if err != nil {
			return fmt.Errorf("failed to check active trades: %w", err)
		}
		if active {
			return errorx.Conflict("order has an active trade, resolve first")
		}
	}
	return nil
}

func (v *Validator) checkOnboarded(ctx context.Context, userID uint) error {
	profile, err := v.users.FindProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if profile == nil {
		return errorx.NotFound("user %d not found", userID)
	}
	if !profile.Onboarded() {
		return errorx.BadInput("complete onboarding (transaction PIN and KYC) before posting orders")
	}
	return nil
}

func checkPair(t Terms) error {
	if !t.SellCurrency.Valid() || !t.BuyCurrency.Valid() {
		return errorx.BadInput("unsupported currency pair %s/%s", t.SellCurrency, t.BuyCurrency)
	}
	if t.SellCurrency == t.BuyCurrency {
		return errorx.BadInput("sell currency and buy currency must be different")
	}
	return nil
}

func checkSellerFloor(t Terms) error {
	floor := t.SellCurrency.SellerFloor()
	if t.AvailableAmount.LessThan(floor) {
		return errorx.BadInput("minimum available amount for %s is %s", t.SellCurrency, floor.String())
	}
	return nil
}

func checkAmounts(t Terms) error {
	if t.AvailableAmount.IsNegative() || t.ExchangeRate.IsNegative() || t.MinTransactionLimit.IsNegative() {
		return errorx.BadInput("amounts and exchange rate must not be negative")
	}
	if t.TransactionDuration < 1 {
		return errorx.BadInput("transaction duration must be at least 1 minute")
	}
	if t.MinTransactionLimit.GreaterThan(t.AvailableAmount) {
		return errorx.BadInput("minimum transaction limit cannot exceed available amount")
	}
	return nil
}

func (v *Validator) checkPublishable(ctx context.Context, ownerID uint, kind OrderKind, t Terms) error {
	if kind == KindSell || v.buyerBalanceCheck {
		balance, err := v.wallets.Balance(ctx, ownerID, t.SellCurrency)
		if err != nil {
			return fmt.Errorf("failed to load wallet: %w", err)
		}
		if balance == nil {
			return errorx.NotFound("no %s wallet found", t.SellCurrency)
		}
		if t.AvailableAmount.GreaterThan(*balance) {
			return errorx.BadInput("insufficient %s balance", t.SellCurrency)
		}
	}

	if field := t.Payment.missingPaymentField(t.BuyCurrency); field != "" {
		return errorx.BadInput("%s is required to receive %s", field, t.BuyCurrency)
	}
	return nil
}
