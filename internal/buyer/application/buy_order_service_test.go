package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/p2pexchange/internal/buyer/domain"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"github.com/wyfcoding/p2pexchange/pkg/errorx"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type memBuyOrders struct{ orders map[uint]*domain.BuyOrder }

func (m *memBuyOrders) Create(ctx context.Context, o *domain.BuyOrder) error {
	o.ID = uint(len(m.orders) + 1)
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}
func (m *memBuyOrders) Save(ctx context.Context, o *domain.BuyOrder) error {
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}
func (m *memBuyOrders) Get(ctx context.Context, id uint) (*domain.BuyOrder, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}
func (m *memBuyOrders) GetForUpdate(ctx context.Context, id uint) (*domain.BuyOrder, error) {
	return m.Get(ctx, id)
}
func (m *memBuyOrders) ListPublic(ctx context.Context, f exchange.ListFilter) ([]*domain.BuyOrder, int64, error) {
	var out []*domain.BuyOrder
	for _, o := range m.orders {
		if o.UserID != f.CallerID && o.Status == exchange.StatusOpen {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}
func (m *memBuyOrders) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*domain.BuyOrder, int64, error) {
	var out []*domain.BuyOrder
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

type profiles map[uint]bool

func (p profiles) FindProfile(ctx context.Context, id uint) (*exchange.OwnerProfile, error) {
	onboarded, ok := p[id]
	if !ok {
		return nil, nil
	}
	status := "PENDING"
	if onboarded {
		status = exchange.KYCSuccess
	}
	return &exchange.OwnerProfile{UserID: id, PINSet: onboarded, KYCStatus: status}, nil
}

type wallets map[uint]map[exchange.Currency]decimal.Decimal

func (w wallets) Balance(ctx context.Context, userID uint, c exchange.Currency) (*decimal.Decimal, error) {
	b, ok := w[userID][c]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

type activeTrades map[uint]bool

func (a activeTrades) HasActive(ctx context.Context, kind exchange.OrderKind, orderID uint) (bool, error) {
	return kind == exchange.KindBuy && a[orderID], nil
}

type inlineTx struct{}

func (inlineTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

const (
	buyerID  = uint(10)
	sellerID = uint(20)
)

type harness struct {
	orders *memBuyOrders
	trades activeTrades
	cmd    *BuyOrderCommandService
	query  *BuyOrderQueryService
}

func newHarness(balanceCheck bool) *harness {
	h := &harness{
		orders: &memBuyOrders{orders: map[uint]*domain.BuyOrder{}},
		trades: activeTrades{},
	}
	w := wallets{
		buyerID:  {exchange.NGN: dec("500000")},
		sellerID: {exchange.CAD: dec("250.75")},
	}
	v := exchange.NewValidator(profiles{buyerID: true, sellerID: true, 30: false}, w, nil, h.trades, balanceCheck)
	h.cmd = NewBuyOrderCommandService(h.orders, nil, w, v, inlineTx{}, nil)
	h.query = NewBuyOrderQueryService(h.orders, nil)
	return h
}

// ngnCadTerms 买家支付 NGN 换取 CAD，收 CAD 需要 Interac 邮箱
func ngnCadTerms() exchange.Terms {
	return exchange.Terms{
		SellCurrency:        exchange.NGN,
		BuyCurrency:         exchange.CAD,
		AvailableAmount:     dec("600000"),
		ExchangeRate:        dec("1200"),
		MinTransactionLimit: dec("12000"),
		TransactionDuration: 15,
		Payment:             exchange.PaymentDetails{InteracEmail: "ben@example.com"},
	}
}

func TestCreateBuyOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("always published", func(t *testing.T) {
		h := newHarness(false)
		dto, err := h.cmd.CreateBuyOrder(ctx, CreateBuyOrderCommand{UserID: buyerID, Terms: ngnCadTerms()})
		require.NoError(t, err)
		assert.Equal(t, string(exchange.StatusOpen), dto.Status)
		assert.True(t, dto.IsActive)
	})

	t.Run("no seller floor for buyers", func(t *testing.T) {
		h := newHarness(false)
		terms := ngnCadTerms()
		terms.AvailableAmount = dec("50000")
		terms.MinTransactionLimit = dec("1000")
		_, err := h.cmd.CreateBuyOrder(ctx, CreateBuyOrderCommand{UserID: buyerID, Terms: terms})
		assert.NoError(t, err)
	})

	t.Run("balance check when enabled", func(t *testing.T) {
		h := newHarness(true)
		_, err := h.cmd.CreateBuyOrder(ctx, CreateBuyOrderCommand{UserID: buyerID, Terms: ngnCadTerms()})
		require.Error(t, err)
		assert.Contains(t, errorx.Message(err), "insufficient NGN balance")
	})

	t.Run("interac email required to receive CAD", func(t *testing.T) {
		h := newHarness(false)
		terms := ngnCadTerms()
		terms.Payment = exchange.PaymentDetails{}
		_, err := h.cmd.CreateBuyOrder(ctx, CreateBuyOrderCommand{UserID: buyerID, Terms: terms})
		assert.Equal(t, "interacEmail is required to receive CAD", errorx.Message(err))
	})

	t.Run("not onboarded", func(t *testing.T) {
		h := newHarness(false)
		_, err := h.cmd.CreateBuyOrder(ctx, CreateBuyOrderCommand{UserID: 30, Terms: ngnCadTerms()})
		assert.Equal(t, errorx.KindBadInput, errorx.KindOf(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		h := newHarness(false)
		_, err := h.cmd.CreateBuyOrder(ctx, CreateBuyOrderCommand{UserID: 99, Terms: ngnCadTerms()})
		assert.Equal(t, errorx.KindNotFound, errorx.KindOf(err))
	})
}

func TestUpdateAndCancelBuyOrder(t *testing.T) {
	ctx := context.Background()
	h := newHarness(false)
	order, err := h.cmd.CreateBuyOrder(ctx, CreateBuyOrderCommand{UserID: buyerID, Terms: ngnCadTerms()})
	require.NoError(t, err)

	same := exchange.NGN
	_, err = h.cmd.UpdateBuyOrder(ctx, UpdateBuyOrderCommand{
		OrderID: order.ID,
		UserID:  buyerID,
		Patch:   exchange.TermsPatch{BuyCurrency: &same},
	})
	assert.Equal(t, errorx.KindBadInput, errorx.KindOf(err))

	amount := dec("700000")
	dto, err := h.cmd.UpdateBuyOrder(ctx, UpdateBuyOrderCommand{
		OrderID: order.ID,
		UserID:  buyerID,
		Patch:   exchange.TermsPatch{AvailableAmount: &amount},
	})
	require.NoError(t, err)
	assert.True(t, dto.AvailableAmount.Equal(amount))
	assert.True(t, dto.MinTransactionLimit.Equal(dec("12000")))

	_, err = h.cmd.CancelBuyOrder(ctx, order.ID, sellerID)
	assert.Equal(t, errorx.KindForbidden, errorx.KindOf(err))

	h.trades[order.ID] = true
	_, err = h.cmd.CancelBuyOrder(ctx, order.ID, buyerID)
	assert.Equal(t, errorx.KindConflict, errorx.KindOf(err))

	h.trades[order.ID] = false
	dto, err = h.cmd.CancelBuyOrder(ctx, order.ID, buyerID)
	require.NoError(t, err)
	assert.Equal(t, string(exchange.StatusCancelled), dto.Status)
	assert.False(t, dto.IsActive)

	_, err = h.cmd.UpdateBuyOrder(ctx, UpdateBuyOrderCommand{OrderID: order.ID, UserID: buyerID})
	assert.Equal(t, errorx.KindConflict, errorx.KindOf(err))
}

func TestCalculateConversionBuyer(t *testing.T) {
	ctx := context.Background()
	h := newHarness(false)
	order, err := h.cmd.CreateBuyOrder(ctx, CreateBuyOrderCommand{UserID: buyerID, Terms: ngnCadTerms()})
	require.NoError(t, err)

	t.Run("seller sees CAD balance", func(t *testing.T) {
		dto, err := h.cmd.CalculateConversionBuyer(ctx, ConversionQuery{
			OrderID:      order.ID,
			Amount:       dec("100"),
			FromCurrency: exchange.CAD,
			ToCurrency:   exchange.NGN,
			RequesterID:  sellerID,
		})
		require.NoError(t, err)
		assert.True(t, dto.ToAmount.Equal(dec("120000")))
		assert.Equal(t, "buyer_listing", dto.RateSource)
		assert.False(t, dto.IsUsingNegotiatedRate)
		assert.True(t, dto.OriginalSellerRate.Equal(dec("1200")))
		require.NotNil(t, dto.WalletBalance)
		assert.True(t, dto.WalletBalance.Equal(dec("250.75")))
	})

	t.Run("no wallet in from currency", func(t *testing.T) {
		dto, err := h.cmd.CalculateConversionBuyer(ctx, ConversionQuery{
			OrderID:      order.ID,
			Amount:       dec("120000"),
			FromCurrency: exchange.NGN,
			ToCurrency:   exchange.CAD,
			RequesterID:  sellerID,
		})
		require.NoError(t, err)
		assert.True(t, dto.ToAmount.Equal(dec("100")))
		assert.Nil(t, dto.WalletBalance)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := h.cmd.CalculateConversionBuyer(ctx, ConversionQuery{OrderID: 77, Amount: dec("1"), FromCurrency: exchange.CAD, ToCurrency: exchange.NGN})
		assert.Equal(t, errorx.KindNotFound, errorx.KindOf(err))
	})
}

func TestBuyOrderQueries(t *testing.T) {
	ctx := context.Background()
	h := newHarness(false)
	_, err := h.cmd.CreateBuyOrder(ctx, CreateBuyOrderCommand{UserID: buyerID, Terms: ngnCadTerms()})
	require.NoError(t, err)

	page, err := h.query.FindPublic(ctx, sellerID, exchange.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 10, page.Pagination.PageSize)

	page, err = h.query.FindPublic(ctx, buyerID, exchange.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	mine, err := h.query.ListMine(ctx, buyerID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.Total)

	_, err = h.query.Get(ctx, 404)
	assert.Equal(t, errorx.KindNotFound, errorx.KindOf(err))
}
