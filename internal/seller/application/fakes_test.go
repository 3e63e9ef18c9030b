package application

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	negotiation "github.com/wyfcoding/p2pexchange/internal/negotiation/domain"
	notification "github.com/wyfcoding/p2pexchange/internal/notification/domain"
	"github.com/wyfcoding/p2pexchange/internal/seller/domain"
	user "github.com/wyfcoding/p2pexchange/internal/user/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type memSellOrders struct {
	orders map[uint]*domain.SellOrder
	nextID uint
}

func newMemSellOrders() *memSellOrders {
	return &memSellOrders{orders: map[uint]*domain.SellOrder{}, nextID: 1}
}

func (m *memSellOrders) Create(ctx context.Context, o *domain.SellOrder) error {
	o.ID = m.nextID
	m.nextID++
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memSellOrders) Save(ctx context.Context, o *domain.SellOrder) error {
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memSellOrders) Get(ctx context.Context, id uint) (*domain.SellOrder, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *memSellOrders) GetForUpdate(ctx context.Context, id uint) (*domain.SellOrder, error) {
	return m.Get(ctx, id)
}

func (m *memSellOrders) ListPublic(ctx context.Context, f exchange.ListFilter) ([]*domain.SellOrder, int64, error) {
	var all []*domain.SellOrder
	for _, o := range m.orders {
		if o.Status != exchange.StatusOpen || !o.IsActive {
			continue
		}
		if f.CallerID != 0 && o.UserID == f.CallerID {
			continue
		}
		all = append(all, o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	start := f.Skip()
	if start > len(all) {
		start = len(all)
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *memSellOrders) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*domain.SellOrder, int64, error) {
	var out []*domain.SellOrder
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

type memReadRepo struct {
	cached  map[uint]*domain.SellOrder
	deletes []uint
}

func newMemReadRepo() *memReadRepo { return &memReadRepo{cached: map[uint]*domain.SellOrder{}} }

func (m *memReadRepo) Get(ctx context.Context, id uint) (*domain.SellOrder, error) {
	return m.cached[id], nil
}

func (m *memReadRepo) Save(ctx context.Context, o *domain.SellOrder) error {
	m.cached[o.ID] = o
	return nil
}

func (m *memReadRepo) Delete(ctx context.Context, id uint) error {
	delete(m.cached, id)
	m.deletes = append(m.deletes, id)
	return nil
}

type memNegotiations struct {
	items     []*negotiation.Negotiation
	lookupErr error
}

func (m *memNegotiations) Create(ctx context.Context, n *negotiation.Negotiation) error {
	n.ID = uint(len(m.items) + 1)
	m.items = append(m.items, n)
	return nil
}

func (m *memNegotiations) find(orderID, buyerID uint, statuses ...negotiation.Status) *negotiation.Negotiation {
	for _, n := range m.items {
		if n.SellOrderID != orderID || n.BuyerID != buyerID {
			continue
		}
		for _, s := range statuses {
			if n.Status == s {
				return n
			}
		}
	}
	return nil
}

func (m *memNegotiations) FindOpenByBuyer(ctx context.Context, orderID, buyerID uint) (*negotiation.Negotiation, error) {
	return m.find(orderID, buyerID, negotiation.OpenStatuses...), nil
}

func (m *memNegotiations) FindLatestAgreed(ctx context.Context, orderID, buyerID uint) (*negotiation.Negotiation, error) {
	return m.find(orderID, buyerID, negotiation.StatusAgreed), nil
}

func (m *memNegotiations) HasActive(ctx context.Context, orderID uint) (bool, error) {
	for _, n := range m.items {
		if n.SellOrderID != orderID {
			continue
		}
		for _, s := range negotiation.ActiveStatuses {
			if n.Status == s {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *memNegotiations) FindAgreed(ctx context.Context, orderID, buyerID uint) (*exchange.AgreedRate, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	n := m.find(orderID, buyerID, negotiation.StatusAgreed)
	if n == nil {
		return nil, nil
	}
	return &exchange.AgreedRate{NegotiationID: n.ID, ProposedRate: n.ProposedRate}, nil
}

type memUsers map[uint]*user.User

func (m memUsers) Get(ctx context.Context, id uint) (*user.User, error) { return m[id], nil }

func (m memUsers) FindProfile(ctx context.Context, id uint) (*exchange.OwnerProfile, error) {
	u := m[id]
	if u == nil {
		return nil, nil
	}
	return &exchange.OwnerProfile{UserID: u.ID, PINSet: u.PIN != nil, KYCStatus: u.KYCStatus}, nil
}

type memWallets map[uint]map[exchange.Currency]decimal.Decimal

func (m memWallets) Balance(ctx context.Context, userID uint, c exchange.Currency) (*decimal.Decimal, error) {
	b, ok := m[userID][c]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

type memTrades struct{ active map[uint]bool }

func (m memTrades) HasActive(ctx context.Context, kind exchange.OrderKind, orderID uint) (bool, error) {
	return m.active[orderID], nil
}

type passthroughTx struct{}

func (passthroughTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingNotifier struct {
	pushes []notification.Push
	err    error
}

func (r *recordingNotifier) Notify(ctx context.Context, p notification.Push) error {
	r.pushes = append(r.pushes, p)
	return r.err
}

const (
	sellerID = uint(1)
	buyerID  = uint(2)
)

type fixture struct {
	orders       *memSellOrders
	cache        *memReadRepo
	negotiations *memNegotiations
	trades       memTrades
	notifier     *recordingNotifier
	cmd          *SellOrderCommandService
	query        *SellOrderQueryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pin := "hashed"
	users := memUsers{
		sellerID: {ID: sellerID, FirstName: "Sade", LastName: "Ade", PIN: &pin, KYCStatus: exchange.KYCSuccess},
		buyerID:  {ID: buyerID, FirstName: "Ben", LastName: "Li", PIN: &pin, KYCStatus: exchange.KYCSuccess},
	}
	wallets := memWallets{sellerID: {exchange.CAD: dec("5000")}}

	f := &fixture{
		orders:       newMemSellOrders(),
		cache:        newMemReadRepo(),
		negotiations: &memNegotiations{},
		trades:       memTrades{active: map[uint]bool{}},
		notifier:     &recordingNotifier{},
	}
	validator := exchange.NewValidator(users, wallets, f.negotiations, f.trades, false)
	f.cmd = NewSellOrderCommandService(CommandDeps{
		Repo:         f.orders,
		ReadRepo:     f.cache,
		Negotiations: f.negotiations,
		Users:        users,
		Validator:    validator,
		Resolver:     exchange.NewRateResolver(f.negotiations),
		Tx:           passthroughTx{},
		Notifier:     f.notifier,
	})
	f.query = NewSellOrderQueryService(f.orders, f.cache)
	return f
}

func cadNgnTerms() exchange.Terms {
	return exchange.Terms{
		SellCurrency:        exchange.CAD,
		BuyCurrency:         exchange.NGN,
		AvailableAmount:     dec("1000"),
		ExchangeRate:        dec("1200"),
		MinTransactionLimit: dec("100"),
		TransactionDuration: 30,
		Payment: exchange.PaymentDetails{
			BankName:      "GTBank",
			AccountNumber: "0123456789",
			AccountName:   "Sade Ade",
		},
	}
}

func (f *fixture) openOrder(t *testing.T) *SellOrderDTO {
	t.Helper()
	dto, err := f.cmd.CreateSellOrder(context.Background(), CreateSellOrderCommand{
		UserID: sellerID,
		Terms:  cadNgnTerms(),
		Action: exchange.ActionPublish,
	})
	if err != nil {
		t.Fatalf("create sell order: %v", err)
	}
	return dto
}

var errLookup = errors.New("negotiation store unavailable")
