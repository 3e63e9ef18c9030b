package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"github.com/wyfcoding/p2pexchange/internal/seller/application"
	"github.com/wyfcoding/p2pexchange/internal/seller/domain"
	"github.com/wyfcoding/p2pexchange/pkg/contextx"
	"github.com/wyfcoding/p2pexchange/pkg/validation"
)

type stubOrders struct{ orders map[uint]*domain.SellOrder }

func (s *stubOrders) Create(ctx context.Context, o *domain.SellOrder) error {
	o.ID = uint(len(s.orders) + 1)
	s.orders[o.ID] = o
	return nil
}
func (s *stubOrders) Save(ctx context.Context, o *domain.SellOrder) error {
	s.orders[o.ID] = o
	return nil
}
func (s *stubOrders) Get(ctx context.Context, id uint) (*domain.SellOrder, error) {
	return s.orders[id], nil
}
func (s *stubOrders) GetForUpdate(ctx context.Context, id uint) (*domain.SellOrder, error) {
	return s.orders[id], nil
}
func (s *stubOrders) ListPublic(ctx context.Context, f exchange.ListFilter) ([]*domain.SellOrder, int64, error) {
	var out []*domain.SellOrder
	for _, o := range s.orders {
		if o.UserID != f.CallerID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}
func (s *stubOrders) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*domain.SellOrder, int64, error) {
	return nil, 0, nil
}

type stubProfiles struct{}

func (stubProfiles) FindProfile(ctx context.Context, id uint) (*exchange.OwnerProfile, error) {
	return &exchange.OwnerProfile{UserID: id, PINSet: true, KYCStatus: exchange.KYCSuccess}, nil
}

type stubWallets struct{}

func (stubWallets) Balance(ctx context.Context, userID uint, c exchange.Currency) (*decimal.Decimal, error) {
	b := decimal.NewFromInt(10000)
	return &b, nil
}

type noTx struct{}

func (noTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	Data       json.RawMessage `json:"data"`
	Count      int64           `json:"count"`
	TotalPages int64           `json:"totalPages"`
}

func newRouter(t *testing.T) (*gin.Engine, *stubOrders) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.RegisterOneOfFold("currency", "CAD", "NGN", "USD"))

	orders := &stubOrders{orders: map[uint]*domain.SellOrder{}}
	validator := exchange.NewValidator(stubProfiles{}, stubWallets{}, nil, nil, false)
	cmd := application.NewSellOrderCommandService(application.CommandDeps{
		Repo:      orders,
		Validator: validator,
		Resolver:  exchange.NewRateResolver(nil),
		Tx:        noTx{},
	})
	query := application.NewSellOrderQueryService(orders, nil)

	r := gin.New()
	v1 := r.Group("/api/v1")
	protected := v1.Group("", func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			id := uint(1)
			if uid == "2" {
				id = 2
			}
			c.Request = c.Request.WithContext(contextx.WithUserID(c.Request.Context(), id))
		}
	})
	NewSellOrderHandler(cmd, query).RegisterRoutes(protected, protected)
	return r, orders
}

func do(r *gin.Engine, method, path, user, body string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

const createBody = `{
	"sellCurrency": "cad",
	"buyCurrency": "NGN",
	"availableAmount": "1000",
	"exchangeRate": 1200,
	"minTransactionLimit": "100",
	"transactionDuration": 30,
	"bankName": "GTBank",
	"accountNumber": "0123456789",
	"accountName": "Sade Ade",
	"action": "publish"
}`

func TestCreateSellOrderHandler(t *testing.T) {
	r, orders := newRouter(t)

	w, env := do(r, http.MethodPost, "/api/v1/p2p/sellers/createSellerOrder", "1", createBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)

	var dto application.SellOrderDTO
	require.NoError(t, json.Unmarshal(env.Data, &dto))
	assert.Equal(t, "CAD", dto.SellCurrency)
	assert.Equal(t, "OPEN", dto.Status)
	assert.Len(t, orders.orders, 1)
}

func TestCreateSellOrderHandlerValidation(t *testing.T) {
	r, orders := newRouter(t)

	w, env := do(r, http.MethodPost, "/api/v1/p2p/sellers/createSellerOrder", "1", `{"sellCurrency":"EUR"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "BAD_INPUT", env.Error)

	same := strings.Replace(createBody, `"NGN"`, `"CAD"`, 1)
	w, env = do(r, http.MethodPost, "/api/v1/p2p/sellers/createSellerOrder", "1", same)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Message, "must be different")
	assert.Empty(t, orders.orders)
}

func TestSellOrderRoutes(t *testing.T) {
	r, _ := newRouter(t)
	_, _ = do(r, http.MethodPost, "/api/v1/p2p/sellers/createSellerOrder", "1", createBody)

	t.Run("detail", func(t *testing.T) {
		w, env := do(r, http.MethodGet, "/api/v1/p2p/sellers/1", "2", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
	})

	t.Run("malformed id", func(t *testing.T) {
		w, env := do(r, http.MethodGet, "/api/v1/p2p/sellers/abc", "2", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "BAD_INPUT", env.Error)
	})

	t.Run("unknown order", func(t *testing.T) {
		w, _ := do(r, http.MethodGet, "/api/v1/p2p/sellers/99", "2", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("public list hides own orders", func(t *testing.T) {
		_, env := do(r, http.MethodGet, "/api/v1/p2p/sellers/public", "1", "")
		assert.Equal(t, int64(0), env.Count)

		_, env = do(r, http.MethodGet, "/api/v1/p2p/sellers/public?limit=10&page=1", "2", "")
		assert.Equal(t, int64(1), env.Count)
		assert.Equal(t, int64(1), env.TotalPages)
	})

	t.Run("other users cannot cancel", func(t *testing.T) {
		w, env := do(r, http.MethodDelete, "/api/v1/p2p/sellers/1", "2", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", env.Error)
	})

	t.Run("conversion", func(t *testing.T) {
		w, env := do(r, http.MethodPost, "/api/v1/p2p/sellers/calculate-conversion/1", "",
			`{"amount": 100, "fromCurrency": "CAD", "toCurrency": "NGN"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var dto application.ConversionDTO
		require.NoError(t, json.Unmarshal(env.Data, &dto))
		assert.True(t, dto.ToAmount.Equal(decimal.NewFromInt(120000)))
		assert.Equal(t, "seller_listing", dto.RateSource)
	})

	t.Run("conversion outside the pair", func(t *testing.T) {
		w, _ := do(r, http.MethodPost, "/api/v1/p2p/sellers/calculate-conversion/1", "",
			`{"amount": 100, "fromCurrency": "USD", "toCurrency": "NGN"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("owner cancels", func(t *testing.T) {
		w, env := do(r, http.MethodDelete, "/api/v1/p2p/sellers/1", "1", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var dto application.SellOrderDTO
		require.NoError(t, json.Unmarshal(env.Data, &dto))
		assert.Equal(t, "CANCELLED", dto.Status)
		assert.False(t, dto.IsActive)
	})
}
