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
	"github.com/wyfcoding/p2pexchange/internal/buyer/application"
	"github.com/wyfcoding/p2pexchange/internal/buyer/domain"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"github.com/wyfcoding/p2pexchange/pkg/contextx"
	"github.com/wyfcoding/p2pexchange/pkg/validation"
)

type orderStore map[uint]*domain.BuyOrder

func (s orderStore) Create(ctx context.Context, o *domain.BuyOrder) error {
	o.ID = uint(len(s) + 1)
	s[o.ID] = o
	return nil
}
func (s orderStore) Save(ctx context.Context, o *domain.BuyOrder) error { s[o.ID] = o; return nil }
func (s orderStore) Get(ctx context.Context, id uint) (*domain.BuyOrder, error) {
	return s[id], nil
}
func (s orderStore) GetForUpdate(ctx context.Context, id uint) (*domain.BuyOrder, error) {
	return s[id], nil
}
func (s orderStore) ListPublic(ctx context.Context, f exchange.ListFilter) ([]*domain.BuyOrder, int64, error) {
	var out []*domain.BuyOrder
	for _, o := range s {
		if o.UserID != f.CallerID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}
func (s orderStore) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*domain.BuyOrder, int64, error) {
	var out []*domain.BuyOrder
	for _, o := range s {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

type everyoneOnboarded struct{}

func (everyoneOnboarded) FindProfile(ctx context.Context, id uint) (*exchange.OwnerProfile, error) {
	return &exchange.OwnerProfile{UserID: id, PINSet: true, KYCStatus: exchange.KYCSuccess}, nil
}

type usdWallets struct{}

func (usdWallets) Balance(ctx context.Context, userID uint, c exchange.Currency) (*decimal.Decimal, error) {
	if c != exchange.USD {
		return nil, nil
	}
	b := decimal.NewFromInt(42)
	return &b, nil
}

type direct struct{}

func (direct) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type body struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
	Count   int64           `json:"count"`
}

func setup(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.RegisterOneOfFold("currency", "CAD", "NGN", "USD"))

	store := orderStore{}
	v := exchange.NewValidator(everyoneOnboarded{}, usdWallets{}, nil, nil, false)
	cmd := application.NewBuyOrderCommandService(store, nil, usdWallets{}, v, direct{}, nil)
	query := application.NewBuyOrderQueryService(store, nil)

	r := gin.New()
	v1 := r.Group("/api/v1")
	protected := v1.Group("", func(c *gin.Context) {
		if c.GetHeader("X-User") == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		uid := uint(5)
		if c.GetHeader("X-User") == "6" {
			uid = 6
		}
		c.Request = c.Request.WithContext(contextx.WithUserID(c.Request.Context(), uid))
	})
	optional := v1.Group("", func(c *gin.Context) {
		if c.GetHeader("X-User") == "6" {
			c.Request = c.Request.WithContext(contextx.WithUserID(c.Request.Context(), 6))
		}
	})
	NewBuyOrderHandler(cmd, query).RegisterRoutes(protected, optional)
	return r
}

func call(r *gin.Engine, method, path, user, payload string) (int, body) {
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var b body
	_ = json.Unmarshal(w.Body.Bytes(), &b)
	return w.Code, b
}

const buyOrderJSON = `{
	"sellCurrency": "NGN",
	"buyCurrency": "USD",
	"availableAmount": "1500000",
	"exchangeRate": "1500",
	"minTransactionLimit": "15000",
	"transactionDuration": 60,
	"bankName": "Chase",
	"accountNumber": "987654321"
}`

func TestBuyOrderHandlers(t *testing.T) {
	r := setup(t)

	code, _ := call(r, http.MethodPost, "/api/v1/buyers/createBuyerOrder", "", buyOrderJSON)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, b := call(r, http.MethodPost, "/api/v1/buyers/createBuyerOrder", "5", buyOrderJSON)
	require.Equal(t, http.StatusCreated, code)
	var created application.BuyOrderDTO
	require.NoError(t, json.Unmarshal(b.Data, &created))
	assert.Equal(t, "OPEN", created.Status)

	code, b = call(r, http.MethodGet, "/api/v1/buyers", "5", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), b.Count)

	_, b = call(r, http.MethodGet, "/api/v1/buyers/public", "6", "")
	assert.Equal(t, int64(1), b.Count)

	code, b = call(r, http.MethodGet, "/api/v1/buyers/public?sortBy=recommended", "6", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "BAD_INPUT", b.Error)

	code, _ = call(r, http.MethodPatch, "/api/v1/buyers/1", "6", `{"exchangeRate": "1600"}`)
	assert.Equal(t, http.StatusForbidden, code)

	code, b = call(r, http.MethodPatch, "/api/v1/buyers/1", "5", `{"exchangeRate": "1600"}`)
	require.Equal(t, http.StatusOK, code)
	var updated application.BuyOrderDTO
	require.NoError(t, json.Unmarshal(b.Data, &updated))
	assert.True(t, updated.ExchangeRate.Equal(decimal.NewFromInt(1600)))
}

func TestBuyerConversionHandler(t *testing.T) {
	r := setup(t)
	code, _ := call(r, http.MethodPost, "/api/v1/buyers/createBuyerOrder", "5", buyOrderJSON)
	require.Equal(t, http.StatusCreated, code)

	code, b := call(r, http.MethodPost, "/api/v1/buyers/calculate-conversion-buyer/1", "6",
		`{"amount": "10", "fromCurrency": "usd", "toCurrency": "ngn"}`)
	require.Equal(t, http.StatusOK, code)

	var dto application.ConversionDTO
	require.NoError(t, json.Unmarshal(b.Data, &dto))
	assert.True(t, dto.ToAmount.Equal(decimal.NewFromInt(15000)))
	assert.Equal(t, "buyer_listing", dto.RateSource)
	require.NotNil(t, dto.WalletBalance)
	assert.True(t, dto.WalletBalance.Equal(decimal.NewFromInt(42)))
	assert.True(t, dto.OriginalSellerRate.Equal(decimal.NewFromInt(1500)))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b.Data, &raw))
	assert.Equal(t, false, raw["isUsingNegotiatedRate"])
	assert.Equal(t, "1500", raw["originalSellerRate"])

	code, b = call(r, http.MethodPost, "/api/v1/buyers/calculate-conversion-buyer/1", "",
		`{"amount": "10", "fromCurrency": "usd", "toCurrency": "ngn"}`)
	require.Equal(t, http.StatusOK, code)
	dto = application.ConversionDTO{}
	require.NoError(t, json.Unmarshal(b.Data, &dto))
	assert.Nil(t, dto.WalletBalance)

	code, _ = call(r, http.MethodPost, "/api/v1/buyers/calculate-conversion-buyer/x", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
}
