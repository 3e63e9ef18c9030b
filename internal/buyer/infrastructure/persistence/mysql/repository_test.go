package mysql

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func listSQL(t *testing.T, f exchange.ListFilter) string {
	t.Helper()
	gdb, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "user:pass@tcp(127.0.0.1:3306)/p2p?parseTime=True",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	f.Normalize()
	return gdb.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []buyOrderRow
		return publicQuery(tx, f).Find(&rows)
	})
}

func TestBuyListing_ExactRating(t *testing.T) {
	r := decimal.RequireFromString("4.5")
	sql := listSQL(t, exchange.ListFilter{CallerID: 3, Rating: &r})

	assert.Contains(t, sql, "JOIN users ON users.id = buy_orders.user_id")
	assert.Contains(t, sql, "buy_orders.user_id <> 3")
	assert.Contains(t, sql, "users.rating = '4.5'")
	assert.NotContains(t, sql, "BETWEEN")
}

func TestBuyListing_SearchIsNarrow(t *testing.T) {
	sql := listSQL(t, exchange.ListFilter{CallerID: 3, Search: "Ade"})
	assert.Contains(t, sql, "LOWER(users.last_name) LIKE '%ade%'")
	assert.Contains(t, sql, "CAST(buy_orders.min_transaction_limit AS CHAR) LIKE '%ade%'")
	assert.NotContains(t, sql, "CAST(users.rating AS CHAR)")
	assert.NotContains(t, sql, "LOWER(buy_orders.status)")
}

func TestBuyListing_SearchMatchesWildcardsLiterally(t *testing.T) {
	sql := listSQL(t, exchange.ListFilter{CallerID: 3, Search: "%"})
	assert.Contains(t, sql, `LOWER(users.first_name) LIKE '%\%%' ESCAPE '\\'`)
	assert.NotContains(t, sql, "LIKE '%%%'")
}

func TestBuyListing_RecommendedFallsBackToCreatedAt(t *testing.T) {
	sql := listSQL(t, exchange.ListFilter{CallerID: 3, SortBy: exchange.SortRecommended})
	assert.Contains(t, sql, "ORDER BY buy_orders.created_at DESC")
	assert.NotContains(t, sql, "users.completed_trades DESC")
}

func TestBuyListing_FiltersAndPage(t *testing.T) {
	usd := exchange.USD
	rate := decimal.NewFromInt(1500)
	minutes := 45
	sql := listSQL(t, exchange.ListFilter{
		CallerID:            3,
		CounterpartCurrency: &usd,
		ExchangeRate:        &rate,
		CompletionTime:      &minutes,
		Page:                3,
		Limit:               5,
	})
	assert.Contains(t, sql, "buy_orders.sell_currency = 'USD'")
	assert.Contains(t, sql, "buy_orders.exchange_rate = '1500'")
	assert.Contains(t, sql, "buy_orders.transaction_duration = 45")
	assert.Contains(t, sql, "LIMIT 5 OFFSET 10")
}
