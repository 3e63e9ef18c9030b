package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/p2pexchange/pkg/errorx"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency(" cad ")
	require.NoError(t, err)
	assert.Equal(t, CAD, c)

	_, err = ParseCurrency("EUR")
	require.Error(t, err)
	assert.True(t, errorx.Is(err, errorx.KindBadInput))
}

func TestPairBase(t *testing.T) {
	assert.Equal(t, CAD, Pair{Sell: NGN, Buy: CAD}.Base())
	assert.Equal(t, CAD, Pair{Sell: CAD, Buy: NGN}.Base())
	assert.Equal(t, USD, Pair{Sell: CAD, Buy: USD}.Base())
	assert.Equal(t, USD, Pair{Sell: USD, Buy: NGN}.Base())
}

func TestConvert_CADNGN(t *testing.T) {
	pair := Pair{Sell: CAD, Buy: NGN}
	rate := dec("1200")

	out, err := Convert(dec("100"), CAD, NGN, pair, rate)
	require.NoError(t, err)
	assert.True(t, dec("120000").Equal(out.ToAmount), out.ToAmount.String())
	assert.True(t, out.Fee.IsZero())
	assert.Equal(t, NGN, out.ToCurrency)

	back, err := Convert(dec("120000"), NGN, CAD, pair, rate)
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(back.ToAmount), back.ToAmount.String())
}

func TestConvert_DirectionIndependentOfOrderSide(t *testing.T) {
	// 买单的币对方向与卖单相反，换算方向只取决于基础币种
	pair := Pair{Sell: NGN, Buy: CAD}
	out, err := Convert(dec("100"), CAD, NGN, pair, dec("1200"))
	require.NoError(t, err)
	assert.True(t, dec("120000").Equal(out.ToAmount))
}

func TestConvert_RoundsHalfUpAtCent(t *testing.T) {
	pair := Pair{Sell: USD, Buy: CAD}
	out, err := Convert(dec("10"), CAD, USD, pair, dec("1.36"))
	require.NoError(t, err)
	// 10 / 1.36 = 7.3529...
	assert.Equal(t, "7.35", out.ToAmount.StringFixed(2))

	out, err = Convert(dec("0.125"), USD, CAD, pair, dec("1"))
	require.NoError(t, err)
	assert.Equal(t, "0.13", out.ToAmount.StringFixed(2))
}

func TestConvert_RoundTrip(t *testing.T) {
	tolerance := dec("0.01")
	cases := []struct {
		pair   Pair
		amount string
		rate   string
	}{
		{Pair{Sell: CAD, Buy: NGN}, "123.45", "1187.5"},
		{Pair{Sell: CAD, Buy: NGN}, "999.99", "1200"},
		{Pair{Sell: USD, Buy: CAD}, "250.10", "1.3675"},
		{Pair{Sell: USD, Buy: NGN}, "100", "1530.25"},
	}

	for _, tc := range cases {
		base := tc.pair.Base()
		quote := tc.pair.Sell
		if quote == base {
			quote = tc.pair.Buy
		}
		rate := dec(tc.rate)

		there, err := Convert(dec(tc.amount), base, quote, tc.pair, rate)
		require.NoError(t, err)
		back, err := Convert(there.ToAmount, quote, base, tc.pair, rate)
		require.NoError(t, err)

		diff := back.ToAmount.Sub(dec(tc.amount)).Abs()
		assert.True(t, diff.LessThanOrEqual(tolerance), "%s %s: diff %s", tc.amount, tc.rate, diff)
	}

	// quote -> base -> quote，金额为汇率整数倍
	pair := Pair{Sell: NGN, Buy: CAD}
	there, err := Convert(dec("240000"), NGN, CAD, pair, dec("1200"))
	require.NoError(t, err)
	back, err := Convert(there.ToAmount, CAD, NGN, pair, dec("1200"))
	require.NoError(t, err)
	assert.True(t, dec("240000").Equal(back.ToAmount))
}

func TestConvert_Rejects(t *testing.T) {
	pair := Pair{Sell: CAD, Buy: NGN}

	_, err := Convert(dec("0"), CAD, NGN, pair, dec("1200"))
	assert.True(t, errorx.Is(err, errorx.KindBadInput))

	_, err = Convert(dec("10"), CAD, NGN, pair, dec("0"))
	assert.True(t, errorx.Is(err, errorx.KindBadInput))

	_, err = Convert(dec("10"), CAD, USD, pair, dec("1200"))
	require.Error(t, err)
	assert.True(t, errorx.Is(err, errorx.KindBadInput))
	assert.Contains(t, errorx.Message(err), "unsupported conversion")

	_, err = Convert(dec("10"), CAD, CAD, pair, dec("1200"))
	assert.True(t, errorx.Is(err, errorx.KindBadInput))
}
