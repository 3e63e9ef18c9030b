package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	"github.com/wyfcoding/p2pexchange/pkg/errorx"
)

func TestNewPortfolioValidation(t *testing.T) {
	_, err := NewPortfolio(1, exchange.Currency("EUR"), decimal.Zero, decimal.Zero, exchange.PaymentDetails{})
	assert.True(t, errorx.Is(err, errorx.KindBadInput))

	_, err = NewPortfolio(1, exchange.NGN, decimal.NewFromInt(-1), decimal.Zero, exchange.PaymentDetails{})
	assert.True(t, errorx.Is(err, errorx.KindBadInput))

	p, err := NewPortfolio(1, exchange.NGN, decimal.NewFromInt(250000), decimal.NewFromInt(1200), exchange.PaymentDetails{BankName: "GTBank"})
	require.NoError(t, err)
	assert.True(t, p.OwnedBy(1))
}

func TestApplyIsAtomic(t *testing.T) {
	p, err := NewPortfolio(1, exchange.CAD, decimal.NewFromInt(100), decimal.NewFromInt(1200), exchange.PaymentDetails{InteracEmail: "a@b.ca"})
	require.NoError(t, err)

	bad := decimal.NewFromInt(-5)
	bank := "RBC"
	err = p.Apply(Patch{AvailableAmount: &bad, BankName: &bank})
	assert.True(t, errorx.Is(err, errorx.KindBadInput))
	assert.True(t, p.AvailableAmount.Equal(decimal.NewFromInt(100)))
	assert.Empty(t, p.Payment.BankName)

	amount := decimal.NewFromInt(300)
	require.NoError(t, p.Apply(Patch{AvailableAmount: &amount, BankName: &bank}))
	assert.True(t, p.AvailableAmount.Equal(amount))
	assert.Equal(t, "RBC", p.Payment.BankName)
	assert.Equal(t, "a@b.ca", p.Payment.InteracEmail)
}
