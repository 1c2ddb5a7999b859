package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(decimal.NewFromFloat(10.50), EUR)
	require.NoError(t, err)
	assert.Equal(t, EUR, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.NewFromFloat(10.50)))

	usd, err := NewMoney(decimal.NewFromInt(5), "USD")
	require.NoError(t, err)
	assert.Equal(t, Currency("USD"), usd.Currency())

	_, err = NewMoney(decimal.Zero, "")
	assert.Error(t, err)
}

func TestNewMoneyEUR(t *testing.T) {
	m := NewMoneyEUR(decimal.NewFromFloat(99.99))
	assert.Equal(t, EUR, m.Currency())
	assert.Equal(t, "99.99", m.StringFixed(2))
}

func TestMoney_SignHelpers(t *testing.T) {
	assert.True(t, ZeroEUR().IsZero())
	assert.Equal(t, EUR, ZeroEUR().Currency())

	assert.True(t, NewMoneyEURFromFloat(1).IsPositive())
	assert.False(t, NewMoneyEURFromFloat(1).IsNegative())

	assert.True(t, NewMoneyEURFromFloat(-1).IsNegative())
	assert.False(t, NewMoneyEURFromFloat(-1).IsPositive())

	assert.False(t, ZeroEUR().IsPositive())
	assert.False(t, ZeroEUR().IsNegative())
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "10.00 EUR", NewMoneyEURFromFloat(10).String())
	assert.Equal(t, "150.00 EUR", NewMoneyEURFromFloat(150).String())
	assert.Equal(t, "-3.50 EUR", NewMoneyEURFromFloat(-3.5).String())
}

func TestMoney_StringFixed(t *testing.T) {
	m := NewMoneyEURFromFloat(12.3456)
	assert.Equal(t, "12.35", m.StringFixed(2))
	assert.Equal(t, "12.346", m.StringFixed(3))
	assert.Equal(t, "12", m.StringFixed(0))
}
