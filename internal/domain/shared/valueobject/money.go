// Package valueobject holds the shared domain value objects.
package valueobject

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code.
type Currency string

// EUR is the currency every salon tenant operates in today.
const EUR Currency = "EUR"

// Money is an immutable monetary amount with its currency. Arithmetic
// happens on the unwrapped decimal; Money guards construction and the
// currency invariant.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney builds a Money in an explicit currency.
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyEUR builds a Money in EUR.
func NewMoneyEUR(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: EUR}
}

// NewMoneyEURFromFloat builds a Money in EUR from a float64.
func NewMoneyEURFromFloat(amount float64) Money {
	return Money{amount: decimal.NewFromFloat(amount), currency: EUR}
}

// ZeroEUR returns zero euros.
func ZeroEUR() Money {
	return Money{amount: decimal.Zero, currency: EUR}
}

func (m Money) Amount() decimal.Decimal {
	return m.amount
}

func (m Money) Currency() Currency {
	return m.currency
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// String renders the amount with two decimal places and the currency code,
// e.g. "150.00 EUR".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

// StringFixed renders only the amount with the given decimal places.
func (m Money) StringFixed(places int32) string {
	return m.amount.StringFixed(places)
}
