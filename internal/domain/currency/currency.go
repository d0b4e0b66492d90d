// Package currency converts order amounts between currencies using a
// rate table fetched once per session from an external rate source.
package currency

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrUnknownCurrency indicates a currency code missing from the rate table
var ErrUnknownCurrency = errors.New("currency: no rate for currency")

// Rates maps currency codes to their rate against a common base
type Rates map[string]float64

// Convert converts amount from one currency to another via the rate
// table. Both currencies must be quoted against the same base.
func Convert(amount decimal.Decimal, from, to string, rates Rates) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	fromRate, ok := rates[from]
	if !ok || fromRate == 0 {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, from)
	}
	toRate, ok := rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}

	factor := decimal.NewFromFloat(toRate).Div(decimal.NewFromFloat(fromRate))
	return amount.Mul(factor), nil
}
