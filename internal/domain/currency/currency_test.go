package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	rates := Rates{
		"EUR": 1.0,
		"USD": 1.10,
		"GBP": 0.85,
	}

	t.Run("same currency is identity", func(t *testing.T) {
		got, err := Convert(decimal.NewFromInt(10), "EUR", "EUR", rates)
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(10)))
	})

	t.Run("converts via base", func(t *testing.T) {
		got, err := Convert(decimal.NewFromInt(100), "EUR", "USD", rates)
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(110)), "got %s", got)
	})

	t.Run("converts between non-base currencies", func(t *testing.T) {
		got, err := Convert(decimal.NewFromInt(110), "USD", "EUR", rates)
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(100)), "got %s", got)
	})

	t.Run("unknown source currency", func(t *testing.T) {
		_, err := Convert(decimal.NewFromInt(1), "XXX", "EUR", rates)
		assert.ErrorIs(t, err, ErrUnknownCurrency)
	})

	t.Run("unknown target currency", func(t *testing.T) {
		_, err := Convert(decimal.NewFromInt(1), "EUR", "XXX", rates)
		assert.ErrorIs(t, err, ErrUnknownCurrency)
	})
}
