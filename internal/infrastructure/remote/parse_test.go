package remote

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerdesk/sellerdesk/internal/domain/order"
)

func TestParseOrder_SchemaDrift(t *testing.T) {
	raw := json.RawMessage(`{
		"id": 1,
		"currency": "EUR",
		"status": "payment_success",
		"some_future_field": true,
		"another_new_field": {"nested": 1}
	}`)

	var diags, drift []string
	o := parseOrder(raw, &diags, &drift)

	assert.Equal(t, int64(1), o.ID)
	// Unknown keys are reported, never fatal
	assert.Contains(t, drift, "order.another_new_field")
	assert.Contains(t, drift, "order.some_future_field")
}

func TestParseOrder_MissingRequiredKeys(t *testing.T) {
	raw := json.RawMessage(`{"id": 2}`)

	var diags, drift []string
	o := parseOrder(raw, &diags, &drift)

	// The order is still usable with zero values
	assert.Equal(t, int64(2), o.ID)
	assert.Empty(t, o.Currency)
	assert.True(t, o.Total.IsZero())
	assert.NotEmpty(t, diags)
}

func TestParseOrder_OptionalTimestamps(t *testing.T) {
	raw := json.RawMessage(`{
		"id": 3,
		"created_at": "2024-01-15T08:30:00.000Z",
		"fulfilled_at": null
	}`)

	var diags, drift []string
	o := parseOrder(raw, &diags, &drift)

	assert.False(t, o.CreatedAt.IsZero())
	assert.Nil(t, o.FulfilledAt)
	assert.Nil(t, o.FulfillUntil)
}

func TestParseOrder_LocalFieldsStartFresh(t *testing.T) {
	var diags, drift []string
	o := parseOrder(json.RawMessage(sampleOrderJSON(9)), &diags, &drift)

	assert.Equal(t, order.PackagingNone, o.Packaging)
	assert.Empty(t, o.Note)
	for _, item := range o.Items {
		assert.False(t, item.Packaged)
	}
}

func TestParseOrder_MoneyPrecision(t *testing.T) {
	raw := json.RawMessage(`{"id": 4, "total": 0.1, "payout": 0.2}`)

	var diags, drift []string
	o := parseOrder(raw, &diags, &drift)

	sum := o.Total.Add(o.Payout)
	assert.True(t, sum.Equal(decimal.NewFromFloat(0.3)), "got %s", sum)
}

func TestParseItem_Options(t *testing.T) {
	raw := json.RawMessage(`{
		"product_id": 5,
		"product_name": "Kit",
		"product_description": "",
		"quantity": 3,
		"price": 12.50,
		"weight": 20,
		"options": [
			{"name": "Color", "choice": "Blue", "weight": 2},
			{"name": "Header", "choice": "Soldered", "weight": 1}
		]
	}`)

	var diags, drift []string
	item := parseItem(raw, &diags, &drift)

	assert.Equal(t, 3, item.Quantity)
	require.Len(t, item.Options, 2)
	assert.Equal(t, "Soldered", item.Options[1].Choice)
	assert.Empty(t, diags)
	assert.Empty(t, drift)
}
