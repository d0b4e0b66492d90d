package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestOrder_StatusString(t *testing.T) {
	shipped := timePtr(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		name        string
		status      string
		fulfilledAt *time.Time
		packaging   int64
		want        string
	}{
		{
			name:      "paid order",
			status:    StatusPaymentSuccess,
			packaging: PackagingNone,
			want:      "Paid",
		},
		{
			name:      "packaged beats paid",
			status:    StatusPaymentSuccess,
			packaging: PackagingDefault,
			want:      "Packaged",
		},
		{
			name:        "shipped beats packaged and paid",
			status:      StatusPaymentSuccess,
			fulfilledAt: shipped,
			packaging:   3,
			want:        "Shipped",
		},
		{
			name:        "refunded beats shipped",
			status:      StatusRefunded,
			fulfilledAt: shipped,
			packaging:   3,
			want:        "Refunded",
		},
		{
			name:      "unknown remote status",
			status:    "something_new",
			packaging: PackagingNone,
			want:      "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New()
			o.Status = tt.status
			o.FulfilledAt = tt.fulfilledAt
			o.Packaging = tt.packaging
			assert.Equal(t, tt.want, o.StatusString())
		})
	}
}

func TestOrder_CalcWeight(t *testing.T) {
	o := New()
	o.Weight.Base = 50
	o.Items = []Item{
		{Quantity: 2, Weight: 10},
		{Quantity: 1, Weight: 5},
	}

	assert.InDelta(t, 75.0, o.CalcWeight(), 1e-9)
}

func TestOrder_CalcWeight_NoItems(t *testing.T) {
	o := New()
	o.Weight.Base = 12.5

	assert.InDelta(t, 12.5, o.CalcWeight(), 1e-9)
}

func TestOrder_ItemListing(t *testing.T) {
	o := New()
	o.Items = []Item{
		{Quantity: 2, Product: Product{Name: "Widget"}, Options: []ItemOption{{Name: "Color", Choice: "Red"}}},
		{Quantity: 1, Product: Product{Name: "Gadget"}},
	}

	assert.Equal(t, "2x Widget (+options), 1x Gadget", o.ItemListing())
}

func TestOrder_Equal(t *testing.T) {
	base := func() Order {
		o := New()
		o.ID = 42
		o.Currency = "EUR"
		o.Total = decimal.NewFromFloat(19.90)
		o.Status = StatusPaymentSuccess
		o.CreatedAt = time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
		o.UpdatedAt = time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC)
		o.Items = []Item{
			{
				Product:  Product{ID: 7, Name: "Widget", SKU: "W-1"},
				Quantity: 2,
				Price:    decimal.NewFromFloat(9.95),
				Weight:   10,
				Options:  []ItemOption{{Name: "Color", Choice: "Red"}},
			},
		}
		return o
	}

	t.Run("identical snapshots are equal", func(t *testing.T) {
		a, b := base(), base()
		assert.True(t, a.Equal(&b))
	})

	t.Run("decimal representation does not matter", func(t *testing.T) {
		a, b := base(), base()
		b.Total = decimal.RequireFromString("19.9000")
		assert.True(t, a.Equal(&b))
	})

	t.Run("remote field change detected", func(t *testing.T) {
		a, b := base(), base()
		b.Status = StatusRefunded
		assert.False(t, a.Equal(&b))
	})

	t.Run("local field change detected", func(t *testing.T) {
		a, b := base(), base()
		b.Packaging = PackagingDefault
		assert.False(t, a.Equal(&b))

		a, b = base(), base()
		b.Items[0].Packaged = true
		assert.False(t, a.Equal(&b))
	})

	t.Run("fulfilled timestamp change detected", func(t *testing.T) {
		a, b := base(), base()
		b.FulfilledAt = timePtr(time.Date(2024, 2, 3, 8, 0, 0, 0, time.UTC))
		assert.False(t, a.Equal(&b))
	})

	t.Run("item list change detected", func(t *testing.T) {
		a, b := base(), base()
		b.Items = append(b.Items, Item{Quantity: 1, Product: Product{Name: "Extra"}})
		assert.False(t, a.Equal(&b))
	})
}

func TestOrder_URLs(t *testing.T) {
	o := New()
	o.ID = 99

	assert.Equal(t, "https://market.example/seller/orders/99/edit", o.EditURL("https://market.example"))
	assert.Equal(t, "https://market.example/seller/orders/99/customer_invoice.pdf", o.CustomerInvoiceURL("https://market.example/"))
}

func TestOrder_FormatShippingAddress(t *testing.T) {
	o := New()
	o.CustomerPhone = "+49 170 000000"
	o.Shipping.Address = Address{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Street:     "Analytical Way 1",
		City:       "London",
		PostalCode: "N1 9GU",
		Country:    "United Kingdom",
	}

	want := "Ada Lovelace\nAnalytical Way 1\nLondon N1 9GU\nUnited Kingdom\n+49 170 000000"
	assert.Equal(t, want, o.FormatShippingAddress())
}
