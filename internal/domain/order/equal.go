package order

import "time"

// Equal reports whether two order snapshots carry the same remote and
// local state. It drives the New/Updated/Unchanged classification during
// reconciliation, so it must be deterministic and total: every field
// pair compares, none panics.
func (o *Order) Equal(other *Order) bool {
	if o == nil || other == nil {
		return o == other
	}

	if o.ID != other.ID ||
		o.Currency != other.Currency ||
		!o.Subtotal.Equal(other.Subtotal) ||
		!o.TaxableAmount.Equal(other.TaxableAmount) ||
		!o.Total.Equal(other.Total) ||
		!o.Payout.Equal(other.Payout) ||
		!o.PlatformFee.Equal(other.PlatformFee) ||
		!o.PaymentFee.Equal(other.PaymentFee) {
		return false
	}

	if o.Payment != other.Payment {
		return false
	}

	if !o.CreatedAt.Equal(other.CreatedAt) ||
		!o.UpdatedAt.Equal(other.UpdatedAt) ||
		!timePtrEqual(o.FulfilledAt, other.FulfilledAt) ||
		!timePtrEqual(o.FulfillUntil, other.FulfillUntil) {
		return false
	}

	if o.Status != other.Status ||
		o.StoreID != other.StoreID ||
		o.StoreURL != other.StoreURL ||
		o.CustomerLegalStatus != other.CustomerLegalStatus ||
		o.CustomerEmail != other.CustomerEmail ||
		o.CustomerPhone != other.CustomerPhone ||
		o.CustomerNote != other.CustomerNote {
		return false
	}

	if !itemsEqual(o.Items, other.Items) {
		return false
	}

	if len(o.DiscountCodes) != len(other.DiscountCodes) {
		return false
	}
	for i := range o.DiscountCodes {
		if o.DiscountCodes[i] != other.DiscountCodes[i] {
			return false
		}
	}

	if o.Tax.AppliesToShipping != other.Tax.AppliesToShipping ||
		!o.Tax.Rate.Equal(other.Tax.Rate) ||
		!o.Tax.Total.Equal(other.Tax.Total) ||
		!o.Tax.Collected.Equal(other.Tax.Collected) ||
		o.Tax.Number != other.Tax.Number {
		return false
	}

	if o.Billing != other.Billing {
		return false
	}

	if o.Shipping.Address != other.Shipping.Address ||
		!o.Shipping.Cost.Equal(other.Shipping.Cost) ||
		o.Shipping.Method != other.Shipping.Method {
		return false
	}

	if o.Tracking != other.Tracking || o.Weight != other.Weight {
		return false
	}

	return o.Packaging == other.Packaging && o.Note == other.Note
}

func itemsEqual(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := &a[i], &b[i]
		if x.Product != y.Product ||
			x.Quantity != y.Quantity ||
			!x.Price.Equal(y.Price) ||
			!x.Discount.Equal(y.Discount) ||
			x.Weight != y.Weight ||
			x.Packaged != y.Packaged {
			return false
		}
		if len(x.Options) != len(y.Options) {
			return false
		}
		for j := range x.Options {
			if x.Options[j] != y.Options[j] {
				return false
			}
		}
	}
	return true
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
