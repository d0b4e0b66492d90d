package remote

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerdesk/sellerdesk/internal/domain/order"
)

// objTracker wraps one JSON object and tracks which keys were read.
// Leftover keys signal schema drift (new API fields we don't know yet);
// missing required keys become diagnostics, never a parse abort: a
// malformed record defaults its fields instead of blocking the page.
type objTracker struct {
	name      string
	fields    map[string]json.RawMessage
	remaining map[string]struct{}
	diags     *[]string
}

func newObjTracker(raw json.RawMessage, name string, diags *[]string) *objTracker {
	t := &objTracker{name: name, diags: diags}

	if err := json.Unmarshal(raw, &t.fields); err != nil {
		*diags = append(*diags, fmt.Sprintf("%s: not an object", name))
		t.fields = map[string]json.RawMessage{}
	}

	t.remaining = make(map[string]struct{}, len(t.fields))
	for k := range t.fields {
		t.remaining[k] = struct{}{}
	}
	return t
}

// value returns the raw value for key. Required keys that are absent
// are recorded as diagnostics.
func (t *objTracker) value(key string, optional bool) (json.RawMessage, bool) {
	raw, ok := t.fields[key]
	delete(t.remaining, key)
	if !ok && !optional {
		*t.diags = append(*t.diags, fmt.Sprintf("%s: missing required field %q", t.name, key))
	}
	return raw, ok
}

func (t *objTracker) decode(key string, optional bool, out any) bool {
	raw, ok := t.value(key, optional)
	if !ok || string(raw) == "null" {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		*t.diags = append(*t.diags, fmt.Sprintf("%s: field %q: %v", t.name, key, err))
		return false
	}
	return true
}

func (t *objTracker) str(key string) string {
	var s string
	t.decode(key, false, &s)
	return s
}

func (t *objTracker) optStr(key string) string {
	var s string
	t.decode(key, true, &s)
	return s
}

func (t *objTracker) i64(key string) int64 {
	var n int64
	t.decode(key, false, &n)
	return n
}

func (t *objTracker) integer(key string) int {
	var n int
	t.decode(key, false, &n)
	return n
}

func (t *objTracker) f64(key string) float64 {
	var f float64
	t.decode(key, false, &f)
	return f
}

func (t *objTracker) boolean(key string) bool {
	var b bool
	t.decode(key, false, &b)
	return b
}

func (t *objTracker) dec(key string) decimal.Decimal {
	var d decimal.Decimal
	if !t.decode(key, false, &d) {
		return decimal.Zero
	}
	return d
}

func (t *objTracker) optDec(key string) decimal.Decimal {
	var d decimal.Decimal
	if !t.decode(key, true, &d) {
		return decimal.Zero
	}
	return d
}

func (t *objTracker) timestamp(key string, optional bool) *time.Time {
	var s string
	if !t.decode(key, optional, &s) || s == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		*t.diags = append(*t.diags, fmt.Sprintf("%s: field %q: bad timestamp %q", t.name, key, s))
		return nil
	}
	return &ts
}

// leftovers returns the keys that were never read, sorted for stable logging
func (t *objTracker) leftovers() []string {
	if len(t.remaining) == 0 {
		return nil
	}
	keys := make([]string, 0, len(t.remaining))
	for k := range t.remaining {
		keys = append(keys, fmt.Sprintf("%s.%s", t.name, k))
	}
	sort.Strings(keys)
	return keys
}

func parseAddress(raw json.RawMessage, name string, diags *[]string, drift *[]string) order.Address {
	if len(raw) == 0 {
		return order.Address{}
	}

	t := newObjTracker(raw, name, diags)
	a := order.Address{
		City:            t.str("city"),
		Country:         t.str("country"),
		CountryCode:     t.str("country_code"),
		FirstName:       t.str("first_name"),
		LastName:        t.str("last_name"),
		Organization:    t.str("organization"),
		PostalCode:      t.str("postal_code"),
		State:           t.str("state"),
		Street:          t.str("street"),
		StreetExtension: t.str("street_extension"),
	}
	*drift = append(*drift, t.leftovers()...)
	return a
}

func parseItemOption(raw json.RawMessage, diags *[]string, drift *[]string) order.ItemOption {
	t := newObjTracker(raw, "option", diags)
	op := order.ItemOption{
		SKU:    t.optStr("sku"),
		Name:   t.str("name"),
		Choice: t.str("choice"),
		Weight: t.f64("weight"),
	}
	*drift = append(*drift, t.leftovers()...)
	return op
}

func parseItem(raw json.RawMessage, diags *[]string, drift *[]string) order.Item {
	t := newObjTracker(raw, "item", diags)

	item := order.Item{
		Product: order.Product{
			ID:          t.i64("product_id"),
			Name:        t.str("product_name"),
			SKU:         t.optStr("sku"),
			Description: t.str("product_description"),
		},
		Quantity: t.integer("quantity"),
		Price:    t.dec("price"),
		Discount: t.optDec("discount"),
		Weight:   t.f64("weight"),
	}

	var options []json.RawMessage
	t.decode("options", false, &options)
	for _, opt := range options {
		item.Options = append(item.Options, parseItemOption(opt, diags, drift))
	}

	*drift = append(*drift, t.leftovers()...)
	return item
}

// parseOrder converts one remote order object into the domain record.
// diags collects missing/mistyped required fields, drift collects
// unknown keys; neither aborts the parse.
func parseOrder(raw json.RawMessage, diags *[]string, drift *[]string) order.Order {
	t := newObjTracker(raw, "order", diags)

	o := order.New()

	billingAddr, _ := t.value("billing_address", false)
	o.Billing.Address = parseAddress(billingAddr, "billing_address", diags, drift)
	o.Billing.UseShippingAddress = t.boolean("billing_address_same_as_shipping_address")

	o.ID = t.i64("id")

	o.Currency = t.str("currency")
	o.Subtotal = t.dec("subtotal")
	o.TaxableAmount = t.dec("taxable_amount")
	o.Total = t.dec("total")
	o.Payout = t.dec("payout")
	o.PlatformFee = t.dec("lectronz_fee")
	o.PaymentFee = t.dec("payment_fees")

	if paymentRaw, ok := t.value("payment", false); ok {
		pt := newObjTracker(paymentRaw, "payment", diags)
		o.Payment.Provider = pt.str("provider")
		o.Payment.Reference = pt.str("reference")
		*drift = append(*drift, pt.leftovers()...)
	}

	if ts := t.timestamp("created_at", false); ts != nil {
		o.CreatedAt = *ts
	}
	if ts := t.timestamp("updated_at", false); ts != nil {
		o.UpdatedAt = *ts
	}
	o.FulfilledAt = t.timestamp("fulfilled_at", true)
	o.FulfillUntil = t.timestamp("fulfill_until", true)

	o.Status = t.str("status")
	o.StoreID = t.i64("store_id")
	o.StoreURL = t.str("store_url")
	o.CustomerLegalStatus = t.str("customer_legal_status")
	o.CustomerEmail = t.str("customer_email")
	o.CustomerPhone = t.str("customer_phone")
	o.CustomerNote = t.optStr("customer_note")

	var items []json.RawMessage
	t.decode("items", false, &items)
	for _, item := range items {
		o.Items = append(o.Items, parseItem(item, diags, drift))
	}

	t.decode("discount_codes", true, &o.DiscountCodes)

	o.Tax.AppliesToShipping = t.boolean("tax_applies_to_shipping")
	o.Tax.Rate = t.dec("tax_rate")
	o.Tax.Total = t.dec("total_tax")
	o.Tax.Collected = t.dec("tax_collected")
	o.Tax.Number = t.optStr("customer_tax_id")

	shippingAddr, _ := t.value("shipping_address", false)
	o.Shipping.Address = parseAddress(shippingAddr, "shipping_address", diags, drift)
	o.Shipping.Cost = t.dec("shipping_cost")
	o.Shipping.Method = t.str("shipping_method")

	o.Tracking.Required = t.boolean("shipping_is_tracked")
	o.Tracking.Code = t.optStr("tracking_code")
	o.Tracking.URL = t.optStr("tracking_url")

	if weightRaw, ok := t.value("shipping_weight", false); ok {
		wt := newObjTracker(weightRaw, "shipping_weight", diags)
		o.Weight.Base = wt.f64("base")
		o.Weight.Total = wt.f64("total")
		o.Weight.Unit = wt.str("weight_unit")
		*drift = append(*drift, wt.leftovers()...)
	}

	*drift = append(*drift, t.leftovers()...)
	return o
}
