package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Packaging sentinel values for Order.Packaging
const (
	// PackagingNone means no packaging has been assigned yet
	PackagingNone int64 = -1
	// PackagingDefault is the built-in packaging with no stock tracking
	PackagingDefault int64 = 0
)

// Remote status codes the marketplace reports
const (
	StatusRefunded       = "refunded"
	StatusPaymentSuccess = "payment_success"
)

// Address is a postal address, fully owned by the remote system
type Address struct {
	FirstName       string
	LastName        string
	Organization    string
	Street          string
	StreetExtension string
	PostalCode      string
	City            string
	State           string
	Country         string
	CountryCode     string
}

// ItemOption is a configurable option chosen for a line item
type ItemOption struct {
	SKU    string
	Name   string
	Choice string
	Weight float64
}

// Product identifies the listed product a line item refers to
type Product struct {
	ID          int64
	Name        string
	SKU         string
	Description string
}

// Item is one line of an order. Packaged is seller-owned and keyed by
// the item's index within the order; the remote never supplies it.
type Item struct {
	Product  Product
	Options  []ItemOption
	Quantity int
	Price    decimal.Decimal
	Discount decimal.Decimal
	Weight   float64

	// Packaged is the locally-owned per-item packed flag
	Packaged bool
}

// Payment describes how the order was paid
type Payment struct {
	Provider  string
	Reference string
}

// Tax holds the order's tax breakdown
type Tax struct {
	AppliesToShipping bool
	Rate              decimal.Decimal
	Total             decimal.Decimal
	Collected         decimal.Decimal
	Number            string
}

// Billing holds the billing address, which may simply mirror shipping
type Billing struct {
	Address            Address
	UseShippingAddress bool
}

// Shipping holds the delivery method, cost and destination
type Shipping struct {
	Address Address
	Cost    decimal.Decimal
	Method  string
}

// Tracking holds shipment tracking data
type Tracking struct {
	Required bool
	Code     string
	URL      string
}

// Weight holds the order's shipping weight as reported by the remote
type Weight struct {
	Unit  string
	Total float64
	Base  float64
}

// Order is one marketplace transaction. All fields except Packaging,
// Note and the per-item Packaged flags are owned by the remote system
// and fully replaced on every fetch; the locally-owned fields are
// re-attached from the annotation store afterwards.
type Order struct {
	ID int64

	Currency      string
	Subtotal      decimal.Decimal
	TaxableAmount decimal.Decimal
	Total         decimal.Decimal
	Payout        decimal.Decimal
	PlatformFee   decimal.Decimal
	PaymentFee    decimal.Decimal

	Payment Payment

	CreatedAt    time.Time
	UpdatedAt    time.Time
	FulfilledAt  *time.Time
	FulfillUntil *time.Time

	Status              string
	StoreID             int64
	StoreURL            string
	CustomerLegalStatus string
	CustomerEmail       string
	CustomerPhone       string
	CustomerNote        string

	Items         []Item
	DiscountCodes []string

	Tax      Tax
	Billing  Billing
	Shipping Shipping
	Tracking Tracking
	Weight   Weight

	// Packaging is the locally-owned packaging assignment, PackagingNone
	// until the seller picks one
	Packaging int64
	// Note is the locally-owned free-text seller note
	Note string
}

// New returns an Order with local fields at their defaults
func New() Order {
	return Order{Packaging: PackagingNone}
}

// IsRefunded reports whether the remote refunded the order
func (o *Order) IsRefunded() bool {
	return o.Status == StatusRefunded
}

// IsShipped reports whether the order has been fulfilled
func (o *Order) IsShipped() bool {
	return o.FulfilledAt != nil
}

// IsPackaged reports whether a packaging has been assigned
func (o *Order) IsPackaged() bool {
	return o.Packaging >= 0
}

// StatusString derives the display status. Seller actions override the
// raw remote status once they happen, except a refund which always wins.
func (o *Order) StatusString() string {
	switch {
	case o.IsRefunded():
		return "Refunded"
	case o.IsShipped():
		return "Shipped"
	case o.IsPackaged():
		return "Packaged"
	case o.Status == StatusPaymentSuccess:
		return "Paid"
	default:
		return "Unknown"
	}
}

// CalcWeight returns the base weight plus the summed item weights
func (o *Order) CalcWeight() float64 {
	total := o.Weight.Base
	for _, item := range o.Items {
		total += float64(item.Quantity) * item.Weight
	}
	return total
}

// ItemListing returns a one-line summary of the order's items,
// e.g. "2x Widget (+options), 1x Gadget"
func (o *Order) ItemListing() string {
	parts := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		part := fmt.Sprintf("%dx %s", item.Quantity, item.Product.Name)
		if len(item.Options) > 0 {
			part += " (+options)"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

// EditURL returns the seller dashboard edit page for this order
func (o *Order) EditURL(sellerBase string) string {
	return fmt.Sprintf("%s/seller/orders/%d/edit", strings.TrimSuffix(sellerBase, "/"), o.ID)
}

// CustomerInvoiceURL returns the customer invoice PDF location
func (o *Order) CustomerInvoiceURL(sellerBase string) string {
	return fmt.Sprintf("%s/seller/orders/%d/customer_invoice.pdf", strings.TrimSuffix(sellerBase, "/"), o.ID)
}

// SupplierInvoiceURL returns the supplier invoice PDF location
func (o *Order) SupplierInvoiceURL(sellerBase string) string {
	return fmt.Sprintf("%s/seller/orders/%d/supplier_invoice.pdf", strings.TrimSuffix(sellerBase, "/"), o.ID)
}

// FormatShippingAddress renders the shipping destination as a label
// block, one line per component, skipping empty parts
func (o *Order) FormatShippingAddress() string {
	a := o.Shipping.Address

	var b strings.Builder
	b.WriteString(strings.TrimSpace(a.FirstName + " " + a.LastName))
	b.WriteByte('\n')

	if a.Organization != "" {
		b.WriteString(a.Organization)
		b.WriteByte('\n')
	}

	b.WriteString(a.Street)
	b.WriteByte('\n')

	if a.StreetExtension != "" {
		b.WriteString(a.StreetExtension)
		b.WriteByte('\n')
	}

	line := a.City
	if a.State != "" {
		line += ", " + a.State
	}
	b.WriteString(line + " " + a.PostalCode)
	b.WriteByte('\n')
	b.WriteString(a.Country)

	if o.CustomerPhone != "" {
		b.WriteByte('\n')
		b.WriteString(o.CustomerPhone)
	}
	if o.CustomerEmail != "" {
		b.WriteByte('\n')
		b.WriteString(o.CustomerEmail)
	}

	return b.String()
}
