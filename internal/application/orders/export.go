package orders

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerdesk/sellerdesk/internal/domain/currency"
	"github.com/sellerdesk/sellerdesk/internal/domain/order"
)

// Column identifies one exportable order attribute. The set is closed:
// consumers pick from it rather than reaching into the order struct.
type Column int

const (
	ColumnID Column = iota
	ColumnCreatedAt
	ColumnFulfilledAt
	ColumnStatus
	ColumnCustomer
	ColumnEmail
	ColumnCountry
	ColumnItems
	ColumnTotal
	ColumnCurrency
	ColumnConvertedTotal
	ColumnPayout
	ColumnShippingMethod
	ColumnTrackingCode
	ColumnWeight
	ColumnNote
)

// DefaultColumns is the export column set used when the caller does
// not pick one
var DefaultColumns = []Column{
	ColumnID, ColumnCreatedAt, ColumnStatus, ColumnCustomer, ColumnCountry,
	ColumnItems, ColumnTotal, ColumnCurrency, ColumnShippingMethod,
	ColumnTrackingCode, ColumnNote,
}

var columnHeaders = map[Column]string{
	ColumnID:             "Order ID",
	ColumnCreatedAt:      "Created",
	ColumnFulfilledAt:    "Shipped",
	ColumnStatus:         "Status",
	ColumnCustomer:       "Customer",
	ColumnEmail:          "Email",
	ColumnCountry:        "Country",
	ColumnItems:          "Items",
	ColumnTotal:          "Total",
	ColumnCurrency:       "Currency",
	ColumnConvertedTotal: "Converted Total",
	ColumnPayout:         "Payout",
	ColumnShippingMethod: "Shipping Method",
	ColumnTrackingCode:   "Tracking Code",
	ColumnWeight:         "Weight",
	ColumnNote:           "Note",
}

// Header returns the column's CSV header label
func (c Column) Header() string {
	if h, ok := columnHeaders[c]; ok {
		return h
	}
	return "Unknown"
}

// ValueKind discriminates the typed export value
type ValueKind int

const (
	ValueText ValueKind = iota
	ValueInt
	ValueDecimal
	ValueTime
)

// Value is one typed cell of the export. Kind says which field is set.
type Value struct {
	Kind ValueKind
	Text string
	Int  int64
	Dec  decimal.Decimal
	Time time.Time
}

func textValue(s string) Value { return Value{Kind: ValueText, Text: s} }

func intValue(i int64) Value { return Value{Kind: ValueInt, Int: i} }

func decValue(d decimal.Decimal) Value { return Value{Kind: ValueDecimal, Dec: d} }

func timeValue(t time.Time) Value { return Value{Kind: ValueTime, Time: t} }

// String renders the value for CSV output
func (v Value) String() string {
	switch v.Kind {
	case ValueInt:
		return fmt.Sprintf("%d", v.Int)
	case ValueDecimal:
		return v.Dec.StringFixed(2)
	case ValueTime:
		if v.Time.IsZero() {
			return ""
		}
		return v.Time.Format("2006-01-02 15:04")
	default:
		return v.Text
	}
}

// Exporter renders orders as CSV over a fixed column selection.
// ConvertedTotal needs Rates and Target set; the other columns work
// without them.
type Exporter struct {
	Columns   []Column
	Separator rune
	Rates     currency.Rates
	Target    string
}

// NewExporter creates an exporter with the default column set and a
// comma separator
func NewExporter() *Exporter {
	return &Exporter{Columns: DefaultColumns, Separator: ','}
}

// ColumnValue extracts one typed cell from the order
func (e *Exporter) ColumnValue(o *order.Order, col Column) (Value, error) {
	switch col {
	case ColumnID:
		return intValue(o.ID), nil
	case ColumnCreatedAt:
		return timeValue(o.CreatedAt), nil
	case ColumnFulfilledAt:
		if o.FulfilledAt == nil {
			return timeValue(time.Time{}), nil
		}
		return timeValue(*o.FulfilledAt), nil
	case ColumnStatus:
		return textValue(o.StatusString()), nil
	case ColumnCustomer:
		return textValue(o.Shipping.Address.FirstName + " " + o.Shipping.Address.LastName), nil
	case ColumnEmail:
		return textValue(o.CustomerEmail), nil
	case ColumnCountry:
		return textValue(o.Shipping.Address.Country), nil
	case ColumnItems:
		return textValue(o.ItemListing()), nil
	case ColumnTotal:
		return decValue(o.Total), nil
	case ColumnCurrency:
		return textValue(o.Currency), nil
	case ColumnConvertedTotal:
		converted, err := currency.Convert(o.Total, o.Currency, e.Target, e.Rates)
		if err != nil {
			return Value{}, fmt.Errorf("order %d: %w", o.ID, err)
		}
		return decValue(converted), nil
	case ColumnPayout:
		return decValue(o.Payout), nil
	case ColumnShippingMethod:
		return textValue(o.Shipping.Method), nil
	case ColumnTrackingCode:
		return textValue(o.Tracking.Code), nil
	case ColumnWeight:
		return decValue(decimal.NewFromFloat(o.CalcWeight())), nil
	case ColumnNote:
		return textValue(o.Note), nil
	default:
		return Value{}, fmt.Errorf("unknown export column %d", col)
	}
}

// WriteCSV writes the header and one row per order
func (e *Exporter) WriteCSV(w io.Writer, orders []order.Order) error {
	writer := csv.NewWriter(w)
	if e.Separator != 0 {
		writer.Comma = e.Separator
	}

	header := make([]string, len(e.Columns))
	for i, col := range e.Columns {
		header[i] = col.Header()
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(e.Columns))
	for i := range orders {
		for j, col := range e.Columns {
			value, err := e.ColumnValue(&orders[i], col)
			if err != nil {
				return err
			}
			row[j] = value.String()
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
