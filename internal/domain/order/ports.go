package order

import "context"

// Page is one slice of the remote order listing. The caller decides
// whether more pages remain: offset + len(Orders) < TotalCount.
type Page struct {
	// Offset is the absolute offset this page starts at
	Offset int
	// TotalCount is the absolute number of orders the remote reports
	TotalCount int
	// Orders are the parsed records, in the order the remote returned them
	Orders []Order
}

// Source is the port to the remote marketplace API. Implementations
// live in the infrastructure layer; they are stateless per call and do
// not touch the in-memory cache or the annotation store.
type Source interface {
	// FetchPage fetches one page of the seller's orders
	FetchPage(ctx context.Context, offset, limit int) (*Page, error)

	// MarkShipped marks an order fulfilled on the remote, optionally
	// attaching tracking data, and returns the updated order as the
	// remote now sees it
	MarkShipped(ctx context.Context, id int64, trackingCode, trackingURL string) (*Order, error)
}

// AnnotationStore is the port to the durable seller-only data that is
// not part of the remote schema. Restore and Save operate as overlays:
// absence of a row is the common case for new orders, never an error.
type AnnotationStore interface {
	// Restore overlays the order's locally-owned fields from the store
	Restore(o *Order) error
	// Save upserts the order's locally-owned fields into the store
	Save(o *Order) error

	// Packagings lists all user-defined packaging types ordered by ID
	Packagings() ([]Packaging, error)
	// UpdatePackaging creates (ID == -1) or updates a packaging type
	UpdatePackaging(p Packaging) (Packaging, error)
	// RemovePackaging deletes a packaging type unless it is still
	// referenced by any order
	RemovePackaging(id int64) error
	// OrdersWithPackaging counts orders referencing the packaging
	OrdersWithPackaging(id int64) (int, error)
	// PackagingStock reads the remaining stock of a packaging
	PackagingStock(id int64) (int, error)
	// SetPackagingStock writes the remaining stock of a packaging
	SetPackagingStock(id int64, stock int) error
}
