package order

// Packaging is a reusable physical packaging type with finite stock.
// It lives entirely in the local annotation store and is referenced by
// Order.Packaging by ID. ID -1 on input means "assign a new ID".
type Packaging struct {
	ID         int64
	Name       string
	Stock      int
	RestockURL string
}
