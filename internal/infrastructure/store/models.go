package store

import "github.com/sellerdesk/sellerdesk/internal/domain/order"

// Schema versions, bumped whenever a table's shape changes. The
// on-disk version is compared against these on open; see Open.
const (
	versionOrderProperties     = 1
	versionOrderPackaging      = 1
	versionOrderItemProperties = 1
	versionPackagingTypes      = 1
)

// TableVersionModel records the schema version of every other table
type TableVersionModel struct {
	Table   string `gorm:"column:table_name;primaryKey"`
	Version int    `gorm:"not null"`
}

func (TableVersionModel) TableName() string {
	return "table_versions"
}

// OrderPropertyModel holds the seller's free-text note per order
type OrderPropertyModel struct {
	OrderID int64  `gorm:"column:order_id;primaryKey"`
	Note    string `gorm:"not null;default:''"`
}

func (OrderPropertyModel) TableName() string {
	return "order_properties"
}

// OrderPackagingModel is the packaging assignment per order
type OrderPackagingModel struct {
	OrderID     int64 `gorm:"column:order_id;primaryKey"`
	PackagingID int64 `gorm:"column:packaging_id;not null"`
}

func (OrderPackagingModel) TableName() string {
	return "order_packaging"
}

// OrderItemPropertyModel holds the per-item packed flag, keyed by the
// item's position within the order
type OrderItemPropertyModel struct {
	OrderID   int64 `gorm:"column:order_id;primaryKey"`
	ItemIndex int   `gorm:"column:item_idx;primaryKey"`
	Packaged  bool  `gorm:"not null;default:false"`
}

func (OrderItemPropertyModel) TableName() string {
	return "order_item_properties"
}

// PackagingTypeModel is a user-defined packaging type
type PackagingTypeModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	Name       string `gorm:"not null"`
	Stock      int    `gorm:"not null;default:0"`
	RestockURL string `gorm:"column:restock_url;not null;default:''"`
}

func (PackagingTypeModel) TableName() string {
	return "packaging_types"
}

// ToDomain converts the model to a domain packaging
func (m *PackagingTypeModel) ToDomain() order.Packaging {
	return order.Packaging{
		ID:         m.ID,
		Name:       m.Name,
		Stock:      m.Stock,
		RestockURL: m.RestockURL,
	}
}

func packagingTypeFromDomain(p order.Packaging) PackagingTypeModel {
	return PackagingTypeModel{
		ID:         p.ID,
		Name:       p.Name,
		Stock:      p.Stock,
		RestockURL: p.RestockURL,
	}
}
