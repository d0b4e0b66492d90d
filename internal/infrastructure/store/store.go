package store

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sellerdesk/sellerdesk/internal/domain/order"
	"github.com/sellerdesk/sellerdesk/internal/domain/shared"
	"github.com/sellerdesk/sellerdesk/internal/infrastructure/logger"
)

// Store is the SQLite-backed annotation store. It persists only the
// seller-owned overlay (packaging assignment, note, per-item packed
// flags, packaging types); everything else is remote-owned and kept
// in memory.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ order.AnnotationStore = (*Store)(nil)

type tableSchema struct {
	name    string
	version int
	model   any
}

func schemas() []tableSchema {
	return []tableSchema{
		{"order_properties", versionOrderProperties, &OrderPropertyModel{}},
		{"order_packaging", versionOrderPackaging, &OrderPackagingModel{}},
		{"order_item_properties", versionOrderItemProperties, &OrderItemPropertyModel{}},
		{"packaging_types", versionPackagingTypes, &PackagingTypeModel{}},
	}
}

// Open opens (or creates) the store at path and reconciles the schema.
// A database written by a newer build is refused rather than silently
// downgraded.
func Open(path string, zapLogger *zap.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.NewGormLogger(zapLogger, gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	s := &Store{db: db, logger: zapLogger}
	if err := s.reconcileSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) reconcileSchema() error {
	// table_versions itself carries no version row and is migrated first
	if err := s.db.AutoMigrate(&TableVersionModel{}); err != nil {
		return fmt.Errorf("migrate table_versions: %w", err)
	}

	for _, schema := range schemas() {
		var row TableVersionModel
		err := s.db.First(&row, "table_name = ?", schema.name).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := s.db.AutoMigrate(schema.model); err != nil {
				return fmt.Errorf("create table %s: %w", schema.name, err)
			}
			row = TableVersionModel{Table: schema.name, Version: schema.version}
			if err := s.db.Create(&row).Error; err != nil {
				return fmt.Errorf("record version of %s: %w", schema.name, err)
			}
			s.logger.Info("created store table",
				zap.String("table", schema.name),
				zap.Int("version", schema.version))
		case err != nil:
			return fmt.Errorf("read version of %s: %w", schema.name, err)
		case row.Version > schema.version:
			s.logger.Error("store table written by a newer build",
				zap.String("table", schema.name),
				zap.Int("on_disk", row.Version),
				zap.Int("supported", schema.version))
			return fmt.Errorf("table %s is at version %d, this build supports %d: %w",
				schema.name, row.Version, schema.version, shared.ErrStoreConflict)
		case row.Version < schema.version:
			if err := s.upgradeTable(schema, row.Version); err != nil {
				return fmt.Errorf("upgrade table %s: %w", schema.name, err)
			}
			if err := s.db.Model(&TableVersionModel{}).
				Where("table_name = ?", schema.name).
				Update("version", schema.version).Error; err != nil {
				return fmt.Errorf("record version of %s: %w", schema.name, err)
			}
		}
	}
	return nil
}

// upgradeTable migrates a table from an older on-disk version. All
// tables are at their first version, so there is nothing to do yet.
func (s *Store) upgradeTable(schema tableSchema, from int) error {
	s.logger.Info("upgrading store table",
		zap.String("table", schema.name),
		zap.Int("from", from),
		zap.Int("to", schema.version))
	return s.db.AutoMigrate(schema.model)
}

// Close releases the underlying database handle
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Restore overlays the order's locally-owned fields from the store.
// Missing rows are the normal case for orders never annotated.
func (s *Store) Restore(o *order.Order) error {
	var pack OrderPackagingModel
	err := s.db.First(&pack, "order_id = ?", o.ID).Error
	switch {
	case err == nil:
		o.Packaging = pack.PackagingID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("restore packaging of order %d: %w", o.ID, err)
	}

	var props OrderPropertyModel
	err = s.db.First(&props, "order_id = ?", o.ID).Error
	switch {
	case err == nil:
		o.Note = props.Note
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("restore properties of order %d: %w", o.ID, err)
	}

	var items []OrderItemPropertyModel
	if err := s.db.Find(&items, "order_id = ?", o.ID).Error; err != nil {
		return fmt.Errorf("restore item properties of order %d: %w", o.ID, err)
	}
	for _, item := range items {
		// Indexes beyond the current item list can appear when the
		// remote removes an item; they are ignored, not an error.
		if item.ItemIndex >= 0 && item.ItemIndex < len(o.Items) {
			o.Items[item.ItemIndex].Packaged = item.Packaged
		}
	}
	return nil
}

// Save upserts the order's locally-owned fields
func (s *Store) Save(o *order.Order) error {
	if o.Packaging >= 0 {
		pack := OrderPackagingModel{OrderID: o.ID, PackagingID: o.Packaging}
		if err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			UpdateAll: true,
		}).Create(&pack).Error; err != nil {
			return fmt.Errorf("save packaging of order %d: %w", o.ID, err)
		}
	}

	props := OrderPropertyModel{OrderID: o.ID, Note: o.Note}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		UpdateAll: true,
	}).Create(&props).Error; err != nil {
		return fmt.Errorf("save properties of order %d: %w", o.ID, err)
	}

	for i, item := range o.Items {
		row := OrderItemPropertyModel{OrderID: o.ID, ItemIndex: i, Packaged: item.Packaged}
		if err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "item_idx"}},
			UpdateAll: true,
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("save item %d of order %d: %w", i, o.ID, err)
		}
	}
	return nil
}

// Packagings lists all packaging types ordered by ID
func (s *Store) Packagings() ([]order.Packaging, error) {
	var rows []PackagingTypeModel
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list packagings: %w", err)
	}
	packagings := make([]order.Packaging, len(rows))
	for i, row := range rows {
		packagings[i] = row.ToDomain()
	}
	return packagings, nil
}

// UpdatePackaging creates (ID == -1) or updates a packaging type and
// returns the stored record with its assigned ID
func (s *Store) UpdatePackaging(p order.Packaging) (order.Packaging, error) {
	model := packagingTypeFromDomain(p)
	if p.ID == -1 {
		model.ID = 0 // let SQLite assign
		if err := s.db.Create(&model).Error; err != nil {
			return order.Packaging{}, fmt.Errorf("create packaging: %w", err)
		}
		return model.ToDomain(), nil
	}

	result := s.db.Model(&PackagingTypeModel{}).Where("id = ?", p.ID).Updates(map[string]any{
		"name":        p.Name,
		"stock":       p.Stock,
		"restock_url": p.RestockURL,
	})
	if result.Error != nil {
		return order.Packaging{}, fmt.Errorf("update packaging %d: %w", p.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return order.Packaging{}, order.ErrPackagingNotFound
	}
	return model.ToDomain(), nil
}

// RemovePackaging deletes a packaging type unless any order still
// references it
func (s *Store) RemovePackaging(id int64) error {
	count, err := s.OrdersWithPackaging(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("packaging %d is assigned to %d orders: %w",
			id, count, order.ErrPackagingInUse)
	}

	result := s.db.Delete(&PackagingTypeModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("remove packaging %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return order.ErrPackagingNotFound
	}
	return nil
}

// OrdersWithPackaging counts orders currently assigned the packaging
func (s *Store) OrdersWithPackaging(id int64) (int, error) {
	var count int64
	if err := s.db.Model(&OrderPackagingModel{}).
		Where("packaging_id = ?", id).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count orders with packaging %d: %w", id, err)
	}
	return int(count), nil
}

// PackagingStock reads the remaining stock of a packaging
func (s *Store) PackagingStock(id int64) (int, error) {
	var model PackagingTypeModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, order.ErrPackagingNotFound
		}
		return 0, fmt.Errorf("read stock of packaging %d: %w", id, err)
	}
	return model.Stock, nil
}

// SetPackagingStock writes the remaining stock of a packaging
func (s *Store) SetPackagingStock(id int64, stock int) error {
	result := s.db.Model(&PackagingTypeModel{}).Where("id = ?", id).Update("stock", stock)
	if result.Error != nil {
		return fmt.Errorf("set stock of packaging %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return order.ErrPackagingNotFound
	}
	return nil
}
