// Package migrations holds the schema of the back office, one migration
// per table. Importing the package registers them with pkg/migration.
package migrations

import (
	"gorm.io/gorm"

	"github.com/sincro/backoffice/app/models"
	"github.com/sincro/backoffice/pkg/identity/local"
	"github.com/sincro/backoffice/pkg/migration"
)

func init() {
	migration.Register("20250101000000_create_product_categories_table", createTable{&models.Category{}})
	migration.Register("20250101000001_create_products_table", createTable{&models.Product{}})
	migration.Register("20250101000002_create_store_categories_table", createTable{&models.StoreCategory{}})
	migration.Register("20250101000003_create_stores_table", createTable{&models.Store{}})
	migration.Register("20250101000004_create_store_inventories_table", createTable{&models.StoreInventory{}})
	migration.Register("20250101000005_create_coupons_table", createTable{&models.Coupon{}})
	migration.Register("20250101000006_create_bookings_table", createTable{&models.Booking{}})
	migration.Register("20250101000007_create_orders_table", createTable{&models.Order{}})
	migration.Register("20250101000008_create_auth_identities_table", createTable{&local.Record{}})
	migration.Register("20250101000009_create_store_users_table", createTable{&models.StoreMembership{}})
	migration.Register("20250101000010_add_store_inventories_product_index", &AddInventoryProductIndex{})
}

// createTable creates the table of one model and drops it on rollback.
type createTable struct {
	model interface{ TableName() string }
}

func (m createTable) Up(db *gorm.DB) error {
	return db.Migrator().CreateTable(m.model)
}

func (m createTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(m.model.TableName())
}

// AddInventoryProductIndex covers lookups of the stores stocking a product;
// the unique (store_id, product_id) index leads with the store.
type AddInventoryProductIndex struct{}

func (AddInventoryProductIndex) Up(db *gorm.DB) error {
	return db.Exec("CREATE INDEX idx_store_inventories_product ON store_inventories (product_id)").Error
}

func (AddInventoryProductIndex) Down(db *gorm.DB) error {
	return db.Migrator().DropIndex("store_inventories", "idx_store_inventories_product")
}
