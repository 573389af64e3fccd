package spatial

import (
	"fmt"

	"gorm.io/gorm"
)

// Init creates the geo schema, the PostGIS extension, the tables and the
// geometry columns with their GIST indexes. AutoMigrate cannot express
// geometry column types, so those are added by plain SQL afterwards.
func Init(db *gorm.DB) error {
	if err := db.Exec(`CREATE SCHEMA IF NOT EXISTS "geo"`).Error; err != nil {
		return fmt.Errorf("create schema geo: %w", err)
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS postgis`).Error; err != nil {
		return fmt.Errorf("create postgis extension: %w", err)
	}
	if err := db.AutoMigrate(&City{}, &DeliveryZone{}, &Customer{}, &CustomerLocation{}, &Order{}); err != nil {
		return fmt.Errorf("auto-migrate geo tables: %w", err)
	}

	statements := []string{
		`ALTER TABLE geo.cities ADD COLUMN IF NOT EXISTS boundary geometry(MultiPolygon, 4326)`,
		`ALTER TABLE geo.cities ADD COLUMN IF NOT EXISTS center_point geometry(Point, 4326)`,
		`ALTER TABLE geo.delivery_zones ADD COLUMN IF NOT EXISTS boundary geometry(Geometry, 4326)`,
		`ALTER TABLE geo.customer_locations ADD COLUMN IF NOT EXISTS location geometry(Point, 4326)`,
		`CREATE INDEX IF NOT EXISTS idx_cities_boundary ON geo.cities USING GIST (boundary)`,
		`CREATE INDEX IF NOT EXISTS idx_delivery_zones_boundary ON geo.delivery_zones USING GIST (boundary)`,
		`CREATE INDEX IF NOT EXISTS idx_customer_locations_location ON geo.customer_locations USING GIST (location)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("geometry setup: %w", err)
		}
	}
	return nil
}
