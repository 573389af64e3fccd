package auth

import (
	"fmt"

	"gorm.io/gorm"
)

// Init creates the staff tables. The geo schema itself is created by
// spatial.Init, which runs first.
func Init(db *gorm.DB) error {
	if err := db.Exec(`CREATE SCHEMA IF NOT EXISTS "geo"`).Error; err != nil {
		return fmt.Errorf("create schema geo: %w", err)
	}
	if err := db.AutoMigrate(&Staff{}, &Session{}); err != nil {
		return fmt.Errorf("auto-migrate staff tables: %w", err)
	}
	return nil
}
