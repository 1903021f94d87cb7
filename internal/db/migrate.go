package db

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/voxeldragons/siteapi/internal/models"
	internalsettings "github.com/voxeldragons/siteapi/internal/settings"
	"gorm.io/gorm"
)

// Migrate runs database migrations and seeds default settings.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.Admin{},
		&models.ShopPackage{},
		&models.Skin{},
		&models.Setting{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	return ensureDefaultSettings(conn)
}

// ensureDefaultSettings inserts any missing seeded setting rows.
// Existing values are never overwritten.
func ensureDefaultSettings(conn *gorm.DB) error {
	for key, value := range internalsettings.Defaults {
		var count int64
		if errCount := conn.Model(&models.Setting{}).Where("key = ?", key).Count(&count).Error; errCount != nil {
			return fmt.Errorf("db: check setting %s: %w", key, errCount)
		}
		if count > 0 {
			continue
		}

		payload, errMarshal := json.Marshal(value)
		if errMarshal != nil {
			return fmt.Errorf("db: marshal setting %s: %w", key, errMarshal)
		}
		setting := models.Setting{
			Key:       key,
			Value:     payload,
			UpdatedAt: time.Now().UTC(),
		}
		if errCreate := conn.Create(&setting).Error; errCreate != nil {
			return fmt.Errorf("db: seed setting %s: %w", key, errCreate)
		}
	}
	return nil
}
