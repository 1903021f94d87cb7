package models

import (
	"encoding/json"
	"time"
)

// Setting represents one key/value site setting with a JSON value.
type Setting struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Key   string          `gorm:"type:varchar(128);not null;uniqueIndex"` // Unique setting key.
	Value json.RawMessage `gorm:"type:jsonb;not null"`                    // JSON-encoded value.

	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName uses the site_settings table.
func (Setting) TableName() string {
	return "site_settings"
}
