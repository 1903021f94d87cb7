package models

import (
	"time"

	"gorm.io/datatypes"
)

// Skin represents a purchasable character skin shown in the shop.
type Skin struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name     string `gorm:"type:varchar(255);not null"` // Skin name.
	Category string `gorm:"type:varchar(64);not null"`  // Skin category.
	Rarity   string `gorm:"type:varchar(32);not null"`  // Rarity label.

	Price float64 `gorm:"type:decimal(10,2);not null;default:0"` // Price in EUR.

	ImageURL string         `gorm:"type:text"`                        // Canonical image URL.
	Images   datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Gallery URL list.

	// Handlers always set both flags explicitly; column defaults would
	// make gorm drop an explicit false on insert.
	IsPopular bool `gorm:"not null"`           // Highlighted on the front page.
	IsActive  bool `gorm:"not null"`           // Whether the skin is shown publicly.
	SortOrder int  `gorm:"not null;default:0"` // Display ordering weight.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName uses the shop_skins table.
func (Skin) TableName() string {
	return "shop_skins"
}
