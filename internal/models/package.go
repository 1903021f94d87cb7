package models

import (
	"time"

	"gorm.io/datatypes"
)

// Rarity labels accepted for catalog items.
const (
	RarityComune      = "Comune"
	RarityRaro        = "Raro"
	RarityEpico       = "Epico"
	RarityLeggendario = "Leggendario"
	RarityElite       = "Elite"
)

// Rarities lists every accepted rarity label.
var Rarities = []string{RarityComune, RarityRaro, RarityEpico, RarityLeggendario, RarityElite}

// ValidRarity reports whether the label is an accepted rarity.
func ValidRarity(rarity string) bool {
	for _, r := range Rarities {
		if r == rarity {
			return true
		}
	}
	return false
}

// ShopPackage represents a purchasable server package shown in the shop.
type ShopPackage struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string  `gorm:"type:varchar(255);not null"`            // Package name.
	Description string  `gorm:"type:text"`                             // Package description.
	Price       float64 `gorm:"type:decimal(10,2);not null;default:0"` // Price in EUR.
	ImageURL    string  `gorm:"type:text"`                             // Cover image URL.

	Rarity   string `gorm:"type:varchar(32);not null"` // Rarity label.
	Category string `gorm:"type:varchar(64);not null"` // Shop category.

	Features datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Feature bullet list.

	// Handlers always set the flag explicitly; a column default would
	// make gorm drop an explicit false on insert.
	IsActive  bool `gorm:"not null"`           // Whether the package is shown publicly.
	SortOrder int  `gorm:"not null;default:0"` // Display ordering weight.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName uses the shop_packages table.
func (ShopPackage) TableName() string {
	return "shop_packages"
}
