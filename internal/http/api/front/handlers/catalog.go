package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voxeldragons/siteapi/internal/models"
	"gorm.io/gorm"
)

// CatalogFrontHandler serves the public shop catalog.
type CatalogFrontHandler struct {
	db *gorm.DB
}

// NewCatalogFrontHandler constructs a CatalogFrontHandler.
func NewCatalogFrontHandler(db *gorm.DB) *CatalogFrontHandler {
	return &CatalogFrontHandler{db: db}
}

// ListPackages returns active packages for the public shop page.
func (h *CatalogFrontHandler) ListPackages(c *gin.Context) {
	var rows []models.ShopPackage
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("is_active = ?", true).
		Order("sort_order ASC, created_at DESC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list packages failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":          row.ID,
			"name":        row.Name,
			"description": row.Description,
			"price":       row.Price,
			"image_url":   row.ImageURL,
			"rarity":      row.Rarity,
			"category":    row.Category,
			"features":    row.Features,
			"sort_order":  row.SortOrder,
		})
	}
	c.JSON(http.StatusOK, gin.H{"packages": out})
}

// ListSkins returns active skins for the public shop page.
func (h *CatalogFrontHandler) ListSkins(c *gin.Context) {
	var rows []models.Skin
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("is_active = ?", true).
		Order("sort_order ASC, created_at DESC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list skins failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":         row.ID,
			"name":       row.Name,
			"category":   row.Category,
			"rarity":     row.Rarity,
			"price":      row.Price,
			"image_url":  row.ImageURL,
			"images":     row.Images,
			"is_popular": row.IsPopular,
			"sort_order": row.SortOrder,
		})
	}
	c.JSON(http.StatusOK, gin.H{"skins": out})
}
