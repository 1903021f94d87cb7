package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/voxeldragons/siteapi/internal/db"
	"github.com/voxeldragons/siteapi/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PackageHandler manages admin CRUD endpoints for shop packages.
type PackageHandler struct {
	db *gorm.DB // Database handle for package records.
}

// NewPackageHandler constructs a package handler.
func NewPackageHandler(db *gorm.DB) *PackageHandler {
	return &PackageHandler{db: db}
}

// normalizeFeatures validates and normalizes the features JSON payload.
func normalizeFeatures(raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return datatypes.JSON([]byte("[]")), nil
	}

	var features []string
	if errUnmarshal := json.Unmarshal(raw, &features); errUnmarshal != nil {
		return nil, errors.New("invalid features")
	}
	cleaned := make([]string, 0, len(features))
	for _, feature := range features {
		feature = strings.TrimSpace(feature)
		if feature == "" {
			continue
		}
		cleaned = append(cleaned, feature)
	}
	rawFeatures, errMarshal := json.Marshal(cleaned)
	if errMarshal != nil {
		return nil, errMarshal
	}
	return datatypes.JSON(rawFeatures), nil
}

// createPackageRequest captures the payload for creating a package.
type createPackageRequest struct {
	Name        string          `json:"name"`        // Package name.
	Description string          `json:"description"` // Package description.
	Price       float64         `json:"price"`       // Non-negative price.
	ImageURL    string          `json:"image_url"`   // Cover image URL.
	Rarity      string          `json:"rarity"`      // Rarity label.
	Category    string          `json:"category"`    // Shop category.
	Features    json.RawMessage `json:"features"`    // Feature bullet list.
	IsActive    *bool           `json:"is_active"`   // Optional active flag.
	SortOrder   int             `json:"sort_order"`  // Display order.
}

// buildPackage validates a create request and builds the model row.
func buildPackage(body createPackageRequest) (models.ShopPackage, error) {
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return models.ShopPackage{}, errors.New("name is required")
	}
	if body.Price < 0 {
		return models.ShopPackage{}, errors.New("price must be non-negative")
	}
	rarity := strings.TrimSpace(body.Rarity)
	if rarity == "" {
		rarity = models.RarityComune
	}
	if !models.ValidRarity(rarity) {
		return models.ShopPackage{}, errors.New("invalid rarity")
	}
	category := strings.TrimSpace(body.Category)
	if category == "" {
		category = "VIP"
	}

	features, errFeatures := normalizeFeatures(body.Features)
	if errFeatures != nil {
		return models.ShopPackage{}, errors.New("invalid features")
	}

	isActive := true
	if body.IsActive != nil {
		isActive = *body.IsActive
	}

	now := time.Now().UTC()
	return models.ShopPackage{
		Name:        name,
		Description: body.Description,
		Price:       body.Price,
		ImageURL:    strings.TrimSpace(body.ImageURL),
		Rarity:      rarity,
		Category:    category,
		Features:    features,
		IsActive:    isActive,
		SortOrder:   body.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Create validates input and inserts a new package.
func (h *PackageHandler) Create(c *gin.Context) {
	var body createPackageRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	pkg, errBuild := buildPackage(body)
	if errBuild != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errBuild.Error()})
		return
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&pkg).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create package failed"})
		return
	}
	c.JSON(http.StatusCreated, formatPackage(&pkg))
}

// List returns all packages, inactive rows included. A `q` query
// parameter filters by name, case-insensitively on either dialect.
func (h *PackageHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).
		Order("sort_order ASC, created_at DESC")
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = query.Where(db.CaseInsensitiveLikeExpr(h.db, "name"), db.NormalizeLikePattern(h.db, "%"+q+"%"))
	}

	var rows []models.ShopPackage
	if errFind := query.Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list packages failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, formatPackage(&row))
	}
	c.JSON(http.StatusOK, gin.H{"packages": out})
}

// Get fetches a package by ID.
func (h *PackageHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var pkg models.ShopPackage
	if errFind := h.db.WithContext(c.Request.Context()).First(&pkg, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, formatPackage(&pkg))
}

// updatePackageRequest captures optional fields for package updates.
type updatePackageRequest struct {
	Name        *string          `json:"name"`        // Optional name update.
	Description *string          `json:"description"` // Optional description.
	Price       *float64         `json:"price"`       // Optional price.
	ImageURL    *string          `json:"image_url"`   // Optional cover image URL.
	Rarity      *string          `json:"rarity"`      // Optional rarity label.
	Category    *string          `json:"category"`    // Optional category.
	Features    *json.RawMessage `json:"features"`    // Optional feature list.
	IsActive    *bool            `json:"is_active"`   // Optional active flag.
	SortOrder   *int             `json:"sort_order"`  // Optional display order.
}

// packageUpdates validates an update request and builds the column map.
func packageUpdates(body updatePackageRequest) (map[string]any, error) {
	updates := map[string]any{
		"updated_at": time.Now().UTC(),
	}

	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			return nil, errors.New("name cannot be empty")
		}
		updates["name"] = name
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.Price != nil {
		if *body.Price < 0 {
			return nil, errors.New("price must be non-negative")
		}
		updates["price"] = *body.Price
	}
	if body.ImageURL != nil {
		updates["image_url"] = strings.TrimSpace(*body.ImageURL)
	}
	if body.Rarity != nil {
		rarity := strings.TrimSpace(*body.Rarity)
		if !models.ValidRarity(rarity) {
			return nil, errors.New("invalid rarity")
		}
		updates["rarity"] = rarity
	}
	if body.Category != nil {
		category := strings.TrimSpace(*body.Category)
		if category == "" {
			return nil, errors.New("category cannot be empty")
		}
		updates["category"] = category
	}
	if body.Features != nil {
		features, errFeatures := normalizeFeatures(*body.Features)
		if errFeatures != nil {
			return nil, errors.New("invalid features")
		}
		updates["features"] = features
	}
	if body.IsActive != nil {
		updates["is_active"] = *body.IsActive
	}
	if body.SortOrder != nil {
		updates["sort_order"] = *body.SortOrder
	}
	return updates, nil
}

// Update validates and applies package field updates.
func (h *PackageHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updatePackageRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates, errUpdates := packageUpdates(body)
	if errUpdates != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errUpdates.Error()})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.ShopPackage{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var pkg models.ShopPackage
	if errFind := h.db.WithContext(c.Request.Context()).First(&pkg, id).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, formatPackage(&pkg))
}

// Delete removes a package by ID.
func (h *PackageHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.ShopPackage{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Toggle flips the package's active flag.
//
// Read-then-write with no transactional guard; concurrent toggles are
// last-write-wins, which is acceptable for a display flag.
func (h *PackageHandler) Toggle(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	pkg, errToggle := togglePackageActive(c, h.db, id)
	if errToggle != nil {
		if errors.Is(errToggle, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "toggle failed"})
		return
	}
	c.JSON(http.StatusOK, formatPackage(pkg))
}

// togglePackageActive reads the current flag and writes its negation.
func togglePackageActive(c *gin.Context, conn *gorm.DB, id uint64) (*models.ShopPackage, error) {
	var pkg models.ShopPackage
	if errFind := conn.WithContext(c.Request.Context()).First(&pkg, id).Error; errFind != nil {
		return nil, errFind
	}

	now := time.Now().UTC()
	if errUpdate := conn.WithContext(c.Request.Context()).Model(&models.ShopPackage{}).Where("id = ?", id).
		Updates(map[string]any{"is_active": !pkg.IsActive, "updated_at": now}).Error; errUpdate != nil {
		return nil, errUpdate
	}
	pkg.IsActive = !pkg.IsActive
	pkg.UpdatedAt = now
	return &pkg, nil
}

// formatPackage converts a package model into a response payload.
func formatPackage(p *models.ShopPackage) gin.H {
	return gin.H{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"image_url":   p.ImageURL,
		"rarity":      p.Rarity,
		"category":    p.Category,
		"features":    p.Features,
		"is_active":   p.IsActive,
		"sort_order":  p.SortOrder,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}
