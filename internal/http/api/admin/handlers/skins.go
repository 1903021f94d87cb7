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

// SkinHandler manages admin CRUD endpoints for skins.
type SkinHandler struct {
	db *gorm.DB // Database handle for skin records.
}

// NewSkinHandler constructs a skin handler.
func NewSkinHandler(db *gorm.DB) *SkinHandler {
	return &SkinHandler{db: db}
}

// normalizeImages validates the images JSON payload and returns the cleaned
// list alongside its JSON form. The first URL is the canonical image.
func normalizeImages(raw json.RawMessage) ([]string, datatypes.JSON, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, datatypes.JSON([]byte("[]")), nil
	}

	var urls []string
	if errUnmarshal := json.Unmarshal(raw, &urls); errUnmarshal != nil {
		return nil, nil, errors.New("invalid images")
	}
	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		cleaned = append(cleaned, u)
	}
	rawImages, errMarshal := json.Marshal(cleaned)
	if errMarshal != nil {
		return nil, nil, errMarshal
	}
	return cleaned, datatypes.JSON(rawImages), nil
}

// createSkinRequest captures the payload for creating a skin.
type createSkinRequest struct {
	Name      string          `json:"name"`       // Skin name.
	Category  string          `json:"category"`   // Skin category.
	Rarity    string          `json:"rarity"`     // Rarity label.
	Price     float64         `json:"price"`      // Non-negative price.
	ImageURL  string          `json:"image_url"`  // Canonical image URL.
	Images    json.RawMessage `json:"images"`     // Gallery URL list.
	IsPopular *bool           `json:"is_popular"` // Optional popular flag.
	IsActive  *bool           `json:"is_active"`  // Optional active flag.
	SortOrder int             `json:"sort_order"` // Display order.
}

// buildSkin validates a create request and builds the model row.
//
// When the gallery is non-empty its first URL becomes the canonical
// image_url, keeping the two fields in sync.
func buildSkin(body createSkinRequest) (models.Skin, error) {
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return models.Skin{}, errors.New("name is required")
	}
	if body.Price < 0 {
		return models.Skin{}, errors.New("price must be non-negative")
	}
	rarity := strings.TrimSpace(body.Rarity)
	if rarity == "" {
		rarity = models.RarityRaro
	}
	if !models.ValidRarity(rarity) {
		return models.Skin{}, errors.New("invalid rarity")
	}
	category := strings.TrimSpace(body.Category)
	if category == "" {
		return models.Skin{}, errors.New("category is required")
	}

	urls, images, errImages := normalizeImages(body.Images)
	if errImages != nil {
		return models.Skin{}, errors.New("invalid images")
	}

	imageURL := strings.TrimSpace(body.ImageURL)
	if len(urls) > 0 {
		imageURL = urls[0]
	}

	isPopular := false
	if body.IsPopular != nil {
		isPopular = *body.IsPopular
	}
	isActive := true
	if body.IsActive != nil {
		isActive = *body.IsActive
	}

	now := time.Now().UTC()
	return models.Skin{
		Name:      name,
		Category:  category,
		Rarity:    rarity,
		Price:     body.Price,
		ImageURL:  imageURL,
		Images:    images,
		IsPopular: isPopular,
		IsActive:  isActive,
		SortOrder: body.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Create validates input and inserts a new skin.
func (h *SkinHandler) Create(c *gin.Context) {
	var body createSkinRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	skin, errBuild := buildSkin(body)
	if errBuild != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errBuild.Error()})
		return
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&skin).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create skin failed"})
		return
	}
	c.JSON(http.StatusCreated, formatSkin(&skin))
}

// List returns all skins, inactive rows included. A `q` query parameter
// filters by name, case-insensitively on either dialect.
func (h *SkinHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).
		Order("sort_order ASC, created_at DESC")
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = query.Where(db.CaseInsensitiveLikeExpr(h.db, "name"), db.NormalizeLikePattern(h.db, "%"+q+"%"))
	}

	var rows []models.Skin
	if errFind := query.Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list skins failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, formatSkin(&row))
	}
	c.JSON(http.StatusOK, gin.H{"skins": out})
}

// Get fetches a skin by ID.
func (h *SkinHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var skin models.Skin
	if errFind := h.db.WithContext(c.Request.Context()).First(&skin, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, formatSkin(&skin))
}

// updateSkinRequest captures optional fields for skin updates.
type updateSkinRequest struct {
	Name      *string          `json:"name"`       // Optional name update.
	Category  *string          `json:"category"`   // Optional category.
	Rarity    *string          `json:"rarity"`     // Optional rarity label.
	Price     *float64         `json:"price"`      // Optional price.
	ImageURL  *string          `json:"image_url"`  // Optional canonical image URL.
	Images    *json.RawMessage `json:"images"`     // Optional gallery list.
	IsPopular *bool            `json:"is_popular"` // Optional popular flag.
	IsActive  *bool            `json:"is_active"`  // Optional active flag.
	SortOrder *int             `json:"sort_order"` // Optional display order.
}

// skinUpdates validates an update request and builds the column map.
func skinUpdates(body updateSkinRequest) (map[string]any, error) {
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
	if body.Category != nil {
		category := strings.TrimSpace(*body.Category)
		if category == "" {
			return nil, errors.New("category cannot be empty")
		}
		updates["category"] = category
	}
	if body.Rarity != nil {
		rarity := strings.TrimSpace(*body.Rarity)
		if !models.ValidRarity(rarity) {
			return nil, errors.New("invalid rarity")
		}
		updates["rarity"] = rarity
	}
	if body.Price != nil {
		if *body.Price < 0 {
			return nil, errors.New("price must be non-negative")
		}
		updates["price"] = *body.Price
	}
	if body.Images != nil {
		urls, images, errImages := normalizeImages(*body.Images)
		if errImages != nil {
			return nil, errors.New("invalid images")
		}
		updates["images"] = images
		if len(urls) > 0 {
			updates["image_url"] = urls[0]
		}
	}
	// An explicit image_url wins only when no gallery accompanies it.
	if body.ImageURL != nil {
		if _, hasImages := updates["image_url"]; !hasImages {
			updates["image_url"] = strings.TrimSpace(*body.ImageURL)
		}
	}
	if body.IsPopular != nil {
		updates["is_popular"] = *body.IsPopular
	}
	if body.IsActive != nil {
		updates["is_active"] = *body.IsActive
	}
	if body.SortOrder != nil {
		updates["sort_order"] = *body.SortOrder
	}
	return updates, nil
}

// Update validates and applies skin field updates.
func (h *SkinHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateSkinRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates, errUpdates := skinUpdates(body)
	if errUpdates != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errUpdates.Error()})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Skin{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var skin models.Skin
	if errFind := h.db.WithContext(c.Request.Context()).First(&skin, id).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, formatSkin(&skin))
}

// Delete removes a skin by ID.
func (h *SkinHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.Skin{}, id)
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

// Toggle flips the skin's active flag.
func (h *SkinHandler) Toggle(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	skin, errToggle := toggleSkinActive(c, h.db, id)
	if errToggle != nil {
		if errors.Is(errToggle, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "toggle failed"})
		return
	}
	c.JSON(http.StatusOK, formatSkin(skin))
}

// toggleSkinActive reads the current flag and writes its negation.
func toggleSkinActive(c *gin.Context, conn *gorm.DB, id uint64) (*models.Skin, error) {
	var skin models.Skin
	if errFind := conn.WithContext(c.Request.Context()).First(&skin, id).Error; errFind != nil {
		return nil, errFind
	}

	now := time.Now().UTC()
	if errUpdate := conn.WithContext(c.Request.Context()).Model(&models.Skin{}).Where("id = ?", id).
		Updates(map[string]any{"is_active": !skin.IsActive, "updated_at": now}).Error; errUpdate != nil {
		return nil, errUpdate
	}
	skin.IsActive = !skin.IsActive
	skin.UpdatedAt = now
	return &skin, nil
}

// formatSkin converts a skin model into a response payload.
func formatSkin(s *models.Skin) gin.H {
	return gin.H{
		"id":         s.ID,
		"name":       s.Name,
		"category":   s.Category,
		"rarity":     s.Rarity,
		"price":      s.Price,
		"image_url":  s.ImageURL,
		"images":     s.Images,
		"is_popular": s.IsPopular,
		"is_active":  s.IsActive,
		"sort_order": s.SortOrder,
		"created_at": s.CreatedAt,
		"updated_at": s.UpdatedAt,
	}
}
