package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voxeldragons/siteapi/internal/models"
	internalsettings "github.com/voxeldragons/siteapi/internal/settings"
	"gorm.io/gorm"
)

// SettingsFrontHandler serves the public site settings.
type SettingsFrontHandler struct {
	db *gorm.DB
}

// NewSettingsFrontHandler constructs a SettingsFrontHandler.
func NewSettingsFrontHandler(db *gorm.DB) *SettingsFrontHandler {
	return &SettingsFrontHandler{db: db}
}

// ServerAddress returns the public game server address.
func (h *SettingsFrontHandler) ServerAddress(c *gin.Context) {
	address := internalsettings.DefaultServerAddress

	var setting models.Setting
	errFind := h.db.WithContext(c.Request.Context()).
		Where("key = ?", internalsettings.ServerAddressKey).
		First(&setting).Error
	if errFind == nil {
		var value string
		if errUnmarshal := json.Unmarshal(setting.Value, &value); errUnmarshal == nil && value != "" {
			address = value
		}
	}

	c.JSON(http.StatusOK, gin.H{"server_address": address})
}
