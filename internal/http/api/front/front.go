package front

import (
	"github.com/gin-gonic/gin"
	handlers "github.com/voxeldragons/siteapi/internal/http/api/front/handlers"
	"gorm.io/gorm"
)

// RegisterFrontRoutes registers the public site endpoints.
func RegisterFrontRoutes(r *gin.Engine, db *gorm.DB) {
	if r == nil || db == nil {
		return
	}

	frontGroup := r.Group("/v0/front")

	catalogHandler := handlers.NewCatalogFrontHandler(db)
	frontGroup.GET("/packages", catalogHandler.ListPackages)
	frontGroup.GET("/skins", catalogHandler.ListSkins)

	settingsHandler := handlers.NewSettingsFrontHandler(db)
	frontGroup.GET("/settings/server-address", settingsHandler.ServerAddress)
}
