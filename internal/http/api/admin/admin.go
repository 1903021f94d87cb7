package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/voxeldragons/siteapi/internal/config"
	handlers "github.com/voxeldragons/siteapi/internal/http/api/admin/handlers"
	"github.com/voxeldragons/siteapi/internal/models"
	"github.com/voxeldragons/siteapi/internal/security"
	"github.com/voxeldragons/siteapi/internal/storage"
	"gorm.io/gorm"
)

// RegisterAdminRoutes registers admin routes, middleware, and handlers.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, store *storage.Store) {
	if r == nil || db == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(db)
	r.GET("/healthz", healthHandler.Healthz)

	adminGroup := r.Group("/v0/admin")

	authHandler := handlers.NewAuthHandler(db, jwtCfg)
	adminGroup.POST("/login", authHandler.Login)

	authed := adminGroup.Group("")
	authed.Use(adminAuthMiddleware(db, jwtCfg))

	authed.POST("/password", authHandler.ChangePassword)

	packageHandler := handlers.NewPackageHandler(db)
	authed.POST("/packages", packageHandler.Create)
	authed.GET("/packages", packageHandler.List)
	authed.GET("/packages/:id", packageHandler.Get)
	authed.PUT("/packages/:id", packageHandler.Update)
	authed.DELETE("/packages/:id", packageHandler.Delete)
	authed.POST("/packages/:id/toggle", packageHandler.Toggle)

	skinHandler := handlers.NewSkinHandler(db)
	authed.POST("/skins", skinHandler.Create)
	authed.GET("/skins", skinHandler.List)
	authed.GET("/skins/:id", skinHandler.Get)
	authed.PUT("/skins/:id", skinHandler.Update)
	authed.DELETE("/skins/:id", skinHandler.Delete)
	authed.POST("/skins/:id/toggle", skinHandler.Toggle)

	settingHandler := handlers.NewSettingHandler(db)
	authed.POST("/settings", settingHandler.Create)
	authed.GET("/settings", settingHandler.List)
	authed.GET("/settings/:key", settingHandler.Get)
	authed.PUT("/settings/:key", settingHandler.Update)

	if store != nil {
		uploadHandler := handlers.NewUploadHandler(store)
		authed.POST("/uploads", uploadHandler.Upload)
	}

	dispatchHandler := handlers.NewDispatchHandler(db)
	authed.POST("/shop", dispatchHandler.Execute)
}

// adminAuthMiddleware validates admin JWTs and loads admin context.
func adminAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseAdminToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var admin models.Admin
		if errFind := db.WithContext(c.Request.Context()).First(&admin, claims.AdminID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin not found"})
			return
		}
		if !admin.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin disabled"})
			return
		}

		c.Set("adminID", admin.ID)
		c.Set("adminUsername", admin.Username)
		c.Next()
	}
}
