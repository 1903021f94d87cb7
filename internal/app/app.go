package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/voxeldragons/siteapi/internal/architect"
	"github.com/voxeldragons/siteapi/internal/config"
	"github.com/voxeldragons/siteapi/internal/db"
	adminapi "github.com/voxeldragons/siteapi/internal/http/api/admin"
	architectapi "github.com/voxeldragons/siteapi/internal/http/api/architect"
	frontapi "github.com/voxeldragons/siteapi/internal/http/api/front"
	"github.com/voxeldragons/siteapi/internal/storage"
)

// RunServer starts the main API server and blocks until ctx is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)

	dsn, errDSN := config.LoadDatabaseDSN(configPath)
	if errDSN != nil {
		return fmt.Errorf("load database dsn: %w", errDSN)
	}

	conn, errOpen := db.Open(dsn)
	if errOpen != nil {
		return fmt.Errorf("open database: %w", errOpen)
	}

	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return fmt.Errorf("migrate database: %w", errMigrate)
	}

	initialized, errInit := HasAdminInitialized(conn)
	if errInit != nil {
		return fmt.Errorf("check admin state: %w", errInit)
	}
	if !initialized {
		log.Warn("no admin user found; create one through the init server or seed the admin_users table")
	}

	jwtCfg, errJWT := config.LoadJWTConfig(configPath)
	if errJWT != nil {
		return fmt.Errorf("load jwt config: %w", errJWT)
	}
	if strings.TrimSpace(jwtCfg.Secret) == "" {
		return fmt.Errorf("jwt secret is not configured (set `jwt.secret` in %s or the %s environment variable)", configPath, config.EnvJWTSecret)
	}

	storageCfg, errStorage := config.LoadStorageConfig(configPath)
	if errStorage != nil {
		return fmt.Errorf("load storage config: %w", errStorage)
	}
	store, errStore := storage.NewStore(storageCfg)
	if errStore != nil {
		return fmt.Errorf("init upload store: %w", errStore)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	adminapi.RegisterAdminRoutes(engine, conn, jwtCfg, store)
	frontapi.RegisterFrontRoutes(engine, conn)
	engine.Static(storage.PublicPrefix, store.Dir())

	architectCfg, errArchCfg := config.LoadArchitectConfig(configPath)
	if errArchCfg != nil {
		return fmt.Errorf("load architect config: %w", errArchCfg)
	}
	if strings.TrimSpace(architectCfg.APIKey) != "" {
		svc, errSvc := architect.NewService(ctx, architectCfg)
		if errSvc != nil {
			return fmt.Errorf("init architect service: %w", errSvc)
		}
		architectapi.RegisterArchitectRoutes(engine, svc)
	} else {
		log.Warnf("architect routes disabled: no Gemini API key configured (set %s)", config.EnvGeminiAPIKey)
	}

	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.Errorf("server shutdown error: %v", errShutdown)
		}
	}()

	log.Infof("starting server on %s (dialect=%s, uploads=%s)", addr, db.DialectName(conn), store.Dir())
	if errListen := srv.ListenAndServe(); errListen != nil && errListen != http.ErrServerClosed {
		return errListen
	}
	return nil
}
