package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "eduadmin-backend/docs"
	"eduadmin-backend/org-service/handlers"
	"eduadmin-backend/org-service/middleware"
	"eduadmin-backend/org-service/services"
	"eduadmin-backend/shared/config"
	"eduadmin-backend/shared/database"
	"eduadmin-backend/shared/logger"
	"eduadmin-backend/shared/orgtree"
	"eduadmin-backend/shared/utils/cache"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

func main() {
	log := logger.Must(os.Getenv("APP_ENV"))
	defer log.Sync()

	// Load configuration
	config.LoadConfig()
	cfg := config.GetConfig()

	policy, err := orgtree.ParseRootPolicy(cfg.RootPolicy)
	if err != nil {
		log.Fatal("❌ Invalid ORG_ROOT_POLICY", zap.Error(err))
	}

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatal("❌ Failed to initialize database", zap.Error(err))
	}
	defer database.CloseDatabase()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	origins := allowedOrigins(cfg.FrontendURL)
	hub := services.NewChangeHub(origins, log)
	go hub.Run(ctx)

	opts := services.Options{
		RootPolicy: policy,
		Publisher:  hub,
		Logger:     log,
	}

	if cfg.RedisEnabled {
		snapshots, err := cache.NewSnapshotCache(ctx, cfg, log)
		if err != nil {
			log.Warn("⚠️ Redis unavailable, serving directory without snapshot cache", zap.Error(err))
		} else {
			defer snapshots.Close()
			opts.Cache = snapshots
		}
	}

	if cfg.MinIOEnabled {
		store, err := services.NewMinIOService(ctx, cfg, log)
		if err != nil {
			log.Warn("⚠️ MinIO unavailable, directory export disabled", zap.Error(err))
		} else {
			opts.Exports = store
		}
	}

	directory := services.NewDirectoryService(services.NewGormRepository(database.GetDB()), opts)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(corsMiddleware(origins))

	limiter := middleware.NewRateLimiter(middleware.NewRateLimitConfig(cfg))
	go limiter.RunCleanup(ctx, time.Minute)
	router.Use(limiter.WriteRateLimitMiddleware(handlers.OperatorHeader))

	handlers.NewOrganizationHandler(directory, handlers.HandlerOptions{
		PaletteSize:  cfg.GetPaletteSize(),
		DefaultLimit: cfg.GetListDefaultLimit(),
		MaxLimit:     cfg.GetListMaxLimit(),
	}, log).RegisterRoutes(router)
	handlers.NewWebSocketHandler(hub).RegisterRoutes(router)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"service":     "org",
			"root_policy": policy,
			"ws_clients":  hub.Clients(),
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              ":" + cfg.ServicePort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("🏢 Organization Service starting", zap.String("port", cfg.ServicePort))
	if err := serve(ctx, srv, log); err != nil {
		log.Error("❌ Server failed", zap.Error(err))
	}
}

// serve runs srv until ctx is done or the listener fails, then shuts it down. It
// always returns to the caller so deferred cleanup runs.
func serve(ctx context.Context, srv *http.Server, log *zap.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, failed := <-serveErr:
		if failed {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("🛑 Shutting down Organization Service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	return nil
}

func allowedOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AddAllowHeaders(handlers.OperatorHeader)
	return cors.New(corsConfig)
}
