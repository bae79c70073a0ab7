package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	crmapp "github.com/coachpoint/backend/internal/application/crm"
	identityapp "github.com/coachpoint/backend/internal/application/identity"
	portalapp "github.com/coachpoint/backend/internal/application/portal"
	"github.com/coachpoint/backend/internal/domain/portal"
	"github.com/coachpoint/backend/internal/infrastructure/auth"
	"github.com/coachpoint/backend/internal/infrastructure/config"
	"github.com/coachpoint/backend/internal/infrastructure/logger"
	"github.com/coachpoint/backend/internal/infrastructure/persistence"
	"github.com/coachpoint/backend/internal/infrastructure/session"
	"github.com/coachpoint/backend/internal/interfaces/http/handler"
	"github.com/coachpoint/backend/internal/interfaces/http/middleware"
	"github.com/coachpoint/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting CoachPoint portal backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		// Session storage degrades, it does not block startup
		log.Warn("Redis unreachable at startup", zap.Error(err))
	}
	cancelPing()

	// Repositories
	clientRepo := persistence.NewGormClientRepository(db.DB)
	staffRepo := persistence.NewGormStaffRepository(db.DB)
	auditRepo := persistence.NewGormImpersonationAuditRepository(db.DB)

	// Session storage: Redis, optionally wrapped with an in-memory fallback
	var sessionStore portal.SessionStore = session.NewRedisSessionStore(redisClient, cfg.Session)
	if cfg.Session.FallbackEnabled {
		sessionStore = session.NewFallbackSessionStore(
			sessionStore,
			session.NewMemorySessionStore(cfg.Session),
			log,
		)
	}

	// Auth infrastructure
	jwtService := auth.NewJWTService(cfg.JWT)
	blacklist := auth.NewRedisTokenBlacklist(redisClient)

	// Application services
	directory := crmapp.NewClientDirectoryAdapter(clientRepo)
	viewerService := portalapp.NewViewerService(sessionStore, directory, auditRepo, log)
	clientService := crmapp.NewClientService(clientRepo)
	authService := identityapp.NewAuthService(staffRepo, jwtService, blacklist, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, cfg.Portal, log)
	clientHandler := handler.NewClientHandler(clientService, log)
	portalHandler := handler.NewPortalHandler(viewerService, cfg.Portal, cfg.Session, cfg.Cookie, log)

	engine := buildEngine(cfg, log, db, jwtService, blacklist, viewerService)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(router.BuildAuthRoutes(authHandler))
	r.Register(router.BuildClientRoutes(clientHandler))
	r.Register(router.BuildImpersonationRoutes(portalHandler, middleware.RequireRole("admin")))
	r.RegisterRoot(router.BuildPortalRoutes(
		portalHandler,
		middleware.PortalAccess(viewerService, cfg.Portal),
		middleware.JWTAuthMiddleware(jwtService),
	))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}

// buildEngine assembles the gin engine with the shared middleware stack
func buildEngine(
	cfg *config.Config,
	log *zap.Logger,
	db *persistence.Database,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	viewers *portalapp.ViewerService,
) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Every request gets a browser scope before anything resolves identity
	engine.Use(middleware.ScopeCookie(cfg.Session, cfg.Cookie))
	engine.Use(middleware.PreviewNavigation(viewers))

	// Staff API authentication; portal paths authenticate via their own guard
	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log
	jwtConfig.SkipPathPrefixes = []string{"/portal", "/client-preview", "/health"}
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	engine.GET("/health", healthHandler(db))

	return engine
}

// healthHandler reports process and database health
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		overall := "ok"
		dbStatus := "up"
		if err := db.Ping(); err != nil {
			status = http.StatusServiceUnavailable
			overall = "degraded"
			dbStatus = "down"
		}
		c.JSON(status, gin.H{
			"status":   overall,
			"database": dbStatus,
			"time":     time.Now().UTC().Format(time.RFC3339),
		})
	}
}
