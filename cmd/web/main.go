// @title PDF Quiz Client API
// @version 1.0
// @description JSON surface of the PDF practice quiz client.
// @host localhost:3000
// @BasePath /api/client
// @schemes http https
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "pdf-quiz/cmd/web/docs"
	"pdf-quiz/internal/adapter"
	"pdf-quiz/internal/adapter/backend"
	"pdf-quiz/internal/cache"
	"pdf-quiz/internal/config"
	"pdf-quiz/internal/domain"
	"pdf-quiz/internal/logger"
	"pdf-quiz/internal/observability"
	"pdf-quiz/internal/server"
	"pdf-quiz/internal/service"
	"pdf-quiz/internal/session"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const sweepInterval = time.Minute

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	shutdownTracing := observability.InitTracing(rootCtx, appLogger, cfg.Tracing, cfg.Logger.Env)

	// Session store
	var sessionCache domain.Cache
	switch cfg.Session.Store {
	case "redis":
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
		sessionCache = adapter.NewRedisCacheAdapter(redisClient)
	case "memory":
		memoryCache := adapter.NewMemoryCacheAdapter()
		go memoryCache.RunSweeper(rootCtx, sweepInterval)
		sessionCache = memoryCache
	default:
		appLogger.Fatal("Unsupported session store, expected memory or redis", zap.String("store", cfg.Session.Store))
	}
	appLogger.Info("Session store initialized", zap.String("store", cfg.Session.Store), zap.Duration("ttl", cfg.Session.TTL))

	if cfg.Session.Secret == "change-me" {
		appLogger.Warn("SESSION_SECRET is the default value; set it before exposing the server")
	}
	tokens, err := session.NewTokenManager(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		appLogger.Fatal("Failed to create session token manager", zap.Error(err))
	}

	// Backend client and services
	backendClient := backend.NewClient(cfg.Backend)
	appLogger.Info("Backend client initialized",
		zap.String("base_url", cfg.Backend.BaseURL),
		zap.String("history_url", cfg.Backend.HistoryURL),
		zap.Duration("timeout", cfg.Backend.Timeout),
	)
	maxUpload := int64(cfg.MaxUploadBytes())
	sessionStore := service.NewSessionStore(sessionCache, cfg.Session.TTL)
	practiceService := service.NewPracticeService(backendClient, sessionStore, maxUpload)

	app := server.New(server.Deps{
		Service:       practiceService,
		Tokens:        tokens,
		SessionCache:  sessionCache,
		StoreName:     cfg.Session.Store,
		CookieName:    cfg.Session.CookieName,
		SecureCookies: cfg.Logger.Env == "production",
		MaxUploadSize: maxUpload,
		Fiber: fiber.Config{
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	})

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	stop()
	if err := shutdownTracing(ctx); err != nil {
		appLogger.Warn("Failed to flush traces", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
