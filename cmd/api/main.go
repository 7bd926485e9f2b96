package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/carewell-ai/care-assistant/internal/api/router"
	"github.com/carewell-ai/care-assistant/internal/chat"
	appconfig "github.com/carewell-ai/care-assistant/internal/config"
	"github.com/carewell-ai/care-assistant/internal/dialog"
	"github.com/carewell-ai/care-assistant/internal/knowledge"
	"github.com/carewell-ai/care-assistant/internal/nlp"
	"github.com/carewell-ai/care-assistant/internal/observability/metrics"
	"github.com/carewell-ai/care-assistant/internal/security"
	"github.com/carewell-ai/care-assistant/internal/transcript"
	"github.com/carewell-ai/care-assistant/internal/users"
	"github.com/carewell-ai/care-assistant/internal/webchat"
	"github.com/carewell-ai/care-assistant/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting care-assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// User repository: Postgres when configured, in-memory otherwise
	var repo users.Repository
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("failed to ping postgres", "error", err)
			os.Exit(1)
		}
		repo = users.NewPostgresRepository(pool)
		logger.Info("using postgres user repository")
	} else {
		repo = users.NewInMemoryRepository()
		logger.Info("using in-memory user repository")
	}

	// Transcript store: Redis when configured, disabled otherwise
	var transcriptStore *transcript.Store
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to ping redis", "error", err)
			os.Exit(1)
		}
		defer func() { _ = redisClient.Close() }()
		transcriptStore = transcript.NewStore(redisClient, cfg.TranscriptMaxMsgs)
		logger.Info("transcript store enabled", "addr", cfg.RedisAddr)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	dialogMetrics := metrics.NewDialogMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	// Core dialog pipeline
	kb := knowledge.NewStore()
	engine := nlp.NewEngine(kb)
	manager := dialog.NewManager(repo, engine, kb, logger, dialogMetrics)
	tokens := security.NewTokenRegistry(cfg.SessionTokenTTL)

	// Initialize handlers
	chatHandler := chat.NewHandler(manager, repo, tokens, transcriptStore, logger)
	webchatHandler := webchat.NewHandler(manager, transcriptStore, logger)
	usersHandler := users.NewHandler(repo, logger)

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		ChatHandler:        chatHandler,
		WebChatHandler:     webchatHandler,
		UsersHandler:       usersHandler,
		Tokens:             tokens,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
