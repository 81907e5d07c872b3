package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PBeekay/TesPITAI/internal"
	"github.com/PBeekay/TesPITAI/internal/ai"
	"github.com/PBeekay/TesPITAI/internal/ai/gemini"
	"github.com/PBeekay/TesPITAI/internal/ai/mock"
	"github.com/PBeekay/TesPITAI/internal/domain"
	"github.com/PBeekay/TesPITAI/internal/handler"
	"github.com/PBeekay/TesPITAI/internal/metrics"
	"github.com/PBeekay/TesPITAI/internal/middleware"
	"github.com/PBeekay/TesPITAI/internal/repository"
	"github.com/PBeekay/TesPITAI/internal/service"
)

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("sqlite3", cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready", "path", cfg.DatabasePath)

	// Upload scratch directory
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("upload directory creation failed: %w", err)
	}

	// Initialize repository
	repo := repository.New(db)

	// Seed the tier catalog and the configured account
	if err := repo.SeedPlans(ctx, domain.DefaultPlans); err != nil {
		return fmt.Errorf("plan seeding failed: %w", err)
	}

	// Initialize AI provider
	var provider ai.Provider
	switch cfg.AIProvider {
	case "gemini":
		geminiProvider, err := gemini.New(ctx, gemini.Config{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
			ProviderConfig: ai.ProviderConfig{
				MaxRetries:     cfg.AIMaxRetries,
				RetryBaseDelay: cfg.AIRetryBaseDelay,
				RequestTimeout: cfg.AIRequestTimeout,
			},
		}, logger)
		if err != nil {
			return fmt.Errorf("gemini provider initialization failed: %w", err)
		}
		defer geminiProvider.Close()
		provider = geminiProvider
		logger.Info("AI provider ready", "provider", "gemini", "model", cfg.GeminiModel)
	default:
		provider = mock.New(logger)
		logger.Warn("Using mock AI provider, verdicts are canned")
	}

	// Initialize services
	quotaService := service.NewQuotaService(repo, logger)
	userService := service.NewUserService(repo, quotaService, logger)
	analysisService := service.NewAnalysisService(repo, provider, quotaService, logger)
	statsService := service.NewStatsService(repo, logger)
	feedbackService := service.NewFeedbackService(repo, statsService, logger)

	if _, err := userService.Provision(ctx, domain.ProvisionParams{
		Username: cfg.SeedUsername,
		Password: cfg.SeedPassword,
		Name:     cfg.SeedName,
		Role:     domain.UserRoleAdmin,
	}); err != nil {
		return fmt.Errorf("account provisioning failed: %w", err)
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService, logger)
	analyzeHandler := handler.NewAnalyzeHandler(analysisService, cfg.UploadDir, logger)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService, logger)
	statsHandler := handler.NewStatsHandler(statsService, analysisService, logger)
	subscriptionHandler := handler.NewSubscriptionHandler(quotaService, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Static frontend
	staticFS := http.FileServer(http.Dir("public"))
	mux.Handle("GET /", staticFS)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics, behind basic auth when configured
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	// API routes; login is rate limited per IP
	loginLimiter := middleware.NewLoginRateLimitMiddleware(logger)
	mux.Handle("POST /api/login", loginLimiter.Limit(http.HandlerFunc(authHandler.Login)))
	analyzeHandler.RegisterRoutes(mux)
	feedbackHandler.RegisterRoutes(mux)
	statsHandler.RegisterRoutes(mux)
	subscriptionHandler.RegisterRoutes(mux)

	// Middleware chain
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(cfg.Env != "development")
	root := metrics.Middleware(loggingMw.Handler(securityMw.Handler(mux)))

	// Periodic accuracy rollup refresh
	go statsService.Run(ctx, cfg.MetricsRefreshInterval)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
