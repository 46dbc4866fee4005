package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"wordmastery/internal/catalog"
	"wordmastery/internal/config"
	"wordmastery/internal/database"
	"wordmastery/internal/handlers"
	"wordmastery/internal/logging"
	"wordmastery/internal/mastery"
	"wordmastery/internal/repository"
	"wordmastery/internal/scheduler"
	"wordmastery/internal/security"
	"wordmastery/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connection established", zap.String("type", cfg.DatabaseType))

	applied, err := db.RunMigrations(ctx)
	if err != nil {
		return err
	}
	logger.Info("migrations completed", zap.Strings("applied", applied))

	// Initialize repositories
	sessionRepo := repository.NewSessionRepository(db)
	vocabRepo := repository.NewVocabularyRepository(db)
	store := repository.NewMasteryRepository(db, mastery.NewCalculator(mastery.Curve{
		PromotionStreak: cfg.PromotionStreak,
		MaxLevel:        mastery.DefaultCurve().MaxLevel,
	}))

	if cfg.VocabularyCatalog != "" {
		result, err := catalog.ImportFile(ctx, vocabRepo, cfg.VocabularyCatalog)
		if err != nil {
			logger.Warn("failed to import vocabulary catalog", zap.String("path", cfg.VocabularyCatalog), zap.Error(err))
		} else {
			logger.Info("vocabulary catalog imported",
				zap.String("path", cfg.VocabularyCatalog),
				zap.Int("imported", result.Imported),
				zap.Int("skipped", result.Skipped),
			)
			for _, msg := range result.Errors {
				logger.Debug("catalog row skipped", zap.String("reason", msg))
			}
		}
	}

	// Initialize services
	sessions := service.NewSessionService(sessionRepo, store, logger.Named("sessions"), service.SessionOptions{
		InactivityWindow:   cfg.InactivityWindow,
		AcceptLateAttempts: cfg.AcceptLateAttempts,
	})
	analysis := service.NewAnalysisService(store, vocabRepo, mastery.NewGenerator(cfg.RecommendationWordLimit), logger.Named("analysis"), cfg.AnalysisCacheTTL)
	sessions.AddListener(analysis)

	email, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, logger.Named("email"))
	if err != nil {
		return err
	}

	// Start background maintenance
	jobs := scheduler.New(sessions, analysis, cfg.ReaperInterval, logger.Named("scheduler"))
	if err := jobs.Start(); err != nil {
		return err
	}
	defer jobs.Stop()

	limiter := security.NewRateLimiter(cfg.IngestRateLimit, cfg.IngestRateBurst)
	go limiter.Run(ctx)

	var verifier *security.TokenVerifier
	if cfg.JWTSecret != "" {
		verifier = security.NewTokenVerifier(cfg.JWTSecret)
	} else {
		logger.Warn("JWT_SECRET not set, API authentication is disabled")
	}

	router := handlers.NewRouter(handlers.RouterOptions{
		Sessions: handlers.NewSessionHandler(sessions, logger.Named("http")),
		Analysis: handlers.NewAnalysisHandler(analysis, email, logger.Named("http")),
		Verifier: verifier,
		Limiter:  limiter,
		Ping:     db.PingContext,
		Logger:   logger.Named("http"),
	})

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
