// Package main provides the entry point for the not-following-back server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Bangnus/Check-Unfollows-IG/internal/api/handlers"
	"github.com/Bangnus/Check-Unfollows-IG/internal/auth"
	"github.com/Bangnus/Check-Unfollows-IG/internal/browser"
	"github.com/Bangnus/Check-Unfollows-IG/internal/challenge"
	"github.com/Bangnus/Check-Unfollows-IG/internal/config"
	"github.com/Bangnus/Check-Unfollows-IG/internal/consent"
	"github.com/Bangnus/Check-Unfollows-IG/internal/http/mw"
	"github.com/Bangnus/Check-Unfollows-IG/internal/journal"
	"github.com/Bangnus/Check-Unfollows-IG/internal/logging"
	"github.com/Bangnus/Check-Unfollows-IG/internal/login"
	"github.com/Bangnus/Check-Unfollows-IG/internal/scraper"
	"github.com/Bangnus/Check-Unfollows-IG/internal/version"
)

// Journal rows older than this are removed at startup.
const journalRetention = 30 * 24 * time.Hour

func main() {
	cfg := config.Load()

	logger := logging.SetDefault(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	launchOpts := browser.LaunchOptionsFromConfig(cfg)
	logger.Info("starting notfollowingback server",
		"version", version.Get().Version,
		"port", cfg.Port,
		"env", cfg.Env,
		"browser", launchOpts.String(),
		"scrape_budget", cfg.EffectiveScrapeBudget(),
	)

	// Browser is launched on the first check, not here.
	manager := browser.NewManager(
		browser.NewRodLauncher(launchOpts, logger),
		browser.ManagerOptionsFromConfig(cfg),
		logger,
	)
	defer manager.Close()

	var (
		recorder handlers.RunRecorder
		lister   handlers.RunLister
	)
	if cfg.RunDBPath != "" {
		store, err := journal.Open(cfg.RunDBPath, logger)
		if err != nil {
			logger.Error("failed to open run journal", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		if _, err := store.CleanupOlderThan(context.Background(), time.Now().Add(-journalRetention)); err != nil {
			logger.Warn("journal cleanup failed", "error", err)
		}
		recorder, lister = store, store
	}

	authenticator := login.NewAuthenticator(
		consent.NewDismisser(logger),
		challenge.NewDetector(logger),
		login.OptionsFromConfig(cfg),
		logger,
	)
	listScraper := scraper.New(scraper.OptionsFromConfig(cfg), logger)

	healthHandler := handlers.NewHealthHandler(manager)
	checkHandler := handlers.NewCheckHandler(manager, authenticator, listScraper, recorder, handlers.CheckOptionsFromConfig(cfg), logger)
	runsHandler := handlers.NewRunsHandler(lister)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(mw.LogContext)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.HandlerTimeout()))

	// The web UI calls the API from the browser.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var verifier *auth.Verifier
	if cfg.APIJWTSecret != "" {
		verifier = auth.NewVerifier(cfg.APIJWTSecret, "")
	}
	switch {
	case cfg.AllowUnauthenticated:
		logger.Warn("authentication disabled - ALLOW_UNAUTHENTICATED is set")
	case verifier != nil:
		logger.Info("JWT verification enabled")
	default:
		logger.Warn("no authentication configured - service is unprotected")
	}

	if cfg.MaxRequestsPerHour > 0 {
		logger.Info("rate limiting enabled", "per_hour", cfg.MaxRequestsPerHour)
	}

	humaConfig := handlers.NewHumaConfig()
	api := humachi.New(r, humaConfig)

	handlers.RegisterHealth(api, healthHandler)

	r.Group(func(pr chi.Router) {
		pr.Use(mw.Auth(mw.AuthConfig{
			Verifier:             verifier,
			AllowUnauthenticated: cfg.AllowUnauthenticated,
			Logger:               logger,
		}))
		pr.Use(mw.RateLimit(cfg.MaxRequestsPerHour))

		// Docs are served once, by the public API.
		protectedConfig := humaConfig
		protectedConfig.OpenAPIPath = ""
		protectedConfig.DocsPath = ""
		protectedConfig.SchemasPath = ""
		protectedAPI := humachi.New(pr, protectedConfig)

		handlers.RegisterCheck(protectedAPI, checkHandler)
		handlers.RegisterRuns(protectedAPI, runsHandler)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.HandlerTimeout() + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdown(srv, manager, logger)
}

// shutdown drains in-flight requests, then closes the browser.
func shutdown(srv *http.Server, manager *browser.Manager, logger *slog.Logger) {
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	manager.Close()

	logger.Info("server stopped")
}
