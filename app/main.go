package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quoteflex/quoteflex/app/api"
	"github.com/quoteflex/quoteflex/app/cache"
	"github.com/quoteflex/quoteflex/app/cfg"
	"github.com/quoteflex/quoteflex/app/database"
	"github.com/quoteflex/quoteflex/app/display"
	"github.com/quoteflex/quoteflex/app/quotable"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slog.Info("Starting QuoteFlex server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Database opened", "path", appCfg.DBPath)

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations applied", "version", version, "dirty", dirty)

	quoteRepo := database.NewQuoteRepository(db)
	setRepo := database.NewSetRepository(db)

	defaultSetID, err := setRepo.EnsureDefaultSet()
	if err != nil {
		slog.Error("Failed to ensure default set", "error", err)
		os.Exit(1)
	}
	slog.Debug("Default set ready", "id", defaultSetID)

	settings, err := display.LoadSettings(appCfg.SettingsFile)
	if err != nil {
		slog.Error("Failed to load display settings", "file", appCfg.SettingsFile, "error", err)
		os.Exit(1)
	}

	// The search cache is optional. Without Redis every search hits the
	// upstream quote API directly.
	var searchCache quotable.SearchCache
	if appCfg.RedisAddr != "" {
		redisCache, err := cache.NewCache(appCfg.RedisAddr)
		if err != nil {
			slog.Error("Failed to connect to Redis", "addr", appCfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer redisCache.Close()
		searchCache = redisCache
		slog.Info("Search cache enabled", "addr", appCfg.RedisAddr)
	} else {
		slog.Info("Search cache disabled (REDIS_ADDR not set)")
	}

	client := quotable.NewClient(appCfg.QuoteAPIURL,
		time.Duration(appCfg.QuoteAPITimeout)*time.Second, appCfg.UserAgent)
	importer := quotable.NewImporter(client, quoteRepo, searchCache,
		time.Duration(appCfg.CacheTTL)*time.Second)

	selector := display.NewSelector(quoteRepo, setRepo)

	handler := api.NewHandler(quoteRepo, setRepo, selector, importer, settings)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		slog.Info("Endpoints available",
			"display", fmt.Sprintf("http://localhost:%s/display", appCfg.Port),
			"health", fmt.Sprintf("http://localhost:%s/health", appCfg.Port),
			"stats", fmt.Sprintf("http://localhost:%s/stats", appCfg.Port))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Shutdown complete")
}
