package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/wadjakorntonsri/shortlinks/pkg/adapters/handler"
	"github.com/wadjakorntonsri/shortlinks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/shortlinks/pkg/adapters/stats"
	"github.com/wadjakorntonsri/shortlinks/pkg/config"
	"github.com/wadjakorntonsri/shortlinks/pkg/core/services"
	"github.com/wadjakorntonsri/shortlinks/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Repository
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer repo.Close()

	// Stats keep failing with 400 until the credentials file is fixed
	statsClient, err := stats.FromConfig(context.Background(), cfg)
	if err != nil {
		logger.Warn().Err(err).Str("file", cfg.CredentialsFile).Msg("Stats credentials not loaded")
	}

	// Initialize Service
	service := services.NewLinkService(repo, statsClient)

	// Initialize Router
	mux := handler.NewRouter(cfg, service)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.StatsTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
}
