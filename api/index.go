package handler

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/shortlinks/pkg/adapters/handler"
	"github.com/wadjakorntonsri/shortlinks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/shortlinks/pkg/adapters/stats"
	"github.com/wadjakorntonsri/shortlinks/pkg/config"
	"github.com/wadjakorntonsri/shortlinks/pkg/core/services"
	"github.com/wadjakorntonsri/shortlinks/pkg/logger"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	logger.Init(cfg.AppEnv, cfg.LogLevel)

	// Note: On Vercel, the sqlite file is ephemeral unless DATABASE_URL points at Turso
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}

	statsClient, err := stats.FromConfig(context.Background(), cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("Stats credentials not loaded")
	}

	mux = handler.NewRouter(cfg, services.NewLinkService(repo, statsClient))
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
