package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/shortlinks/pkg/adapters/session"
	"github.com/wadjakorntonsri/shortlinks/pkg/config"
	"github.com/wadjakorntonsri/shortlinks/pkg/ports"
)

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, service ports.LinkService) http.Handler {
	flashes := session.NewStore(cfg.SecretKey, cfg.AppEnv == "production")
	h := NewHTTPHandler(service, flashes)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.List)
	mux.HandleFunc("GET /visit/{id}", h.Redirect)
	mux.HandleFunc("GET /stats/{id}", h.Stats)
	mux.HandleFunc("GET /new", h.NewForm)
	mux.HandleFunc("POST /new", h.Create)
	mux.HandleFunc("GET /healthz", h.Health)

	return Recoverer(RequestLogger(mux))
}
