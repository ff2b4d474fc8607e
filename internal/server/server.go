package server

import (
	"log/slog"

	"golang.org/x/time/rate"

	"rootfind/internal/config"
	"rootfind/internal/metrics"
	"rootfind/internal/problem"
	"rootfind/internal/sse"
)

// Server — HTTP-обёртка над решателями: запуск, поток итераций, экспорт
type Server struct {
	cfg     config.Config
	log     *slog.Logger
	catalog problem.Catalog
	runs    *runStore
	hub     *sse.Hub
	limiter *rate.Limiter
	metrics *metrics.Metrics
}

func New(cfg config.Config, catalog problem.Catalog, log *slog.Logger) *Server {
	limit := rate.Inf
	if cfg.Server.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.Server.RateLimitRPS)
	}
	burst := cfg.Server.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}

	return &Server{
		cfg:     cfg,
		log:     log,
		catalog: catalog,
		runs:    newRunStore(cfg.Server.RunTTL),
		hub:     sse.NewHub(64),
		limiter: rate.NewLimiter(limit, burst),
		metrics: metrics.New(),
	}
}
