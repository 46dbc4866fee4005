package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"wordmastery/internal/security"
)

// RouterOptions collects what NewRouter wires together
type RouterOptions struct {
	Sessions *SessionHandler
	Analysis *AnalysisHandler
	// Verifier enables bearer token authentication on /api when set
	Verifier *security.TokenVerifier
	// Limiter rate limits the ingestion routes when set
	Limiter *security.RateLimiter
	// Ping reports whether the database is reachable
	Ping   func(ctx context.Context) error
	Logger *zap.Logger
}

// NewRouter builds the HTTP routes
func NewRouter(opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(Logging(opts.Logger))
	r.Use(Metrics)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := opts.Ping(ctx); err != nil {
				respondWithError(w, opts.Logger, http.StatusServiceUnavailable, ErrServiceUnavailable, "health check failed", err)
				return
			}
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireToken(opts.Verifier, opts.Logger))

		r.Group(func(r chi.Router) {
			if opts.Limiter != nil {
				r.Use(RateLimit(opts.Limiter, opts.Logger))
			}
			opts.Sessions.RegisterRoutes(r)
		})
		opts.Analysis.RegisterRoutes(r)
	})

	return r
}
