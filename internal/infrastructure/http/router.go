package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/bcg0006/plockly-core/internal/infrastructure/http/handlers"
	"github.com/bcg0006/plockly-core/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	AuthHandler   *handlers.AuthHandler
	ItemsHandler  *handlers.ItemsHandler
	HealthHandler *handlers.HealthHandler
	RequireJWT    func(http.Handler) http.Handler
	Log           zerolog.Logger
	Secure        func(http.Handler) http.Handler
	IPRateLimit   func(http.Handler) http.Handler
	Metrics       bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	r.Use(chimid.AllowContentType("application/json"))
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", cfg.AuthHandler.Signup)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
		r.Group(func(r chi.Router) {
			r.Use(cfg.RequireJWT)
			r.Post("/logout", cfg.AuthHandler.Logout)
			r.Get("/profile", cfg.AuthHandler.GetProfile)
			r.Put("/profile", cfg.AuthHandler.UpdateProfile)
			r.Patch("/profile", cfg.AuthHandler.UpdateProfile)
		})
	})

	r.Route("/items", func(r chi.Router) {
		r.Use(cfg.RequireJWT)
		r.Get("/", cfg.ItemsHandler.List)
		r.Post("/", cfg.ItemsHandler.Create)
		r.Get("/{id}", cfg.ItemsHandler.Get)
		r.Put("/{id}", cfg.ItemsHandler.Update)
		r.Patch("/{id}", cfg.ItemsHandler.Update)
		r.Delete("/{id}", cfg.ItemsHandler.Delete)
	})

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Info().
				Str("request_id", chimid.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
