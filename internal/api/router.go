package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"pagesentry/internal/api/handlers"
	apimiddleware "pagesentry/internal/api/middleware"
	"pagesentry/internal/config"
	"pagesentry/internal/infrastructure/cache"
	"pagesentry/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	cache    *cache.RedisCache
	logger   *logger.Logger
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, c *cache.RedisCache, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		cache:    c,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Rate limiting
	if r.config.RateLimit.Enabled {
		router.Use(apimiddleware.RateLimiter(r.cache, r.config.RateLimit))
	}

	// Health checks
	router.Get("/health", r.handlers.Health.Check)
	router.Get("/ready", r.handlers.Health.Ready)

	// API v1 routes
	router.Route("/api/v1", func(api chi.Router) {
		// Page analysis
		api.Post("/analyze", r.handlers.Analyze.Analyze)
		api.Post("/analyze/filtered", r.handlers.Analyze.AnalyzeFiltered)

		// Whitelist management
		api.Route("/whitelist", func(wl chi.Router) {
			wl.Get("/", r.handlers.Whitelist.Get)
			wl.Put("/", r.handlers.Whitelist.Replace)
			wl.Post("/", r.handlers.Whitelist.Add)
			wl.Delete("/", r.handlers.Whitelist.Remove)
		})

		// Rule corpus
		api.Route("/rules", func(rules chi.Router) {
			rules.Get("/", r.handlers.Rules.List)
			rules.Get("/diagnostics", r.handlers.Rules.Diagnostics)
			rules.Post("/reload", r.handlers.Rules.Reload)
		})

		// Threat feeds
		api.Route("/feeds", func(feeds chi.Router) {
			feeds.Get("/stats", r.handlers.Feeds.Stats)
			feeds.Get("/domain/{domain}", r.handlers.Feeds.CheckDomain)
			feeds.Post("/{slug}/refresh", r.handlers.Feeds.Refresh)
		})

		// Scam reports
		api.Route("/reports", func(reports chi.Router) {
			reports.Post("/", r.handlers.Reports.Create)
			reports.Get("/", r.handlers.Reports.List)
			reports.Get("/{id}", r.handlers.Reports.Get)
			reports.Post("/{id}/status", r.handlers.Reports.UpdateStatus)
		})
	})

	return router
}
