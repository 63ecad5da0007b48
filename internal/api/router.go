package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nithinag10/gatherly/internal/api/middleware"
	"github.com/nithinag10/gatherly/internal/config"
	"github.com/nithinag10/gatherly/internal/handlers"
	"github.com/nithinag10/gatherly/internal/store"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, cfg *config.Config, h *handlers.Handler, redisStore *store.RedisStore) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(16 * 1024)) // 16KB max body
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting (requires Redis)
	if redisStore != nil {
		limiter := middleware.NewRateLimiter(redisStore, logger, middleware.RateLimiterConfig{
			Whitelist: cfg.RateLimitWhitelist,
		})
		r.Use(limiter.Middleware)
	}

	// CORS - allow all origins
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	// Users
	r.Post("/register", h.Register)
	r.Get("/users/{id}", h.GetUser)
	r.Get("/users/{id}/chats", h.GetUserChats)

	// Chats
	r.Post("/chats", h.CreateChat)
	r.Route("/chats/{id}", func(r chi.Router) {
		r.Get("/", h.GetChat)
		r.Delete("/", h.DeleteChat)
		r.Post("/join", h.JoinChat)
		r.Post("/leave", h.LeaveChat)
		r.Get("/messages", h.GetMessages)
		r.Post("/messages", h.PostMessage)
		r.Get("/summary", h.GetSummary)
		r.Get("/validate", h.Validate)
	})

	return r
}
