package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/fr-yash/CoBuilderr/internal/api/middleware"
	"github.com/fr-yash/CoBuilderr/internal/auth"
	"github.com/fr-yash/CoBuilderr/internal/handlers"
	"github.com/fr-yash/CoBuilderr/internal/ws"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, h *handlers.Handler, gateway *ws.Gateway, verifier *auth.Verifier, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(64 * 1024))

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// CORS - restricted to the configured frontends
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	requireAuth := middleware.RequireAuth(verifier)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Post("/users/register", h.Register)
	r.Post("/users/login", h.Login)

	// The relay handshake authenticates itself (token via query or header)
	r.Get("/ws", gateway.Handle)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/users/profile", h.Profile)
		r.Get("/users/logout", h.Logout)
		r.Get("/users/all", h.ListUsers)

		r.Post("/projects/create", h.CreateProject)
		r.Get("/projects/all", h.ListProjects)
		r.Put("/projects/add-user", h.AddUsers)
		r.Get("/projects/get-project/{id}", h.GetProject)
		r.Get("/projects/messages/{id}", h.GetProjectMessages)

		r.Get("/ai/get-result", h.GetResult)
	})

	return r
}
