// Package router wires the intake HTTP surface onto chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/homevet/intake-platform/internal/http/handlers"
	httpmiddleware "github.com/homevet/intake-platform/internal/http/middleware"
	"github.com/homevet/intake-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger     *logging.Logger
	Catalog    *handlers.CatalogHandler
	Zone       *handlers.ZoneHandler
	Slots      *handlers.SlotHandler
	Providers  *handlers.ProvidersHandler
	Submission *handlers.SubmissionHandler

	// AccountAuthSecret verifies account-holder JWTs. Intake routes stay open
	// to anonymous new clients; a valid token upgrades the request.
	AccountAuthSecret string

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Rate limiting for the public intake surface. Zero disables it.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a chi router with all intake routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/intake", func(api chi.Router) {
		if cfg.RateLimitPerSecond > 0 {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
		}
		api.Use(httpmiddleware.OptionalAccountJWT(cfg.AccountAuthSecret))

		if cfg.Catalog != nil {
			api.Route("/catalog", func(c chi.Router) {
				c.Get("/species", cfg.Catalog.Species)
				c.Get("/breeds", cfg.Catalog.Breeds)
				c.Get("/appointment-categories", cfg.Catalog.AppointmentCategories)
			})
		}
		if cfg.Zone != nil {
			api.Post("/zone-check", cfg.Zone.Check)
			api.Get("/zone-check", cfg.Zone.Result)
		}
		if cfg.Providers != nil {
			api.Get("/providers", cfg.Providers.List)
		}
		if cfg.Slots != nil {
			api.Post("/slot-search", cfg.Slots.Search)
			api.Get("/slot-offer", cfg.Slots.Offer)
		}
		if cfg.Submission != nil {
			api.Post("/requests", cfg.Submission.Submit)
		}
	})

	return r
}
