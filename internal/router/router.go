package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/findash-backend/internal/handlers"
	"github.com/GregMSThompson/findash-backend/internal/metrics"
	"github.com/GregMSThompson/findash-backend/internal/middleware"
)

// Options carries the per-deployment pieces of the middleware stack.
type Options struct {
	// Auth resolves the caller's uid. Nil means local single-user mode.
	Auth func(http.Handler) http.Handler
	// RateLimit and RateBurst bound requests per user. Zero disables limiting.
	RateLimit float64
	RateBurst int
}

func NewRouter(deps *handlers.Deps, opts Options) chi.Router {
	r := chi.NewRouter()

	lm := middleware.NewLoggerMiddleware(deps.Log)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(lm.LoggerMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(metrics.InstrumentHandler)

	hh := handlers.NewHealthHandlers(deps)
	r.Get("/healthz", hh.Healthz)
	r.Handle("/metrics", metrics.Handler())

	auth := opts.Auth
	if auth == nil {
		auth = middleware.LocalAuth
	}

	dh := handlers.NewDashboardHandlers(deps)
	ph := handlers.NewProviderHandlers(deps)
	fh := handlers.NewFieldHandlers(deps)
	ah := handlers.NewAIHandlers(deps)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Use(middleware.WithUser)
		if opts.RateLimit > 0 {
			r.Use(middleware.NewRateLimiter(opts.RateLimit, opts.RateBurst, deps.ResponseHandler).Handler)
		}

		r.Mount("/dashboard", dh.DashboardRoutes())
		r.Mount("/providers", ph.ProviderRoutes())
		r.Get("/fields", fh.Fields)
		r.Mount("/settings", ah.SettingsRoutes())
		r.Mount("/ai", ah.AIRoutes())
	})
	return r
}
