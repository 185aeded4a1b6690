// Package httpapi assembles the chi router and middleware chain.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"tryon/internal/http/handlers"
	"tryon/internal/middleware"
)

// Options tunes the router-level middleware.
type Options struct {
	Log             zerolog.Logger
	RateLimitPerMin int
}

// NewRouter wires routes and middleware for the API server.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Log),
	)

	r.Get("/", app.Info)
	r.Get("/health", app.Health)

	r.Route("/api/tryon", func(r chi.Router) {
		if opts.RateLimitPerMin > 0 {
			r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		}
		r.Post("/submit", app.SubmitTryOn)
		r.Get("/status/{job_id}", app.TryOnStatus)
		r.Get("/result/{job_id}", app.TryOnResult)
	})

	return r
}
