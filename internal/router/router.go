// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// site. Pages and feeds hang off the root; the JSON API, the newsletter
// and the revalidation endpoints live under /api.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"devfolio/internal/handlers"
	"devfolio/internal/middleware"
	"devfolio/internal/revalidate"
	"devfolio/web"
)

// Deps are the handler groups and middleware the router mounts.
// Limiter is optional; without it POST endpoints are not rate limited.
type Deps struct {
	Public     *handlers.Public
	Revalidate *revalidate.Handler
	Limiter    *middleware.RateLimiter
	// AllowedOrigins may post to the newsletter endpoint cross-origin.
	AllowedOrigins []string
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware: applied to every request. Logger runs first so
	// the request ID is set before a panic is logged.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", d.Public.Health)

	static, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// Portfolio
	r.Get("/", d.Public.Home)
	r.Get("/about", d.Public.About)
	r.Get("/skills", d.Public.Skills)
	r.Get("/contact", d.Public.Contact)

	// Blog
	r.Route("/blog", func(r chi.Router) {
		r.Get("/", d.Public.BlogIndex)
		r.Get("/series", d.Public.SeriesIndex)
		r.Get("/series/{slug}", d.Public.Series)
		r.Get("/tag/{tag}", d.Public.Tag)
		r.Get("/{slug}", d.Public.Post)
		r.Get("/{slug}/qr.png", d.Public.PostQR)
	})
	r.Get("/page/{slug}", d.Public.StaticPage)

	// Generated documents
	r.Get("/rss.xml", d.Public.Feed)
	r.Get("/sitemap.xml", d.Public.Feed)
	r.Get("/robots.txt", d.Public.Feed)

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", d.Public.Search)
		r.Get("/stats", d.Public.Stats)
		r.Get("/tags", d.Public.Tags)
		r.Get("/revalidate", d.Revalidate.Manual)

		r.Group(func(r chi.Router) {
			if d.Limiter != nil {
				r.Use(d.Limiter.Middleware)
			}

			newsletter := r.With(newsletterCORS(d.AllowedOrigins))
			newsletter.Post("/newsletter", d.Public.Newsletter)
			// Preflights are answered by the CORS middleware before this runs.
			newsletter.Options("/newsletter", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
			r.Post("/revalidate", d.Revalidate.Manual)
		})

		// Platform deliveries are signed and arrive in bursts; not rate limited.
		r.Post("/webhook/hashnode", d.Revalidate.Webhook)
	})

	r.NotFound(d.Public.NotFound)

	return r
}

// newsletterCORS lets the sign-up form be embedded on other origins.
func newsletterCORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "HX-Request", "HX-Current-URL", "HX-Target", "HX-Trigger"},
		MaxAge:         300,
	})
}
