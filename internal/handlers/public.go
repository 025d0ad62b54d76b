// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers serves the public site: portfolio pages, the blog, the
// generated feeds and the small JSON API. Rendered output is stored in the
// page cache under its path plus the query parameters the page reads, with
// its cache tags, and served from there until a revalidation drops it.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"devfolio/internal/blog"
	"devfolio/internal/cache"
	"devfolio/internal/feed"
	"devfolio/internal/models"
	"devfolio/internal/render"
)

// Blog is the slice of the data-access layer the handlers read from.
// *blog.Service implements it.
type Blog interface {
	GetPosts(ctx context.Context, first int, after string) (*models.PostConnection, error)
	GetPostsByTag(ctx context.Context, tagSlug string, first int, after string) (*models.PostConnection, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	GetSeriesBySlug(ctx context.Context, slug string, first int) (*models.Series, error)
	GetSeriesList(ctx context.Context, first int) ([]models.Series, error)
	SearchPosts(ctx context.Context, query string, first int) ([]models.Post, error)
	GetStaticPage(ctx context.Context, slug string) (*models.StaticPage, error)
	GetPopularTags(ctx context.Context, limit int) ([]models.Tag, error)
	GetBlogStats(ctx context.Context) (*models.BlogStats, error)
	GetOverview(ctx context.Context, latest, tags int) (*blog.Overview, error)
}

// Subscriber persists newsletter sign-ups. *store.SubscriberStore
// implements it.
type Subscriber interface {
	Subscribe(ctx context.Context, email, source string) (*models.Subscriber, error)
}

// Config wires a Public handler group. Subscribers is optional; without it
// newsletter sign-ups are acknowledged but not stored.
type Config struct {
	Blog        Blog
	Renderer    *render.Renderer
	Cache       cache.Store
	Feeds       *feed.Generator
	Subscribers Subscriber
	SiteURL     string
	Now         func() time.Time
}

// Public groups the handlers for the public-facing site.
type Public struct {
	blog        Blog
	render      *render.Renderer
	cache       cache.Store
	feeds       *feed.Generator
	subscribers Subscriber
	siteURL     string
	now         func() time.Time
}

// NewPublic creates a new Public handler group.
func NewPublic(cfg Config) *Public {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Public{
		blog:        cfg.Blog,
		render:      cfg.Renderer,
		cache:       cfg.Cache,
		feeds:       cfg.Feeds,
		subscribers: cfg.Subscribers,
		siteURL:     cfg.SiteURL,
		now:         cfg.Now,
	}
}

// Page sizes.
const (
	homeLatestPosts = 6
	homePopularTags = 12
	listPageSize    = 12
	seriesPageSize  = 20
)

// ---------- Portfolio pages ----------

// Home renders the landing page with the latest posts, blog stats and
// popular tags. A content API failure degrades the blog section to an
// error panel and the page is not cached.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	key := pathKey(r)
	if p.serveCached(w, r, key) {
		return
	}

	data := &render.PageData{Section: "home", Path: "/", Data: map[string]any{}}
	ov, err := p.blog.GetOverview(r.Context(), homeLatestPosts, homePopularTags)
	if err != nil {
		data.Data["Error"] = errorPanel(err, "/")
		p.renderPage(w, r, http.StatusOK, "home", data)
		return
	}
	data.Data["Latest"] = ov.Latest
	data.Data["Stats"] = ov.Stats
	data.Data["Tags"] = ov.Tags

	p.renderAndCache(w, r, key, "home", data, cache.TagLatestPosts, cache.TagBlogPosts)
}

// skillGroup is one block on the skills page.
type skillGroup struct {
	Name  string
	Items []string
}

var skills = []skillGroup{
	{"Languages", []string{"Go", "TypeScript", "SQL", "Python", "Bash"}},
	{"Backend", []string{"HTTP APIs", "GraphQL", "PostgreSQL", "Valkey / Redis", "Message queues"}},
	{"Infrastructure", []string{"Docker", "Kubernetes", "Terraform", "S3-compatible storage", "CI/CD"}},
	{"Practices", []string{"Observability", "Testing", "Code review", "Technical writing"}},
}

// About renders the about page.
func (p *Public) About(w http.ResponseWriter, r *http.Request) {
	p.staticPage(w, r, "about", "About", nil)
}

// Skills renders the skills page.
func (p *Public) Skills(w http.ResponseWriter, r *http.Request) {
	p.staticPage(w, r, "skills", "Skills", map[string]any{"Skills": skills})
}

// Contact renders the contact page with the newsletter form.
func (p *Public) Contact(w http.ResponseWriter, r *http.Request) {
	p.staticPage(w, r, "contact", "Contact", nil)
}

func (p *Public) staticPage(w http.ResponseWriter, r *http.Request, name, title string, extra map[string]any) {
	key := pathKey(r)
	if p.serveCached(w, r, key) {
		return
	}
	p.renderAndCache(w, r, key, name, &render.PageData{
		Title:   title,
		Section: name,
		Path:    r.URL.Path,
		Data:    extra,
	})
}

// NotFound renders the 404 page.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	p.renderPage(w, r, http.StatusNotFound, "notfound", &render.PageData{
		Title: "Not found",
		Path:  r.URL.Path,
	})
}

// Health answers liveness probes.
func (p *Public) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---------- Cache plumbing ----------

// pathKey is the cache key of a page that reads no query parameters.
func pathKey(r *http.Request) string {
	return cache.Key(r.URL.Path, nil)
}

// serveCached writes the cached response stored under key, if any. HTMX
// partials and non-GET requests always miss.
func (p *Public) serveCached(w http.ResponseWriter, r *http.Request, key string) bool {
	if !cacheable(r) {
		return false
	}
	e, ok := p.cache.Get(r.Context(), key)
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", e.ContentType)
	w.Header().Set("X-Cache", "HIT")
	w.Write(e.Body)
	return true
}

// store caches a successful response under key.
func (p *Public) store(r *http.Request, key, contentType string, body []byte, tags ...string) {
	if !cacheable(r) {
		return
	}
	p.cache.Set(r.Context(), key, cache.Entry{ContentType: contentType, Body: body}, tags...)
}

func cacheable(r *http.Request) bool {
	return (r.Method == http.MethodGet || r.Method == http.MethodHead) && !render.IsHTMX(r)
}

// renderAndCache renders a 200 page, caches it and writes it.
func (p *Public) renderAndCache(w http.ResponseWriter, r *http.Request, key, name string, data *render.PageData, tags ...string) {
	body, err := p.render.Render(name, render.IsHTMX(r), data)
	if err != nil {
		slog.Error("render page failed", "error", err, "template", name, "path", r.URL.Path)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	p.store(r, key, htmlContentType, body, tags...)

	w.Header().Set("Content-Type", htmlContentType)
	w.Header().Set("X-Cache", "MISS")
	w.Write(body)
}

// renderPage writes an uncached page with the given status.
func (p *Public) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data *render.PageData) {
	p.render.Page(w, r, status, name, data)
}

// renderError renders the full-page error panel for an upstream failure.
func (p *Public) renderError(w http.ResponseWriter, r *http.Request, section string, err error) {
	p.renderPage(w, r, http.StatusBadGateway, "error", &render.PageData{
		Title:   "Something went wrong",
		Section: section,
		Path:    r.URL.Path,
		Data:    map[string]any{"Error": errorPanel(err, r.URL.RequestURI())},
	})
}

const htmlContentType = "text/html; charset=utf-8"

// domainErrors are the user-facing failure messages of the data layer.
var domainErrors = []error{
	blog.ErrFetchPosts,
	blog.ErrFetchPost,
	blog.ErrFetchSeries,
	blog.ErrFetchTags,
	blog.ErrSearch,
	blog.ErrFetchStats,
	blog.ErrFetchPage,
}

// userMessage maps an error to the message shown to visitors.
func userMessage(err error) string {
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return d.Error()
		}
	}
	return "Something went wrong"
}

func errorPanel(err error, retry string) *render.ErrorPanel {
	return &render.ErrorPanel{Message: userMessage(err), RetryURL: retry}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
