// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the route table, the global middleware chain
// and the per-route CORS and rate limiting.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"devfolio/internal/blog"
	"devfolio/internal/cache"
	"devfolio/internal/feed"
	"devfolio/internal/handlers"
	"devfolio/internal/middleware"
	"devfolio/internal/models"
	"devfolio/internal/render"
	"devfolio/internal/revalidate"
)

// emptyBlog is a publication with no content.
type emptyBlog struct{}

func (emptyBlog) GetPosts(context.Context, int, string) (*models.PostConnection, error) {
	return &models.PostConnection{}, nil
}
func (emptyBlog) GetPostsByTag(context.Context, string, int, string) (*models.PostConnection, error) {
	return &models.PostConnection{}, nil
}
func (emptyBlog) GetPostBySlug(context.Context, string) (*models.Post, error) {
	return nil, blog.ErrNotFound
}
func (emptyBlog) GetSeriesBySlug(context.Context, string, int) (*models.Series, error) {
	return nil, blog.ErrNotFound
}
func (emptyBlog) GetSeriesList(context.Context, int) ([]models.Series, error) { return nil, nil }
func (emptyBlog) SearchPosts(context.Context, string, int) ([]models.Post, error) {
	return nil, nil
}
func (emptyBlog) GetStaticPage(context.Context, string) (*models.StaticPage, error) {
	return nil, blog.ErrNotFound
}
func (emptyBlog) GetPopularTags(context.Context, int) ([]models.Tag, error) { return nil, nil }
func (emptyBlog) GetBlogStats(context.Context) (*models.BlogStats, error) {
	return &models.BlogStats{}, nil
}
func (emptyBlog) GetOverview(context.Context, int, int) (*blog.Overview, error) {
	return &blog.Overview{Stats: &models.BlogStats{}}, nil
}

func newTestRouter(t *testing.T, limiter *middleware.RateLimiter) http.Handler {
	t.Helper()

	site := render.Site{Name: "devfolio", URL: "https://devfolio.example", Author: "Ada"}
	rn, err := render.New(site)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	pages := cache.NewMemoryStore(time.Hour)

	public := handlers.NewPublic(handlers.Config{
		Blog:     emptyBlog{},
		Renderer: rn,
		Cache:    pages,
		Feeds:    feed.NewGenerator(emptyBlog{}, feed.Site{URL: site.URL, Name: site.Name}),
		SiteURL:  site.URL,
	})
	reval := revalidate.New(revalidate.Config{Invalidator: pages, RevalidateSecret: "s3cret"})

	return New(Deps{Public: public, Revalidate: reval, Limiter: limiter})
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, nil)
	rr := do(h, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestRoutes(t *testing.T) {
	h := newTestRouter(t, nil)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/about", http.StatusOK},
		{http.MethodGet, "/skills", http.StatusOK},
		{http.MethodGet, "/contact", http.StatusOK},
		{http.MethodGet, "/blog", http.StatusOK},
		{http.MethodGet, "/blog/series", http.StatusOK},
		{http.MethodGet, "/blog/tag/go", http.StatusOK},
		{http.MethodGet, "/blog/missing-post", http.StatusNotFound},
		{http.MethodGet, "/blog/series/missing", http.StatusNotFound},
		{http.MethodGet, "/page/missing", http.StatusNotFound},
		{http.MethodGet, "/rss.xml", http.StatusOK},
		{http.MethodGet, "/sitemap.xml", http.StatusOK},
		{http.MethodGet, "/robots.txt", http.StatusOK},
		{http.MethodGet, "/api/stats", http.StatusOK},
		{http.MethodGet, "/api/tags", http.StatusOK},
		{http.MethodGet, "/api/search?q=go", http.StatusOK},
		{http.MethodGet, "/api/revalidate", http.StatusOK},
		{http.MethodGet, "/static/site.css", http.StatusOK},
		{http.MethodGet, "/static/analytics.js", http.StatusOK},
		{http.MethodGet, "/no/such/route", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := do(h, httptest.NewRequest(tt.method, tt.path, nil))
			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestGlobalMiddleware(t *testing.T) {
	h := newTestRouter(t, nil)
	rr := do(h, httptest.NewRequest(http.MethodGet, "/about", nil))

	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("CSP missing")
	}
	if rr.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("request ID missing")
	}
}

func TestNotFoundRendersPage(t *testing.T) {
	h := newTestRouter(t, nil)
	rr := do(h, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Content-Type: got %q", rr.Header().Get("Content-Type"))
	}
}

func TestNewsletterCORSPreflight(t *testing.T) {
	h := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/newsletter", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rr := do(h, req)

	if rr.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Errorf("preflight missing Access-Control-Allow-Origin, headers: %v", rr.Header())
	}
	if rr.Code >= 400 {
		t.Errorf("preflight status: got %d", rr.Code)
	}
}

func TestNewsletterPost(t *testing.T) {
	h := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/newsletter", strings.NewReader(`{"email":"ada@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://elsewhere.example")
	rr := do(h, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("cross-origin POST should carry CORS headers")
	}
}

func TestRateLimitOnPostRoutes(t *testing.T) {
	limiter := middleware.NewRateLimiter(0.001, 2)
	defer limiter.Stop()
	h := newTestRouter(t, limiter)

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/revalidate", strings.NewReader(`{"secret":"wrong"}`))
		req.RemoteAddr = "203.0.113.9:4000"
		return do(h, req).Code
	}
	for i := 0; i < 2; i++ {
		if code := post(); code != http.StatusUnauthorized {
			t.Fatalf("request %d: got %d, want 401", i+1, code)
		}
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Errorf("third request: got %d, want 429", code)
	}

	// GET routes are never limited.
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		if code := do(h, req).Code; code != http.StatusOK {
			t.Fatalf("GET %d: got %d", i+1, code)
		}
	}
}

func TestRateLimitSkipsWebhook(t *testing.T) {
	limiter := middleware.NewRateLimiter(0.001, 2)
	defer limiter.Stop()
	h := newTestRouter(t, limiter)

	for i := 0; i < 10; i++ {
		body := fmt.Sprintf(`{"data":{"eventType":"post_updated","post":{"id":"p%d","slug":"post-%d"}}}`, i, i)
		req := httptest.NewRequest(http.MethodPost, "/api/webhook/hashnode", strings.NewReader(body))
		req.RemoteAddr = "203.0.113.20:4000"
		if code := do(h, req).Code; code != http.StatusOK {
			t.Fatalf("webhook %d: got %d, want 200", i+1, code)
		}
	}
}

func TestManualRevalidationDropsCachedPage(t *testing.T) {
	h := newTestRouter(t, nil)

	if rr := do(h, httptest.NewRequest(http.MethodGet, "/about", nil)); rr.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("first request: X-Cache %q", rr.Header().Get("X-Cache"))
	}
	if rr := do(h, httptest.NewRequest(http.MethodGet, "/about", nil)); rr.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("second request: X-Cache %q", rr.Header().Get("X-Cache"))
	}

	req := httptest.NewRequest(http.MethodPost, "/api/revalidate", strings.NewReader(`{"path":"/about","secret":"s3cret"}`))
	req.Header.Set("Content-Type", "application/json")
	if rr := do(h, req); rr.Code != http.StatusOK {
		t.Fatalf("revalidate: got %d: %s", rr.Code, rr.Body.String())
	}

	if rr := do(h, httptest.NewRequest(http.MethodGet, "/about", nil)); rr.Header().Get("X-Cache") != "MISS" {
		t.Errorf("after revalidation: X-Cache %q, want MISS", rr.Header().Get("X-Cache"))
	}
}
