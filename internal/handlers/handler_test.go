// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// The content API is replaced by an in-memory fake; the database-backed
// newsletter test is skipped when PostgreSQL is unavailable.
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"

	"devfolio/internal/blog"
	"devfolio/internal/cache"
	"devfolio/internal/database"
	"devfolio/internal/feed"
	"devfolio/internal/models"
	"devfolio/internal/render"
)

// fakeBlog implements Blog over a fixed set of posts.
type fakeBlog struct {
	mu     sync.Mutex
	posts  []models.Post
	series map[string]*models.Series
	pages  map[string]*models.StaticPage
	err    error // returned by every call when set
	calls  int
}

func (f *fakeBlog) hit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeBlog) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeBlog) GetPosts(_ context.Context, first int, after string) (*models.PostConnection, error) {
	if err := f.hit(); err != nil {
		return nil, fmt.Errorf("%w: %w", blog.ErrFetchPosts, err)
	}
	start := 0
	if after != "" {
		fmt.Sscanf(after, "cursor-%d", &start)
	}
	end := min(start+first, len(f.posts))
	if start > end {
		start = end
	}
	conn := &models.PostConnection{Posts: f.posts[start:end], TotalDocuments: len(f.posts)}
	if end < len(f.posts) {
		conn.PageInfo = models.PageInfo{HasNextPage: true, EndCursor: fmt.Sprintf("cursor-%d", end)}
	}
	return conn, nil
}

func (f *fakeBlog) GetPostsByTag(ctx context.Context, tagSlug string, first int, after string) (*models.PostConnection, error) {
	if err := f.hit(); err != nil {
		return nil, fmt.Errorf("%w: %w", blog.ErrFetchPosts, err)
	}
	var out []models.Post
	for _, p := range f.posts {
		if p.HasTag(tagSlug) {
			out = append(out, p)
		}
	}
	return &models.PostConnection{Posts: out, TotalDocuments: len(out)}, nil
}

func (f *fakeBlog) GetPostBySlug(_ context.Context, slug string) (*models.Post, error) {
	if err := f.hit(); err != nil {
		return nil, fmt.Errorf("%w: %w", blog.ErrFetchPost, err)
	}
	for i := range f.posts {
		if f.posts[i].Slug == slug {
			p := f.posts[i]
			return &p, nil
		}
	}
	return nil, blog.ErrNotFound
}

func (f *fakeBlog) GetSeriesBySlug(_ context.Context, slug string, _ int) (*models.Series, error) {
	if err := f.hit(); err != nil {
		return nil, fmt.Errorf("%w: %w", blog.ErrFetchSeries, err)
	}
	if s, ok := f.series[slug]; ok {
		return s, nil
	}
	return nil, blog.ErrNotFound
}

func (f *fakeBlog) GetSeriesList(_ context.Context, _ int) ([]models.Series, error) {
	if err := f.hit(); err != nil {
		return nil, fmt.Errorf("%w: %w", blog.ErrFetchSeries, err)
	}
	var out []models.Series
	for _, s := range f.series {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeBlog) SearchPosts(_ context.Context, query string, _ int) ([]models.Post, error) {
	if err := f.hit(); err != nil {
		return nil, fmt.Errorf("%w: %w", blog.ErrSearch, err)
	}
	var out []models.Post
	for _, p := range f.posts {
		if strings.Contains(strings.ToLower(p.Title+" "+p.Brief), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeBlog) GetStaticPage(_ context.Context, slug string) (*models.StaticPage, error) {
	if err := f.hit(); err != nil {
		return nil, fmt.Errorf("%w: %w", blog.ErrFetchPage, err)
	}
	if p, ok := f.pages[slug]; ok {
		return p, nil
	}
	return nil, blog.ErrNotFound
}

func (f *fakeBlog) GetPopularTags(_ context.Context, limit int) ([]models.Tag, error) {
	if err := f.hit(); err != nil {
		return nil, fmt.Errorf("%w: %w", blog.ErrFetchTags, err)
	}
	tags := blog.AggregateTags(f.posts)
	if len(tags) > limit {
		tags = tags[:limit]
	}
	return tags, nil
}

func (f *fakeBlog) GetBlogStats(_ context.Context) (*models.BlogStats, error) {
	if err := f.hit(); err != nil {
		return nil, fmt.Errorf("%w: %w", blog.ErrFetchStats, err)
	}
	stats := blog.ComputeStats(&models.PostConnection{Posts: f.posts, TotalDocuments: len(f.posts)})
	return &stats, nil
}

func (f *fakeBlog) GetOverview(ctx context.Context, latest, tags int) (*blog.Overview, error) {
	conn, err := f.GetPosts(ctx, latest, "")
	if err != nil {
		return nil, err
	}
	sample, err := f.GetPosts(ctx, blog.StatsSampleSize, "")
	if err != nil {
		return nil, err
	}
	stats := blog.ComputeStats(sample)
	t := blog.AggregateTags(sample.Posts)
	if len(t) > tags {
		t = t[:tags]
	}
	return &blog.Overview{Latest: conn.Posts, Stats: &stats, Tags: t}, nil
}

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

// samplePosts returns n posts, newest first, tagged "go" and alternately
// "web" or "ops".
func samplePosts(n int) []models.Post {
	posts := make([]models.Post, n)
	for i := range posts {
		second := "web"
		if i%2 == 1 {
			second = "ops"
		}
		posts[i] = models.Post{
			ID:                fmt.Sprintf("p%d", i),
			Slug:              fmt.Sprintf("post-%d", i),
			Title:             fmt.Sprintf("Post number %d", i),
			Brief:             "Notes about Go services",
			Content:           models.Content{HTML: fmt.Sprintf("<p>Body %d</p>", i)},
			PublishedAt:       testNow.AddDate(0, 0, -i-1),
			ReadTimeInMinutes: 5,
			Views:             100 - i,
			Author:            models.Author{Name: "Ada"},
			Tags: []models.Tag{
				{ID: "t-go", Name: "Go", Slug: "go"},
				{ID: "t-" + second, Name: strings.ToUpper(second[:1]) + second[1:], Slug: second},
			},
		}
	}
	return posts
}

type testEnv struct {
	blog  *fakeBlog
	cache *cache.MemoryStore
	subs  *fakeSubscribers
	h     *Public
	mux   http.Handler
}

// newTestEnv builds a Public handler group over the fake blog and an
// in-memory page cache, mounted on a chi router like production.
func newTestEnv(t *testing.T, fb *fakeBlog) *testEnv {
	t.Helper()

	rn, err := render.New(render.Site{
		Name:        "devfolio",
		URL:         "https://devfolio.example",
		Author:      "Ada",
		Description: "Test site",
	})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	store := cache.NewMemoryStore(time.Hour)
	subs := &fakeSubscribers{}
	h := NewPublic(Config{
		Blog:        fb,
		Renderer:    rn,
		Cache:       store,
		Feeds:       feed.NewGenerator(fb, feed.Site{URL: "https://devfolio.example", Name: "devfolio", Language: "en"}),
		Subscribers: subs,
		SiteURL:     "https://devfolio.example",
		Now:         func() time.Time { return testNow },
	})

	r := chi.NewRouter()
	r.Get("/", h.Home)
	r.Get("/about", h.About)
	r.Get("/skills", h.Skills)
	r.Get("/contact", h.Contact)
	r.Get("/blog", h.BlogIndex)
	r.Get("/blog/series", h.SeriesIndex)
	r.Get("/blog/series/{slug}", h.Series)
	r.Get("/blog/tag/{tag}", h.Tag)
	r.Get("/blog/{slug}", h.Post)
	r.Get("/blog/{slug}/qr.png", h.PostQR)
	r.Get("/page/{slug}", h.StaticPage)
	r.Get("/rss.xml", h.Feed)
	r.Get("/sitemap.xml", h.Feed)
	r.Get("/robots.txt", h.Feed)
	r.Get("/api/search", h.Search)
	r.Get("/api/stats", h.Stats)
	r.Get("/api/tags", h.Tags)
	r.Post("/api/newsletter", h.Newsletter)
	r.Get("/health", h.Health)
	r.NotFound(h.NotFound)

	return &testEnv{blog: fb, cache: store, subs: subs, h: h, mux: r}
}

func (e *testEnv) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	e.mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

// fakeSubscribers records sign-ups in memory.
type fakeSubscribers struct {
	mu     sync.Mutex
	emails []string
	err    error
}

func (f *fakeSubscribers) Subscribe(_ context.Context, email, source string) (*models.Subscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.emails = append(f.emails, email+"|"+source)
	return &models.Subscriber{Email: email, Source: source}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "devfolio")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "devfolio")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
