// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"devfolio/internal/blog"
	"devfolio/internal/models"
	"devfolio/internal/search"
)

// PostLister is the slice of the blog service the generator needs.
type PostLister interface {
	GetPosts(ctx context.Context, first int, after string) (*models.PostConnection, error)
}

// Document is a generated file ready to serve or upload. Degraded
// documents were built without posts because the content API failed; they
// are served but neither cached nor mirrored.
type Document struct {
	Path        string
	ContentType string
	Body        []byte
	Degraded    bool
}

// Generator builds documents from the most recent posts. When the content
// API is unavailable it degrades to documents without posts instead of
// failing.
type Generator struct {
	posts PostLister
	site  Site
}

// NewGenerator creates a Generator.
func NewGenerator(posts PostLister, site Site) *Generator {
	return &Generator{posts: posts, site: site}
}

// Paths lists every document the generator can build.
func Paths() []string {
	return []string{RSSPath, SitemapPath, RobotsPath}
}

// Generate builds the document at path.
func (g *Generator) Generate(ctx context.Context, path string) (*Document, error) {
	switch path {
	case RSSPath:
		posts, ok := g.recentPosts(ctx, path)
		body, err := RSS(g.site, posts)
		if err != nil {
			return nil, err
		}
		return &Document{Path: path, ContentType: RSSContentType, Body: body, Degraded: !ok}, nil
	case SitemapPath:
		posts, ok := g.recentPosts(ctx, path)
		body, err := SitemapFromPosts(g.site, posts)
		if err != nil {
			return nil, err
		}
		return &Document{Path: path, ContentType: SitemapContentType, Body: body, Degraded: !ok}, nil
	case RobotsPath:
		return &Document{Path: path, ContentType: RobotsContentType, Body: Robots(g.site)}, nil
	default:
		return nil, fmt.Errorf("feed: unknown document %q", path)
	}
}

func (g *Generator) recentPosts(ctx context.Context, path string) ([]models.Post, bool) {
	conn, err := g.posts.GetPosts(ctx, blog.MaxPageSize, "")
	if err != nil {
		slog.Warn("feed generated without posts", "path", path, "error", err)
		return nil, false
	}
	return conn.Posts, true
}

// Uploader stores a public object. *storage.Client implements it.
type Uploader interface {
	Put(ctx context.Context, key, contentType, cacheControl string, body []byte) error
}

// Mirror uploads regenerated documents to object storage. Bursts of
// Schedule calls are collapsed into one upload.
type Mirror struct {
	gen       *Generator
	up        Uploader
	debouncer *search.Debouncer
	timeout   time.Duration
}

// NewMirror creates a Mirror. debouncer controls how long Schedule waits
// for further calls before syncing.
func NewMirror(gen *Generator, up Uploader, debouncer *search.Debouncer) *Mirror {
	return &Mirror{gen: gen, up: up, debouncer: debouncer, timeout: time.Minute}
}

// Sync generates and uploads every document. All documents are attempted;
// the returned error joins the individual failures.
func (m *Mirror) Sync(ctx context.Context) error {
	var errs []error
	for _, path := range Paths() {
		doc, err := m.gen.Generate(ctx, path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if doc.Degraded {
			errs = append(errs, fmt.Errorf("feed: %s not mirrored: content API unavailable", path))
			continue
		}
		key := path[1:]
		if err := m.up.Put(ctx, key, doc.ContentType, CacheControl, doc.Body); err != nil {
			errs = append(errs, err)
			continue
		}
		slog.Debug("feed mirrored", "key", key, "bytes", len(doc.Body))
	}
	return errors.Join(errs...)
}

// Schedule requests a Sync once no further Schedule call arrives within
// the debounce delay.
func (m *Mirror) Schedule() {
	m.debouncer.Trigger(func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		if err := m.Sync(ctx); err != nil {
			slog.Error("feed mirror sync failed", "error", err)
			return
		}
		slog.Info("feed mirror synced")
	})
}

// Flush runs a scheduled sync now, if one is pending. It is called on
// shutdown so a webhook received just before exit still reaches storage.
func (m *Mirror) Flush() bool {
	return m.debouncer.Flush()
}
