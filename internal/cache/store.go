// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// DefaultPageTTL is how long a rendered page stays cached. It is the
// revalidation window: stale pages are regenerated at most this late.
const DefaultPageTTL = time.Hour

// Kind selects how InvalidatePath matches keys.
type Kind string

const (
	// KindPage drops the exact path and its query-string variants.
	KindPage Kind = "page"
	// KindLayout drops every key under the path prefix.
	KindLayout Kind = "layout"
)

// ParseKind maps a request value to a Kind, defaulting to KindPage.
func ParseKind(s string) Kind {
	if Kind(strings.ToLower(strings.TrimSpace(s))) == KindLayout {
		return KindLayout
	}
	return KindPage
}

// Entry is a cached response body with its content type.
type Entry struct {
	ContentType string
	Body        []byte
}

// Store is a tag-aware page cache. Get and Set are best-effort and log
// their own errors; invalidation reports failures so callers can surface
// them.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool)
	Set(ctx context.Context, key string, e Entry, tags ...string)
	InvalidatePath(ctx context.Context, path string, kind Kind) (int, error)
	InvalidateTag(ctx context.Context, tag string) (int, error)
	InvalidateAll(ctx context.Context) error
}

// Key returns the cache key for a page: the path, plus the encoded query
// when q is non-empty. Callers pass only the parameters the page reads, so
// unrelated query strings share one entry. Encode sorts by parameter name.
func Key(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// Cache tags shared by handlers and revalidation.
const (
	TagBlogPosts   = "blog-posts"
	TagLatestPosts = "latest-posts"
	TagFeeds       = "feeds"
)

// PostTag labels the page of a single post.
func PostTag(slug string) string { return "post-" + slug }

// TagTag labels the listing of a tag.
func TagTag(slug string) string { return "tag-" + slug }

// SeriesTag labels the page of a series.
func SeriesTag(slug string) string { return "series-" + slug }

// PageTag labels a platform static page.
func PageTag(slug string) string { return "page-" + slug }

// matchPath reports whether key falls under path for the given kind.
func matchPath(key, path string, kind Kind) bool {
	if key == path || strings.HasPrefix(key, path+"?") {
		return true
	}
	if kind != KindLayout {
		return false
	}
	if path == "/" {
		return true
	}
	return strings.HasPrefix(key, strings.TrimSuffix(path, "/")+"/")
}

var (
	_ Store = (*ValkeyStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
