// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"devfolio/internal/cache"
	"devfolio/internal/feed"
)

// Feed serves one generated document (/rss.xml, /sitemap.xml,
// /robots.txt). Documents are cached under the feeds tag; degraded ones
// built while the content API is down are served but not cached.
func (p *Public) Feed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", feed.CacheControl)
	key := pathKey(r)
	if p.serveCached(w, r, key) {
		return
	}

	doc, err := p.feeds.Generate(r.Context(), r.URL.Path)
	if err != nil {
		slog.Error("generate feed failed", "error", err, "path", r.URL.Path)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !doc.Degraded {
		p.store(r, key, doc.ContentType, doc.Body, cache.TagFeeds, cache.TagBlogPosts)
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Write(doc.Body)
}
