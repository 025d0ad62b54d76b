// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"devfolio/internal/blog"
	"devfolio/internal/cache"
	"devfolio/internal/render"
	"devfolio/internal/search"
	"devfolio/internal/slug"
)

// sortOption is one entry of the listing's sort selector.
type sortOption struct {
	Value string
	Label string
}

var sortOptions = []sortOption{
	{search.SortNewest, "Newest"},
	{search.SortOldest, "Oldest"},
	{search.SortPopular, "Most viewed"},
	{search.SortReactions, "Most reactions"},
	{search.SortTitle, "Title"},
}

// BlogIndex renders /blog: one page of posts in platform order, narrowed
// by the q, tag, from, to and sort filters. Filters apply to the fetched
// page; a filtered listing fetches the largest page the platform serves.
func (p *Public) BlogIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := search.ParseFilter(q)
	after := q.Get("after")

	keyParams := filter.Values()
	if after != "" {
		keyParams.Set("after", after)
	}
	key := cache.Key(r.URL.Path, keyParams)
	if p.serveCached(w, r, key) {
		return
	}

	first := listPageSize
	if !filter.IsZero() {
		first = blog.MaxPageSize
	}

	data := &render.PageData{
		Title:   "Blog",
		Section: "blog",
		Path:    "/blog",
		Data: map[string]any{
			"Filter":      filter,
			"From":        q.Get("from"),
			"To":          q.Get("to"),
			"SortOptions": sortOptions,
		},
	}

	conn, err := p.blog.GetPosts(r.Context(), first, after)
	if err != nil {
		data.Data["Error"] = errorPanel(err, r.URL.RequestURI())
		p.renderPage(w, r, http.StatusBadGateway, "blog", data)
		return
	}

	data.Data["Posts"] = filter.Apply(conn.Posts)
	data.Data["AvailableTags"] = blog.AggregateTags(conn.Posts)
	if conn.PageInfo.HasNextPage && conn.PageInfo.EndCursor != "" {
		next := filter.Values()
		next.Set("after", conn.PageInfo.EndCursor)
		data.Data["NextURL"] = "/blog?" + next.Encode()
	}

	p.renderAndCache(w, r, key, "blog", data, cache.TagBlogPosts)
}

// Post renders a single post.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	if !slug.Valid(s) {
		p.NotFound(w, r)
		return
	}
	key := pathKey(r)
	if p.serveCached(w, r, key) {
		return
	}

	post, err := p.blog.GetPostBySlug(r.Context(), s)
	if errors.Is(err, blog.ErrNotFound) {
		p.NotFound(w, r)
		return
	}
	if err != nil {
		p.renderError(w, r, "blog", err)
		return
	}

	p.renderAndCache(w, r, key, "post", &render.PageData{
		Title:       post.Title,
		Description: post.Brief,
		Section:     "blog",
		Path:        "/blog/" + post.Slug,
		Data:        map[string]any{"Post": post},
	}, cache.PostTag(post.Slug))
}

// Tag renders the posts carrying one tag. Loosely typed tags redirect to
// their canonical slug.
func (p *Public) Tag(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "tag")
	if !slug.Valid(raw) {
		canonical := slug.Generate(raw)
		if canonical == "" || !slug.Valid(canonical) {
			p.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/blog/tag/"+url.PathEscape(canonical), http.StatusMovedPermanently)
		return
	}
	after := r.URL.Query().Get("after")
	var keyParams url.Values
	if after != "" {
		keyParams = url.Values{"after": {after}}
	}
	key := cache.Key(r.URL.Path, keyParams)
	if p.serveCached(w, r, key) {
		return
	}

	data := &render.PageData{
		Title:   "#" + raw,
		Section: "blog",
		Path:    "/blog/tag/" + raw,
		Data:    map[string]any{"Tag": raw},
	}

	conn, err := p.blog.GetPostsByTag(r.Context(), raw, listPageSize, after)
	if err != nil {
		data.Data["Error"] = errorPanel(err, r.URL.RequestURI())
		p.renderPage(w, r, http.StatusBadGateway, "tag", data)
		return
	}

	data.Data["Posts"] = conn.Posts
	if conn.PageInfo.HasNextPage && conn.PageInfo.EndCursor != "" {
		data.Data["NextURL"] = "/blog/tag/" + url.PathEscape(raw) + "?after=" + url.QueryEscape(conn.PageInfo.EndCursor)
	}

	p.renderAndCache(w, r, key, "tag", data, cache.TagTag(raw), cache.TagBlogPosts)
}

// SeriesIndex renders /blog/series. Until the publication has a series it
// shows a "coming soon" placeholder.
func (p *Public) SeriesIndex(w http.ResponseWriter, r *http.Request) {
	key := pathKey(r)
	if p.serveCached(w, r, key) {
		return
	}

	list, err := p.blog.GetSeriesList(r.Context(), seriesPageSize)
	if err != nil {
		// The placeholder is a valid page; it is just not cached.
		p.renderPage(w, r, http.StatusOK, "series_index", &render.PageData{
			Title: "Series", Section: "blog", Path: "/blog/series",
		})
		return
	}

	p.renderAndCache(w, r, key, "series_index", &render.PageData{
		Title:   "Series",
		Section: "blog",
		Path:    "/blog/series",
		Data:    map[string]any{"Series": list},
	}, cache.TagBlogPosts)
}

// Series renders one series with its posts.
func (p *Public) Series(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	if !slug.Valid(s) {
		p.NotFound(w, r)
		return
	}
	key := pathKey(r)
	if p.serveCached(w, r, key) {
		return
	}

	series, err := p.blog.GetSeriesBySlug(r.Context(), s, seriesPageSize)
	if errors.Is(err, blog.ErrNotFound) {
		p.NotFound(w, r)
		return
	}
	if err != nil {
		p.renderError(w, r, "blog", err)
		return
	}

	p.renderAndCache(w, r, key, "series", &render.PageData{
		Title:   series.Name,
		Section: "blog",
		Path:    "/blog/series/" + series.Slug,
		Data:    map[string]any{"Series": series},
	}, cache.SeriesTag(series.Slug), cache.TagBlogPosts)
}

// StaticPage renders a page managed on the content platform.
func (p *Public) StaticPage(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	if !slug.Valid(s) {
		p.NotFound(w, r)
		return
	}
	key := pathKey(r)
	if p.serveCached(w, r, key) {
		return
	}

	page, err := p.blog.GetStaticPage(r.Context(), s)
	if errors.Is(err, blog.ErrNotFound) {
		p.NotFound(w, r)
		return
	}
	if err != nil {
		p.renderError(w, r, "", err)
		return
	}

	p.renderAndCache(w, r, key, "page", &render.PageData{
		Title: page.Title,
		Path:  "/page/" + page.Slug,
		Data:  map[string]any{"Page": page},
	}, cache.PageTag(page.Slug))
}

// qrSize is the edge length of share QR codes in pixels.
const qrSize = 256

// PostQR serves a PNG QR code linking to the post's canonical URL. The post
// must exist; the image is cached with the post.
func (p *Public) PostQR(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	if !slug.Valid(s) {
		http.NotFound(w, r)
		return
	}
	key := pathKey(r)
	if p.serveCached(w, r, key) {
		return
	}

	post, err := p.blog.GetPostBySlug(r.Context(), s)
	if errors.Is(err, blog.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, userMessage(err), http.StatusBadGateway)
		return
	}

	png, err := qrcode.Encode(p.siteURL+"/blog/"+post.Slug, qrcode.Medium, qrSize)
	if err != nil {
		slog.Error("qr encode failed", "error", err, "slug", post.Slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	p.store(r, key, "image/png", png, cache.PostTag(post.Slug))

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
