// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"devfolio/internal/blog"
	"devfolio/internal/models"
	"devfolio/internal/search"
)

// API limits.
const (
	maxSearchResults = 20
	defaultTagLimit  = 20
	maxTagLimit      = 100
)

// searchHit is one ranked search result.
type searchHit struct {
	Slug              string       `json:"slug"`
	Title             string       `json:"title"`
	Brief             string       `json:"brief"`
	CoverImage        string       `json:"coverImage,omitempty"`
	PublishedAt       time.Time    `json:"publishedAt"`
	ReadTimeInMinutes int          `json:"readTimeInMinutes"`
	Tags              []models.Tag `json:"tags"`
	Score             int          `json:"score"`
}

// Search handles GET /api/search?q=&limit=. The platform's full-text
// search supplies candidates which are re-ranked locally.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query, msg := validateSearchQuery(q.Get("q"))
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	limit := intParam(q.Get("limit"), search.DefaultLimit, maxSearchResults)

	posts, err := p.blog.SearchPosts(r.Context(), query, blog.MaxPageSize)
	if err != nil {
		writeError(w, http.StatusBadGateway, userMessage(err))
		return
	}

	ranked := search.Rank(posts, query, p.now(), limit)
	hits := make([]searchHit, len(ranked))
	for i, res := range ranked {
		hits[i] = searchHit{
			Slug:              res.Post.Slug,
			Title:             res.Post.Title,
			Brief:             res.Post.Brief,
			CoverImage:        res.Post.CoverImage,
			PublishedAt:       res.Post.PublishedAt,
			ReadTimeInMinutes: res.Post.ReadTimeInMinutes,
			Tags:              res.Post.Tags,
			Score:             res.Score,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": hits,
	})
}

// Stats handles GET /api/stats.
func (p *Public) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := p.blog.GetBlogStats(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, userMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Tags handles GET /api/tags?limit=.
func (p *Public) Tags(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r.URL.Query().Get("limit"), defaultTagLimit, maxTagLimit)
	tags, err := p.blog.GetPopularTags(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusBadGateway, userMessage(err))
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

// intParam parses a positive integer query value, falling back to def and
// capping at max.
func intParam(raw string, def, max int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
