// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blog is the read-side data access layer over the content API.
// Each function builds query variables, runs one catalog query through the
// client, and converts the validated response into models. Failures are
// logged and returned as domain errors that page handlers turn into a
// "failed to load" state.
package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"devfolio/internal/contentapi"
	"devfolio/internal/markdown"
	"devfolio/internal/models"
)

// MaxPageSize is the largest page the content platform serves per request.
const MaxPageSize = 50

// Domain errors. Each wraps the underlying client error.
var (
	ErrNotFound    = errors.New("not found")
	ErrFetchPosts  = errors.New("Failed to fetch posts")
	ErrFetchPost   = errors.New("Failed to fetch post")
	ErrFetchSeries = errors.New("Failed to fetch series")
	ErrFetchTags   = errors.New("Failed to fetch tags")
	ErrSearch      = errors.New("Failed to search posts")
	ErrFetchStats  = errors.New("Failed to fetch blog stats")
	ErrFetchPage   = errors.New("Failed to fetch page")
)

// Querier runs a catalog query. *contentapi.Client implements it.
type Querier interface {
	Do(ctx context.Context, name contentapi.QueryName, vars map[string]any, out any) error
}

// Service exposes the typed data-access functions for one publication.
type Service struct {
	q    Querier
	host string
}

// NewService creates a Service reading from the publication at host.
func NewService(q Querier, host string) *Service {
	return &Service{q: q, host: host}
}

// Host returns the publication host this service reads from.
func (s *Service) Host() string {
	return s.host
}

// GetPosts returns one page of posts in platform order. first is clamped
// to [1, MaxPageSize]; after is the previous page's end cursor or "".
func (s *Service) GetPosts(ctx context.Context, first int, after string) (*models.PostConnection, error) {
	vars := map[string]any{
		"host":  s.host,
		"first": clampFirst(first),
		"after": cursor(after),
	}

	var resp contentapi.PostsResponse
	if err := s.q.Do(ctx, contentapi.QueryPosts, vars, &resp); err != nil {
		return nil, s.fail(ErrFetchPosts, err, "first", first, "after", after)
	}
	conn, err := resp.Parse()
	if err != nil {
		return nil, s.fail(ErrFetchPosts, err, "first", first, "after", after)
	}
	return conn, nil
}

// GetPostsByTag returns one page of posts carrying the tag slug.
func (s *Service) GetPostsByTag(ctx context.Context, tagSlug string, first int, after string) (*models.PostConnection, error) {
	vars := map[string]any{
		"host":     s.host,
		"first":    clampFirst(first),
		"after":    cursor(after),
		"tagSlugs": []string{tagSlug},
	}

	var resp contentapi.PostsResponse
	if err := s.q.Do(ctx, contentapi.QueryPostsByTag, vars, &resp); err != nil {
		return nil, s.fail(ErrFetchPosts, err, "tag", tagSlug)
	}
	conn, err := resp.Parse()
	if err != nil {
		return nil, s.fail(ErrFetchPosts, err, "tag", tagSlug)
	}
	return conn, nil
}

// GetPostBySlug returns the full post, or ErrNotFound.
func (s *Service) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	vars := map[string]any{"host": s.host, "slug": slug}

	var resp contentapi.PostResponse
	if err := s.q.Do(ctx, contentapi.QueryPostBySlug, vars, &resp); err != nil {
		return nil, s.fail(ErrFetchPost, err, "slug", slug)
	}
	post, err := resp.Parse()
	if err != nil {
		return nil, s.fail(ErrFetchPost, err, "slug", slug)
	}
	if post == nil {
		return nil, ErrNotFound
	}
	if err := markdown.Fill(&post.Content); err != nil {
		slog.Warn("markdown render failed", "slug", slug, "error", err)
	}
	return post, nil
}

// GetSeriesBySlug returns a series with its first page of posts, or
// ErrNotFound.
func (s *Service) GetSeriesBySlug(ctx context.Context, slug string, first int) (*models.Series, error) {
	vars := map[string]any{
		"host":  s.host,
		"slug":  slug,
		"first": clampFirst(first),
		"after": nil,
	}

	var resp contentapi.SeriesResponse
	if err := s.q.Do(ctx, contentapi.QuerySeriesBySlug, vars, &resp); err != nil {
		return nil, s.fail(ErrFetchSeries, err, "slug", slug)
	}
	series, err := resp.Parse()
	if err != nil {
		return nil, s.fail(ErrFetchSeries, err, "slug", slug)
	}
	if series == nil {
		return nil, ErrNotFound
	}
	if err := markdown.Fill(&series.Description); err != nil {
		slog.Warn("markdown render failed", "series", slug, "error", err)
	}
	return series, nil
}

// GetSeriesList returns up to first series of the publication.
func (s *Service) GetSeriesList(ctx context.Context, first int) ([]models.Series, error) {
	vars := map[string]any{"host": s.host, "first": clampFirst(first), "after": nil}

	var resp contentapi.SeriesListResponse
	if err := s.q.Do(ctx, contentapi.QuerySeriesList, vars, &resp); err != nil {
		return nil, s.fail(ErrFetchSeries, err)
	}
	list, err := resp.Parse()
	if err != nil {
		return nil, s.fail(ErrFetchSeries, err)
	}
	return list, nil
}

// SearchPosts runs the platform's full-text search over this publication.
// A blank query returns no results without calling the API.
func (s *Service) SearchPosts(ctx context.Context, query string, first int) ([]models.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Post{}, nil
	}

	var pub contentapi.PublicationResponse
	if err := s.q.Do(ctx, contentapi.QueryPublication, map[string]any{"host": s.host}, &pub); err != nil {
		return nil, s.fail(ErrSearch, err, "query", query)
	}
	pubID, err := pub.PublicationID()
	if err != nil {
		return nil, s.fail(ErrSearch, err, "query", query)
	}

	vars := map[string]any{
		"publicationId": pubID,
		"query":         query,
		"first":         clampFirst(first),
		"after":         nil,
	}
	var resp contentapi.SearchResponse
	if err := s.q.Do(ctx, contentapi.QuerySearchPosts, vars, &resp); err != nil {
		return nil, s.fail(ErrSearch, err, "query", query)
	}
	conn, err := resp.Parse()
	if err != nil {
		return nil, s.fail(ErrSearch, err, "query", query)
	}
	return conn.Posts, nil
}

// GetStaticPage returns a platform-managed static page, or ErrNotFound.
func (s *Service) GetStaticPage(ctx context.Context, slug string) (*models.StaticPage, error) {
	vars := map[string]any{"host": s.host, "slug": slug}

	var resp contentapi.StaticPageResponse
	if err := s.q.Do(ctx, contentapi.QueryStaticPage, vars, &resp); err != nil {
		return nil, s.fail(ErrFetchPage, err, "slug", slug)
	}
	page, err := resp.Parse()
	if err != nil {
		return nil, s.fail(ErrFetchPage, err, "slug", slug)
	}
	if page == nil {
		return nil, ErrNotFound
	}
	if err := markdown.Fill(&page.Content); err != nil {
		slog.Warn("markdown render failed", "slug", slug, "error", err)
	}
	return page, nil
}

// fail logs the underlying error and wraps it in the domain error.
func (s *Service) fail(domain error, err error, attrs ...any) error {
	args := append([]any{"error", err, "host", s.host, "timeout", contentapi.IsTimeout(err)}, attrs...)
	slog.Error(strings.ToLower(domain.Error()), args...)
	return fmt.Errorf("%w: %w", domain, err)
}

func clampFirst(first int) int {
	switch {
	case first < 1:
		return 1
	case first > MaxPageSize:
		return MaxPageSize
	default:
		return first
	}
}

// cursor maps an empty cursor to a GraphQL null.
func cursor(after string) any {
	if after == "" {
		return nil
	}
	return after
}
