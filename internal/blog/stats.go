// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"devfolio/internal/models"
)

// StatsSampleSize is how many recent posts tag and stats aggregation read.
// The platform exposes no aggregate endpoint, so both are computed over
// this window.
const StatsSampleSize = MaxPageSize

// GetPopularTags returns the tags of the most recent posts, ordered by how
// many of those posts carry them. limit <= 0 returns all of them.
func (s *Service) GetPopularTags(ctx context.Context, limit int) ([]models.Tag, error) {
	conn, err := s.GetPosts(ctx, StatsSampleSize, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchTags, err)
	}
	tags := AggregateTags(conn.Posts)
	if limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	return tags, nil
}

// GetBlogStats aggregates views, reactions and distinct tags over the most
// recent posts.
func (s *Service) GetBlogStats(ctx context.Context) (*models.BlogStats, error) {
	conn, err := s.GetPosts(ctx, StatsSampleSize, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchStats, err)
	}
	stats := ComputeStats(conn)
	return &stats, nil
}

// AggregateTags counts tag occurrences across posts. The result is sorted
// by count descending, then by name.
func AggregateTags(posts []models.Post) []models.Tag {
	bySlug := make(map[string]*models.Tag)
	var order []string
	for _, p := range posts {
		for _, t := range p.Tags {
			if t.Slug == "" {
				continue
			}
			if existing, ok := bySlug[t.Slug]; ok {
				existing.PostsCount++
				continue
			}
			tag := t
			tag.PostsCount = 1
			bySlug[t.Slug] = &tag
			order = append(order, t.Slug)
		}
	}

	tags := make([]models.Tag, 0, len(order))
	for _, slug := range order {
		tags = append(tags, *bySlug[slug])
	}
	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].PostsCount != tags[j].PostsCount {
			return tags[i].PostsCount > tags[j].PostsCount
		}
		return tags[i].Name < tags[j].Name
	})
	return tags
}

// ComputeStats sums the counters of a page of posts. TotalPosts prefers
// the platform's document count; the other totals cover only the sample.
func ComputeStats(conn *models.PostConnection) models.BlogStats {
	stats := models.BlogStats{SampleSize: len(conn.Posts)}
	distinct := make(map[string]struct{})
	for _, p := range conn.Posts {
		stats.TotalViews += p.Views
		stats.TotalReactions += p.ReactionCount
		for _, t := range p.Tags {
			key := t.ID
			if key == "" {
				key = t.Slug
			}
			distinct[key] = struct{}{}
		}
	}
	stats.TotalTags = len(distinct)

	stats.TotalPosts = len(conn.Posts)
	if conn.TotalDocuments > stats.TotalPosts {
		stats.TotalPosts = conn.TotalDocuments
	}
	stats.Approximate = conn.PageInfo.HasNextPage || stats.TotalPosts > stats.SampleSize
	return stats
}

// Overview is the data behind the home page.
type Overview struct {
	Latest []models.Post
	Stats  *models.BlogStats
	Tags   []models.Tag
}

// GetOverview fetches the latest posts and the stats sample concurrently,
// then derives the blog stats and popular tags from that one sample. The
// first failure cancels the other fetch.
func (s *Service) GetOverview(ctx context.Context, latest, tags int) (*Overview, error) {
	var ov Overview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		conn, err := s.GetPosts(gctx, latest, "")
		if err != nil {
			return err
		}
		ov.Latest = conn.Posts
		return nil
	})
	g.Go(func() error {
		conn, err := s.GetPosts(gctx, StatsSampleSize, "")
		if err != nil {
			return fmt.Errorf("%w: %w", ErrFetchStats, err)
		}
		stats := ComputeStats(conn)
		ov.Stats = &stats
		ov.Tags = AggregateTags(conn.Posts)
		if tags > 0 && len(ov.Tags) > tags {
			ov.Tags = ov.Tags[:tags]
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ov, nil
}
