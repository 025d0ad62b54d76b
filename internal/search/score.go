// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package search ranks and filters an already-fetched window of posts.
// It never replaces the platform's full-text search: results are bounded
// by how many posts the caller loaded into memory.
package search

import (
	"sort"
	"strings"
	"time"

	"devfolio/internal/models"
)

// DefaultLimit is the number of results Rank keeps when limit <= 0.
const DefaultLimit = 8

// Score weights.
const (
	weightTitleMatch  = 10
	weightTitleWord   = 5
	weightBriefMatch  = 3
	weightBriefWord   = 2
	weightTag         = 4
	weightAuthor      = 2
	weightRecent      = 1
	weightVeryRecent  = 1
	weightMediumRead  = 1
	minMediumReadTime = 3
	maxMediumReadTime = 15
)

// Score returns the relevance of post for query at time now. Matching is
// case-insensitive. Recency and read-time boosts only apply to posts that
// match the query textually, so a post with no match always scores 0.
func Score(post models.Post, query string, now time.Time) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}
	words := strings.Fields(q)
	title := strings.ToLower(post.Title)
	brief := strings.ToLower(post.Brief)

	score := 0
	if strings.Contains(title, q) {
		score += weightTitleMatch
	}
	for _, w := range words {
		if strings.Contains(title, w) {
			score += weightTitleWord
		}
	}
	if strings.Contains(brief, q) {
		score += weightBriefMatch
	}
	for _, w := range words {
		if strings.Contains(brief, w) {
			score += weightBriefWord
		}
	}
	for _, t := range post.Tags {
		if matchesAny(strings.ToLower(t.Name), q, words) {
			score += weightTag
		}
	}
	if post.Author.Name != "" && matchesAny(strings.ToLower(post.Author.Name), q, words) {
		score += weightAuthor
	}

	if score == 0 {
		return 0
	}

	age := now.Sub(post.PublishedAt)
	if age < 30*24*time.Hour {
		score += weightRecent
	}
	if age < 7*24*time.Hour {
		score += weightVeryRecent
	}
	if post.ReadTimeInMinutes >= minMediumReadTime && post.ReadTimeInMinutes <= maxMediumReadTime {
		score += weightMediumRead
	}
	return score
}

func matchesAny(s, query string, words []string) bool {
	if strings.Contains(s, query) {
		return true
	}
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Result is a post with its score.
type Result struct {
	Post  models.Post `json:"post"`
	Score int         `json:"score"`
}

// Rank scores posts against query, drops non-matches and returns the top
// limit results by descending score. Ties keep input order.
func Rank(posts []models.Post, query string, now time.Time, limit int) []Result {
	if limit <= 0 {
		limit = DefaultLimit
	}
	results := make([]Result, 0, len(posts))
	for _, p := range posts {
		if s := Score(p, query, now); s > 0 {
			results = append(results, Result{Post: p, Score: s})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
