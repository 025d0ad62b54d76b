// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package search

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"devfolio/internal/models"
)

// Sort orders for a filtered listing.
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPopular   = "popular"
	SortReactions = "reactions"
	SortTitle     = "title"
)

const dateLayout = "2006-01-02"

// Filter narrows a page of posts. Zero values disable each criterion.
type Filter struct {
	Query string
	Tags  []string // any-of, by slug
	From  time.Time
	To    time.Time // inclusive
	Sort  string
}

// ParseFilter reads a Filter from listing query parameters: q, tag
// (repeatable), from and to (YYYY-MM-DD) and sort. Unparseable dates and
// unknown sort orders are ignored.
func ParseFilter(v url.Values) Filter {
	f := Filter{
		Query: strings.TrimSpace(v.Get("q")),
		Sort:  SortNewest,
	}
	for _, t := range v["tag"] {
		if t = strings.TrimSpace(t); t != "" {
			f.Tags = append(f.Tags, t)
		}
	}
	if d, err := time.Parse(dateLayout, v.Get("from")); err == nil {
		f.From = d
	}
	if d, err := time.Parse(dateLayout, v.Get("to")); err == nil {
		f.To = d.Add(24*time.Hour - time.Nanosecond)
	}
	switch s := v.Get("sort"); s {
	case SortOldest, SortPopular, SortReactions, SortTitle:
		f.Sort = s
	}
	return f
}

// IsZero reports whether the filter leaves the listing unchanged apart
// from the default sort.
func (f Filter) IsZero() bool {
	return f.Query == "" && len(f.Tags) == 0 && f.From.IsZero() && f.To.IsZero() &&
		(f.Sort == "" || f.Sort == SortNewest)
}

// Values encodes the filter back into query parameters. Tags come out
// sorted and deduplicated, so equal filters encode identically.
func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	tags := append([]string(nil), f.Tags...)
	sort.Strings(tags)
	for i, t := range tags {
		if i > 0 && t == tags[i-1] {
			continue
		}
		v.Add("tag", t)
	}
	if !f.From.IsZero() {
		v.Set("from", f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		v.Set("to", f.To.Format(dateLayout))
	}
	if f.Sort != "" && f.Sort != SortNewest {
		v.Set("sort", f.Sort)
	}
	return v
}

// Apply returns the posts matching the filter in the requested order. The
// input slice is not modified.
func (f Filter) Apply(posts []models.Post) []models.Post {
	out := make([]models.Post, 0, len(posts))
	q := strings.ToLower(f.Query)
	for _, p := range posts {
		if q != "" && !matchesText(p, q) {
			continue
		}
		if len(f.Tags) > 0 && !hasAnyTag(p, f.Tags) {
			continue
		}
		if !f.From.IsZero() && p.PublishedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && p.PublishedAt.After(f.To) {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, less(out, f.Sort))
	return out
}

func matchesText(p models.Post, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Brief), q) ||
		strings.Contains(strings.ToLower(p.Author.Name), q) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t.Name), q) {
			return true
		}
	}
	return false
}

func hasAnyTag(p models.Post, slugs []string) bool {
	for _, s := range slugs {
		if p.HasTag(s) {
			return true
		}
	}
	return false
}

func less(posts []models.Post, order string) func(i, j int) bool {
	switch order {
	case SortOldest:
		return func(i, j int) bool { return posts[i].PublishedAt.Before(posts[j].PublishedAt) }
	case SortPopular:
		return func(i, j int) bool { return posts[i].Views > posts[j].Views }
	case SortReactions:
		return func(i, j int) bool { return posts[i].ReactionCount > posts[j].ReactionCount }
	case SortTitle:
		return func(i, j int) bool {
			return strings.ToLower(posts[i].Title) < strings.ToLower(posts[j].Title)
		}
	default:
		return func(i, j int) bool { return posts[i].PublishedAt.After(posts[j].PublishedAt) }
	}
}
