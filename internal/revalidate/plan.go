// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package revalidate

import (
	"context"
	"errors"
	"fmt"

	"devfolio/internal/cache"
	"devfolio/internal/feed"
)

// Invalidator drops cached pages. The cache stores implement it.
type Invalidator interface {
	InvalidatePath(ctx context.Context, path string, kind cache.Kind) (int, error)
	InvalidateTag(ctx context.Context, tag string) (int, error)
}

// Target is either a path (with its kind) or a cache tag.
type Target struct {
	Path string
	Kind cache.Kind
	Tag  string
}

// PathTarget targets a single path.
func PathTarget(path string, kind cache.Kind) Target {
	return Target{Path: path, Kind: kind}
}

// TagTarget targets a cache tag.
func TagTarget(tag string) Target {
	return Target{Tag: tag}
}

// Result is the human-readable outcome line for a target.
func (t Target) Result() string {
	if t.Tag != "" {
		return "Revalidated tag: " + t.Tag
	}
	return fmt.Sprintf("Revalidated path: %s (%s)", t.Path, t.Kind)
}

func (t Target) String() string {
	if t.Tag != "" {
		return "tag:" + t.Tag
	}
	return "path:" + t.Path + ":" + string(t.Kind)
}

// Plan is an ordered, duplicate-free list of targets.
type Plan []Target

func (p *Plan) add(targets ...Target) {
	for _, t := range targets {
		dup := false
		for _, existing := range *p {
			if existing == t {
				dup = true
				break
			}
		}
		if !dup {
			*p = append(*p, t)
		}
	}
}

// Strings returns each target in audit-log form.
func (p Plan) Strings() []string {
	out := make([]string, len(p))
	for i, t := range p {
		out[i] = t.String()
	}
	return out
}

// TouchesFeeds reports whether the plan invalidates a generated document.
func (p Plan) TouchesFeeds() bool {
	for _, t := range p {
		if t.Tag == cache.TagFeeds {
			return true
		}
		for _, path := range feed.Paths() {
			if t.Path == path {
				return true
			}
		}
	}
	return false
}

// Apply invalidates every target. All targets are attempted; the returned
// results list the targets that succeeded, and the error joins the
// failures.
func (p Plan) Apply(ctx context.Context, inv Invalidator) ([]string, error) {
	results := make([]string, 0, len(p))
	var errs []error
	for _, t := range p {
		var err error
		if t.Tag != "" {
			_, err = inv.InvalidateTag(ctx, t.Tag)
		} else {
			_, err = inv.InvalidatePath(ctx, t.Path, t.Kind)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t, err))
			continue
		}
		results = append(results, t.Result())
	}
	return results, errors.Join(errs...)
}

// FallbackPlan is revalidated when a manual request names no target.
func FallbackPlan() Plan {
	return Plan{
		PathTarget("/blog", cache.KindPage),
		PathTarget("/", cache.KindPage),
		PathTarget(feed.RSSPath, cache.KindPage),
		PathTarget(feed.SitemapPath, cache.KindPage),
		TagTarget(cache.TagBlogPosts),
		TagTarget(cache.TagLatestPosts),
	}
}

// PostPlan covers a published, updated or deleted post. A deleted post's
// own page is dropped through its post tag.
func PostPlan(slug string, tags []string, deleted bool) Plan {
	var p Plan
	if !deleted {
		p.add(PathTarget("/blog/"+slug, cache.KindPage))
	}
	p.add(
		PathTarget("/blog", cache.KindPage),
		PathTarget("/", cache.KindPage),
	)
	for _, t := range tags {
		p.add(PathTarget("/blog/tag/"+t, cache.KindPage))
	}
	p.add(
		PathTarget(feed.RSSPath, cache.KindPage),
		PathTarget(feed.SitemapPath, cache.KindPage),
		TagTarget(cache.TagBlogPosts),
		TagTarget(cache.TagLatestPosts),
		TagTarget(cache.PostTag(slug)),
	)
	for _, t := range tags {
		p.add(TagTarget(cache.TagTag(t)))
	}
	return p
}

// StaticPagePlan covers a platform static page change.
func StaticPagePlan(slug string) Plan {
	var p Plan
	p.add(
		PathTarget("/page/"+slug, cache.KindPage),
		PathTarget("/", cache.KindPage),
		PathTarget(feed.SitemapPath, cache.KindPage),
		TagTarget(cache.PageTag(slug)),
	)
	return p
}
