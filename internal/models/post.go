// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models holds the blog entities read from the content platform.
// Nothing here is persisted by this service; every value is derived from
// a GraphQL response and lives for the duration of a single request.
package models

import "time"

// Post is a published article. Slug is stable and is the only identifier
// used for routing.
type Post struct {
	ID                string     `json:"id"`
	Slug              string     `json:"slug"`
	Title             string     `json:"title"`
	Subtitle          string     `json:"subtitle,omitempty"`
	Brief             string     `json:"brief"`
	URL               string     `json:"url,omitempty"`
	Content           Content    `json:"content"`
	CoverImage        string     `json:"coverImage,omitempty"`
	PublishedAt       time.Time  `json:"publishedAt"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
	ReadTimeInMinutes int        `json:"readTimeInMinutes"`
	Author            Author     `json:"author"`
	Tags              []Tag      `json:"tags"`
	Series            *SeriesRef `json:"series,omitempty"`
	Views             int        `json:"views"`
	ReactionCount     int        `json:"reactionCount"`
	ResponseCount     int        `json:"responseCount"`
	Featured          bool       `json:"featured"`
	Bookmarked        bool       `json:"bookmarked"`
	DisableComments   bool       `json:"disableComments"`
}

// Content carries both the markdown source and the rendered HTML.
type Content struct {
	Markdown string `json:"markdown,omitempty"`
	HTML     string `json:"html,omitempty"`
}

// LastModified returns UpdatedAt when set, otherwise PublishedAt.
func (p *Post) LastModified() time.Time {
	if p.UpdatedAt != nil && p.UpdatedAt.After(p.PublishedAt) {
		return *p.UpdatedAt
	}
	return p.PublishedAt
}

// HasTag reports whether the post carries a tag with the given slug.
func (p *Post) HasTag(slug string) bool {
	for _, t := range p.Tags {
		if t.Slug == slug {
			return true
		}
	}
	return false
}

// Tag labels posts. PostsCount is accumulated over a fetched window of
// posts and is not an authoritative platform-wide count.
type Tag struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	PostsCount int    `json:"postsCount,omitempty"`
}

// Author is always embedded in a post or series, never fetched on its own.
type Author struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Username       string      `json:"username"`
	Bio            string      `json:"bio,omitempty"`
	ProfilePicture string      `json:"profilePicture,omitempty"`
	Social         SocialLinks `json:"socialMediaLinks"`
}

// SocialLinks are optional profile URLs.
type SocialLinks struct {
	Twitter  string `json:"twitter,omitempty"`
	GitHub   string `json:"github,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

// PageInfo is the cursor pagination state returned by the platform.
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor,omitempty"`
}

// PostConnection is one page of posts.
type PostConnection struct {
	Posts          []Post   `json:"posts"`
	PageInfo       PageInfo `json:"pageInfo"`
	TotalDocuments int      `json:"totalDocuments"`
}
