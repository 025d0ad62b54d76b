// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// SeriesRef is the back-reference a post carries to its series.
type SeriesRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Series is an ordered collection of posts.
type Series struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description Content  `json:"description"`
	CoverImage  string   `json:"coverImage,omitempty"`
	Author      Author   `json:"author"`
	Posts       []Post   `json:"posts"`
	PageInfo    PageInfo `json:"pageInfo"`
}

// StaticPage is a standalone page managed on the content platform.
type StaticPage struct {
	ID      string  `json:"id"`
	Slug    string  `json:"slug"`
	Title   string  `json:"title"`
	Content Content `json:"content"`
}

// BlogStats summarises a bounded sample of posts. SampleSize is the number
// of posts the totals were computed over; when Approximate is true the
// totals only cover that sample, not the whole publication.
type BlogStats struct {
	TotalPosts     int  `json:"totalPosts"`
	TotalViews     int  `json:"totalViews"`
	TotalReactions int  `json:"totalReactions"`
	TotalTags      int  `json:"totalTags"`
	SampleSize     int  `json:"sampleSize"`
	Approximate    bool `json:"approximate"`
}
