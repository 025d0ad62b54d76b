// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package feed renders the machine-readable documents of the site: the
// RSS 2.0 feed, the sitemaps.org sitemap and robots.txt.
package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"devfolio/internal/blog"
	"devfolio/internal/models"
)

// Document paths, relative to the site root.
const (
	RSSPath     = "/rss.xml"
	SitemapPath = "/sitemap.xml"
	RobotsPath  = "/robots.txt"
)

// Content types of the generated documents.
const (
	RSSContentType     = "application/rss+xml; charset=utf-8"
	SitemapContentType = "application/xml; charset=utf-8"
	RobotsContentType  = "text/plain; charset=utf-8"
)

// CacheControl lets shared caches keep documents for an hour and serve
// stale copies for a day while refreshing.
const CacheControl = "public, max-age=0, s-maxage=3600, stale-while-revalidate=86400"

// Site is the identity written into feeds. URL has no trailing slash.
type Site struct {
	URL         string
	Name        string
	Description string
	Author      string
	Language    string
}

func (s Site) link(path string) string {
	return s.URL + path
}

// ---------- RSS ----------

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	AtomNS  string     `xml:"xmlns:atom,attr"`
	DCNS    string     `xml:"xmlns:dc,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Generator     string    `xml:"generator"`
	AtomLink      atomLink  `xml:"atom:link"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        rssGUID  `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
	Description string   `xml:"description"`
	Creator     string   `xml:"dc:creator,omitempty"`
	Categories  []string `xml:"category"`
}

// RSS renders an RSS 2.0 channel with one item per post, in the given
// order. An empty post list yields a valid, empty channel.
func RSS(site Site, posts []models.Post) ([]byte, error) {
	ch := rssChannel{
		Title:       site.Name,
		Link:        site.link("/"),
		Description: site.Description,
		Language:    site.Language,
		Generator:   "devfolio",
		AtomLink:    atomLink{Href: site.link(RSSPath), Rel: "self", Type: "application/rss+xml"},
		Items:       make([]rssItem, 0, len(posts)),
	}

	var latest time.Time
	for _, p := range posts {
		link := site.link("/blog/" + p.Slug)
		item := rssItem{
			Title:       p.Title,
			Link:        link,
			GUID:        rssGUID{Value: link, IsPermaLink: true},
			PubDate:     p.PublishedAt.UTC().Format(time.RFC1123Z),
			Description: p.Brief,
			Creator:     p.Author.Name,
		}
		for _, t := range p.Tags {
			item.Categories = append(item.Categories, t.Name)
		}
		ch.Items = append(ch.Items, item)
		if p.PublishedAt.After(latest) {
			latest = p.PublishedAt
		}
	}
	if !latest.IsZero() {
		ch.LastBuildDate = latest.UTC().Format(time.RFC1123Z)
	}

	doc := rssDoc{
		Version: "2.0",
		AtomNS:  "http://www.w3.org/2005/Atom",
		DCNS:    "http://purl.org/dc/elements/1.1/",
		Channel: ch,
	}
	return marshal(doc)
}

// ---------- Sitemap ----------

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// staticPages are always present in the sitemap.
var staticPages = []sitemapURL{
	{Loc: "/", ChangeFreq: "weekly", Priority: "1.0"},
	{Loc: "/about", ChangeFreq: "monthly", Priority: "0.8"},
	{Loc: "/skills", ChangeFreq: "monthly", Priority: "0.8"},
	{Loc: "/contact", ChangeFreq: "yearly", Priority: "0.6"},
	{Loc: "/blog", ChangeFreq: "daily", Priority: "0.9"},
}

// Sitemap renders a sitemaps.org urlset with the static pages, one entry
// per post, and one per tag and series seen in posts.
func Sitemap(site Site, posts []models.Post, tags []models.Tag) ([]byte, error) {
	set := urlset{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, u := range staticPages {
		u.Loc = site.link(u.Loc)
		set.URLs = append(set.URLs, u)
	}

	seenSeries := make(map[string]bool)
	var series []string
	for _, p := range posts {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        site.link("/blog/" + p.Slug),
			LastMod:    p.LastModified().UTC().Format("2006-01-02"),
			ChangeFreq: "monthly",
			Priority:   "0.7",
		})
		if p.Series != nil && p.Series.Slug != "" && !seenSeries[p.Series.Slug] {
			seenSeries[p.Series.Slug] = true
			series = append(series, p.Series.Slug)
		}
	}
	for _, t := range tags {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        site.link("/blog/tag/" + t.Slug),
			ChangeFreq: "weekly",
			Priority:   "0.5",
		})
	}
	for _, slug := range series {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        site.link("/blog/series/" + slug),
			ChangeFreq: "weekly",
			Priority:   "0.5",
		})
	}
	return marshal(set)
}

// SitemapFromPosts derives the tag list from posts and renders the sitemap.
func SitemapFromPosts(site Site, posts []models.Post) ([]byte, error) {
	return Sitemap(site, posts, blog.AggregateTags(posts))
}

// ---------- robots.txt ----------

// Robots renders a robots.txt that allows crawling everything except the
// API and points to the sitemap.
func Robots(site Site) []byte {
	var b bytes.Buffer
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "Sitemap: %s\n", site.link(SitemapPath))
	return b.Bytes()
}

func marshal(v any) ([]byte, error) {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal feed: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
