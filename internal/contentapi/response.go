// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// response.go holds the wire shapes of the GraphQL responses and converts
// them into models after validation. The platform schema is not
// contractually stable, so nothing is trusted until Validate passes.
package contentapi

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"devfolio/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON names so errors match the GraphQL field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// check validates s and converts failures into a *ValidationError.
func check(entity string, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Entity: entity, Fields: map[string]string{"_": err.Error()}}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Namespace()] = "failed " + fe.Tag()
	}
	return &ValidationError{Entity: entity, Fields: fields}
}

// ---------- wire types ----------

type wireAuthor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Bio      *struct {
		Text string `json:"text"`
	} `json:"bio"`
	ProfilePicture   *string `json:"profilePicture"`
	SocialMediaLinks *struct {
		Twitter  string `json:"twitter"`
		GitHub   string `json:"github"`
		LinkedIn string `json:"linkedin"`
		Website  string `json:"website"`
	} `json:"socialMediaLinks"`
}

type wireTag struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required"`
}

type wireSeriesRef struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required"`
}

type wireContent struct {
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

type wirePost struct {
	ID         string       `json:"id" validate:"required"`
	Slug       string       `json:"slug" validate:"required"`
	Title      string       `json:"title" validate:"required"`
	Subtitle   *string      `json:"subtitle"`
	Brief      string       `json:"brief"`
	URL        string       `json:"url"`
	Content    *wireContent `json:"content"`
	CoverImage *struct {
		URL string `json:"url"`
	} `json:"coverImage"`
	PublishedAt       *time.Time     `json:"publishedAt" validate:"required"`
	UpdatedAt         *time.Time     `json:"updatedAt"`
	ReadTimeInMinutes int            `json:"readTimeInMinutes" validate:"gte=0"`
	Views             int            `json:"views" validate:"gte=0"`
	ReactionCount     int            `json:"reactionCount" validate:"gte=0"`
	ResponseCount     int            `json:"responseCount" validate:"gte=0"`
	Featured          bool           `json:"featured"`
	Bookmarked        bool           `json:"bookmarked"`
	Author            *wireAuthor    `json:"author"`
	Tags              []wireTag      `json:"tags" validate:"dive"`
	Series            *wireSeriesRef `json:"series"`
	Preferences       *struct {
		DisableComments bool `json:"disableComments"`
	} `json:"preferences"`
}

type wirePageInfo struct {
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor"`
}

type wirePostConnection struct {
	TotalDocuments int `json:"totalDocuments"`
	Edges          []struct {
		Cursor string   `json:"cursor"`
		Node   wirePost `json:"node"`
	} `json:"edges"`
	PageInfo wirePageInfo `json:"pageInfo"`
}

type wireSeries struct {
	ID          string       `json:"id" validate:"required"`
	Name        string       `json:"name" validate:"required"`
	Slug        string       `json:"slug" validate:"required"`
	Description *struct {
		Text string `json:"text"`
		HTML string `json:"html"`
	} `json:"description"`
	CoverImage *string             `json:"coverImage"`
	Author     *wireAuthor         `json:"author"`
	Posts      *wirePostConnection `json:"posts"`
}

// ---------- responses ----------

// PublicationResponse is the data of QueryPublication.
type PublicationResponse struct {
	Publication *struct {
		ID    string `json:"id" validate:"required"`
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"publication"`
}

// PublicationID returns the publication id after validation.
func (r *PublicationResponse) PublicationID() (string, error) {
	if r.Publication == nil {
		return "", &ValidationError{Entity: "publication missing"}
	}
	if err := check("publication", r.Publication); err != nil {
		return "", err
	}
	return r.Publication.ID, nil
}

// PostsResponse is the data of QueryPosts and QueryPostsByTag.
type PostsResponse struct {
	Publication *struct {
		ID    string             `json:"id"`
		Posts wirePostConnection `json:"posts"`
	} `json:"publication"`
}

// Parse validates the response and converts it. Posts that fail
// validation are dropped and logged; order is preserved.
func (r *PostsResponse) Parse() (*models.PostConnection, error) {
	if r.Publication == nil {
		return nil, &ValidationError{Entity: "publication missing"}
	}
	conn := parseConnection(&r.Publication.Posts)
	return conn, nil
}

// PostResponse is the data of QueryPostBySlug. Parse returns nil, nil when
// the post does not exist.
type PostResponse struct {
	Publication *struct {
		ID   string    `json:"id"`
		Post *wirePost `json:"post"`
	} `json:"publication"`
}

// Parse validates and converts the post.
func (r *PostResponse) Parse() (*models.Post, error) {
	if r.Publication == nil {
		return nil, &ValidationError{Entity: "publication missing"}
	}
	if r.Publication.Post == nil {
		return nil, nil
	}
	if err := check("post", r.Publication.Post); err != nil {
		return nil, err
	}
	p := convertPost(r.Publication.Post)
	return &p, nil
}

// SeriesResponse is the data of QuerySeriesBySlug. Parse returns nil, nil
// when the series does not exist.
type SeriesResponse struct {
	Publication *struct {
		ID     string      `json:"id"`
		Series *wireSeries `json:"series"`
	} `json:"publication"`
}

// Parse validates and converts the series with its first page of posts.
func (r *SeriesResponse) Parse() (*models.Series, error) {
	if r.Publication == nil {
		return nil, &ValidationError{Entity: "publication missing"}
	}
	ws := r.Publication.Series
	if ws == nil {
		return nil, nil
	}
	if err := check("series", ws); err != nil {
		return nil, err
	}
	s := convertSeries(ws)
	return &s, nil
}

// SeriesListResponse is the data of QuerySeriesList.
type SeriesListResponse struct {
	Publication *struct {
		ID         string `json:"id"`
		SeriesList struct {
			Edges []struct {
				Cursor string     `json:"cursor"`
				Node   wireSeries `json:"node"`
			} `json:"edges"`
			PageInfo wirePageInfo `json:"pageInfo"`
		} `json:"seriesList"`
	} `json:"publication"`
}

// Parse validates and converts the series list, dropping invalid entries.
func (r *SeriesListResponse) Parse() ([]models.Series, error) {
	if r.Publication == nil {
		return nil, &ValidationError{Entity: "publication missing"}
	}
	out := make([]models.Series, 0, len(r.Publication.SeriesList.Edges))
	for i := range r.Publication.SeriesList.Edges {
		ws := &r.Publication.SeriesList.Edges[i].Node
		if err := check("series", ws); err != nil {
			slog.Warn("dropping invalid series from response", "slug", ws.Slug, "error", err)
			continue
		}
		out = append(out, convertSeries(ws))
	}
	return out, nil
}

// SearchResponse is the data of QuerySearchPosts.
type SearchResponse struct {
	SearchPostsOfPublication *wirePostConnection `json:"searchPostsOfPublication"`
}

// Parse validates and converts the search results.
func (r *SearchResponse) Parse() (*models.PostConnection, error) {
	if r.SearchPostsOfPublication == nil {
		return nil, &ValidationError{Entity: "searchPostsOfPublication missing"}
	}
	return parseConnection(r.SearchPostsOfPublication), nil
}

// StaticPageResponse is the data of QueryStaticPage. Parse returns nil, nil
// when the page does not exist.
type StaticPageResponse struct {
	Publication *struct {
		ID         string `json:"id"`
		StaticPage *struct {
			ID      string       `json:"id" validate:"required"`
			Slug    string       `json:"slug" validate:"required"`
			Title   string       `json:"title" validate:"required"`
			Content *wireContent `json:"content"`
		} `json:"staticPage"`
	} `json:"publication"`
}

// Parse validates and converts the static page.
func (r *StaticPageResponse) Parse() (*models.StaticPage, error) {
	if r.Publication == nil {
		return nil, &ValidationError{Entity: "publication missing"}
	}
	sp := r.Publication.StaticPage
	if sp == nil {
		return nil, nil
	}
	if err := check("staticPage", sp); err != nil {
		return nil, err
	}
	page := &models.StaticPage{ID: sp.ID, Slug: sp.Slug, Title: sp.Title}
	if sp.Content != nil {
		page.Content = models.Content{Markdown: sp.Content.Markdown, HTML: sp.Content.HTML}
	}
	return page, nil
}

// ---------- conversion ----------

func parseConnection(wc *wirePostConnection) *models.PostConnection {
	conn := &models.PostConnection{
		Posts:          make([]models.Post, 0, len(wc.Edges)),
		PageInfo:       convertPageInfo(wc.PageInfo),
		TotalDocuments: wc.TotalDocuments,
	}
	for i := range wc.Edges {
		node := &wc.Edges[i].Node
		if err := check("post", node); err != nil {
			slog.Warn("dropping invalid post from response", "slug", node.Slug, "error", err)
			continue
		}
		conn.Posts = append(conn.Posts, convertPost(node))
	}
	return conn
}

func convertPageInfo(w wirePageInfo) models.PageInfo {
	pi := models.PageInfo{HasNextPage: w.HasNextPage}
	if w.EndCursor != nil {
		pi.EndCursor = *w.EndCursor
	}
	return pi
}

func convertPost(w *wirePost) models.Post {
	p := models.Post{
		ID:                w.ID,
		Slug:              w.Slug,
		Title:             w.Title,
		Brief:             w.Brief,
		URL:               w.URL,
		PublishedAt:       *w.PublishedAt,
		UpdatedAt:         w.UpdatedAt,
		ReadTimeInMinutes: w.ReadTimeInMinutes,
		Views:             w.Views,
		ReactionCount:     w.ReactionCount,
		ResponseCount:     w.ResponseCount,
		Featured:          w.Featured,
		Bookmarked:        w.Bookmarked,
		Tags:              make([]models.Tag, 0, len(w.Tags)),
	}
	if w.Subtitle != nil {
		p.Subtitle = *w.Subtitle
	}
	if w.Content != nil {
		p.Content = models.Content{Markdown: w.Content.Markdown, HTML: w.Content.HTML}
	}
	if w.CoverImage != nil {
		p.CoverImage = w.CoverImage.URL
	}
	if w.Author != nil {
		p.Author = convertAuthor(w.Author)
	}
	for _, t := range w.Tags {
		p.Tags = append(p.Tags, models.Tag{ID: t.ID, Name: t.Name, Slug: t.Slug})
	}
	if w.Series != nil {
		p.Series = &models.SeriesRef{ID: w.Series.ID, Name: w.Series.Name, Slug: w.Series.Slug}
	}
	if w.Preferences != nil {
		p.DisableComments = w.Preferences.DisableComments
	}
	return p
}

func convertAuthor(w *wireAuthor) models.Author {
	a := models.Author{ID: w.ID, Name: w.Name, Username: w.Username}
	if w.Bio != nil {
		a.Bio = w.Bio.Text
	}
	if w.ProfilePicture != nil {
		a.ProfilePicture = *w.ProfilePicture
	}
	if l := w.SocialMediaLinks; l != nil {
		a.Social = models.SocialLinks{Twitter: l.Twitter, GitHub: l.GitHub, LinkedIn: l.LinkedIn, Website: l.Website}
	}
	return a
}

func convertSeries(w *wireSeries) models.Series {
	s := models.Series{ID: w.ID, Name: w.Name, Slug: w.Slug}
	if w.Description != nil {
		s.Description = models.Content{Markdown: w.Description.Text, HTML: w.Description.HTML}
	}
	if w.CoverImage != nil {
		s.CoverImage = *w.CoverImage
	}
	if w.Author != nil {
		s.Author = convertAuthor(w.Author)
	}
	if w.Posts != nil {
		conn := parseConnection(w.Posts)
		s.Posts = conn.Posts
		s.PageInfo = conn.PageInfo
	} else {
		s.Posts = []models.Post{}
	}
	return s
}
