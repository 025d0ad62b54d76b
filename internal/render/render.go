// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public site.
// Pages are rendered into byte slices so handlers can store them in the
// page cache. HTMX requests receive only the "content" block.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

//go:embed templates/*.html
var siteFS embed.FS

// Site carries the identity every page shows.
type Site struct {
	Name            string
	URL             string
	Author          string
	Description     string
	GAMeasurementID string
}

// PageData holds all data passed to page templates.
type PageData struct {
	Title       string         // Page title for <title> tag
	Description string         // Meta description; defaults to the site description
	Section     string         // Active nav section ("home", "blog", ...)
	Path        string         // Request path, used for the canonical URL
	Site        Site           // Filled in by the renderer
	Data        map[string]any // Page-specific data
}

// ErrorPanel is the inline failure notice with a retry link.
type ErrorPanel struct {
	Message  string
	RetryURL string
}

// Renderer handles template parsing and execution for site pages.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
	site      Site
	now       func() time.Time
}

// New creates a Renderer by parsing every page template from the embedded
// filesystem, each paired with the base layout.
func New(site Site) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		site:      site,
		now:       time.Now,
	}
	r.funcMap = template.FuncMap{
		"activeClass": func(current, target string) string {
			if current == target {
				return "active"
			}
			return ""
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"isoDate": func(t time.Time) string {
			return t.UTC().Format("2006-01-02")
		},
		// safeHTML marks content HTML from the content platform as trusted.
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
		"pathEscape": url.PathEscape,
		"year": func() int {
			return r.now().Year()
		},
		"absURL": func(p string) string {
			return strings.TrimRight(r.site.URL, "/") + p
		},
		"contains": func(list []string, s string) bool {
			for _, v := range list {
				if v == s {
					return true
				}
			}
			return false
		},
	}

	pages, err := fs.Glob(siteFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob templates: %w", err)
	}

	for _, page := range pages {
		name := path.Base(page)
		if name == "base.html" {
			continue
		}
		tmplName := strings.TrimSuffix(name, ".html")

		tmpl, err := template.New("base.html").Funcs(r.funcMap).ParseFS(
			siteFS, "templates/base.html", page,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// Has reports whether a page template exists.
func (rn *Renderer) Has(name string) bool {
	_, ok := rn.templates[name]
	return ok
}

// Render executes the named page. When partial is true only the "content"
// block is rendered.
func (rn *Renderer) Render(name string, partial bool, data *PageData) ([]byte, error) {
	tmpl, ok := rn.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	if data.Data == nil {
		data.Data = map[string]any{}
	}
	data.Site = rn.site
	if data.Description == "" {
		data.Description = rn.site.Description
	}

	execName := "base.html"
	if partial {
		execName = "content"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Page renders a page straight to the response. Use Render when the output
// should also be cached.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	body, err := rn.Render(name, IsHTMX(r), data)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

// IsHTMX returns true if the request was made by HTMX (has HX-Request header).
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
