// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown renders post markdown to HTML with goldmark. The content
// platform normally returns pre-rendered HTML; this is used when a response
// only carries the markdown source (static pages, series descriptions and
// some webhook-triggered refetches).
package markdown

import (
	"bytes"
	"strings"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"devfolio/internal/models"
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Footnote,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		// Posts are authored by the site owner and may embed raw HTML widgets.
		html.WithUnsafe(),
	),
)

// ToHTML converts Markdown source into HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Fill renders c.Markdown into c.HTML when HTML is empty. It is a no-op
// when HTML is already present or there is no markdown to render.
func Fill(c *models.Content) error {
	if strings.TrimSpace(c.HTML) != "" || strings.TrimSpace(c.Markdown) == "" {
		return nil
	}
	out, err := ToHTML(c.Markdown)
	if err != nil {
		return err
	}
	c.HTML = out
	return nil
}
