// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"strings"
	"testing"

	"devfolio/internal/models"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "heading gets id", in: "# Hello World", want: `<h1 id="hello-world">Hello World</h1>`},
		{name: "table", in: "| a |\n|---|\n| 1 |", want: "<table>"},
		{name: "strikethrough", in: "~~gone~~", want: "<del>gone</del>"},
		{name: "raw html passes through", in: `<div class="embed">x</div>`, want: `<div class="embed">x</div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.in)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("ToHTML(%q) = %q, want it to contain %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFill(t *testing.T) {
	t.Run("renders when html missing", func(t *testing.T) {
		c := models.Content{Markdown: "**bold**"}
		if err := Fill(&c); err != nil {
			t.Fatalf("Fill: %v", err)
		}
		if !strings.Contains(c.HTML, "<strong>bold</strong>") {
			t.Errorf("HTML: got %q", c.HTML)
		}
	})

	t.Run("keeps existing html", func(t *testing.T) {
		c := models.Content{Markdown: "**bold**", HTML: "<p>server rendered</p>"}
		Fill(&c)
		if c.HTML != "<p>server rendered</p>" {
			t.Errorf("HTML should be untouched, got %q", c.HTML)
		}
	})

	t.Run("empty markdown", func(t *testing.T) {
		c := models.Content{}
		Fill(&c)
		if c.HTML != "" {
			t.Errorf("HTML should stay empty, got %q", c.HTML)
		}
	})
}
