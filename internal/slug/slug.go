// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug normalizes and checks the slugs used in blog routes.
package slug

import (
	"regexp"
	"strings"
)

// MaxLen bounds route slugs; longer values are rejected without a lookup.
const MaxLen = 250

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, space or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// valid is the shape of a slug the content platform can issue.
	valid = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9_-]*[a-z0-9])?$`)
)

// Generate converts a title or a loosely typed tag ("Go Lang", "GO") into
// its canonical slug form ("go-lang", "go").
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.Join(strings.Fields(result), "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Valid reports whether s can be a platform slug. Route handlers answer 404
// for anything else without calling the content API.
func Valid(s string) bool {
	return len(s) <= MaxLen && valid.MatchString(s)
}
