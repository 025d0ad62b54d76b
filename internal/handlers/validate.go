// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// maxSearchQueryLen bounds /api/search queries.
const maxSearchQueryLen = 200

var validate = validator.New(validator.WithRequiredStructEnabled())

// newsletterRequest is the body of POST /api/newsletter.
type newsletterRequest struct {
	Email     string `json:"email" validate:"required,max=254"`
	Source    string `json:"source" validate:"omitempty,max=64"`
	Timestamp string `json:"timestamp"`
}

// validateNewsletter normalizes the request in place and returns the first
// error message found, or "".
func validateNewsletter(req *newsletterRequest) string {
	req.Email = strings.TrimSpace(req.Email)
	req.Source = strings.TrimSpace(req.Source)

	if err := validate.Struct(req); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			switch {
			case fe.Field() == "Email" && fe.Tag() == "required":
				return "Email is required."
			case fe.Field() == "Email":
				return "Email is too long (max 254 characters)."
			case fe.Field() == "Source":
				return "Source is too long (max 64 characters)."
			}
		}
		return "Invalid request."
	}
	if !strings.Contains(req.Email, "@") {
		return "Please enter a valid email address."
	}
	if req.Source == "" {
		req.Source = "website"
	}
	return ""
}

// validateSearchQuery trims the search text and returns it with the first
// error message found, or "".
func validateSearchQuery(q string) (string, string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", "Search query is required."
	}
	if utf8.RuneCountInString(q) > maxSearchQueryLen {
		return "", "Search query is too long (max 200 characters)."
	}
	return q, ""
}
