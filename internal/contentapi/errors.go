// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package contentapi

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidResponse is returned when a response does not match the
// expected schema.
var ErrInvalidResponse = errors.New("invalid response from content api")

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("content api status %d: %s", e.StatusCode, e.Body)
}

// GraphQLError carries the "errors" array of a GraphQL response.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "graphql: " + strings.Join(e.Messages, "; ")
}

// ValidationError describes which fields of a response failed validation.
// It unwraps to ErrInvalidResponse.
type ValidationError struct {
	Entity string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: %s", ErrInvalidResponse, e.Entity)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidResponse, e.Entity, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidResponse }
