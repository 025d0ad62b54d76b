// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package contentapi is the HTTP client for the GraphQL content platform
// that hosts the blog. Every call is a single GraphQL POST wrapped in a
// per-attempt timeout and an exponential backoff retry policy. Responses
// are validated before they are converted into models.
package contentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// DefaultEndpoint is the public GraphQL gateway of the content platform.
const DefaultEndpoint = "https://gql.hashnode.com"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// Policy controls how a request is retried. It is injected into the
// client so tests can replace the sleeper with a virtual clock.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Timeout bounds each individual attempt.
	Timeout time.Duration
	// NewBackoff returns a fresh backoff sequence for one call.
	NewBackoff func() retry.Backoff
	// Sleep waits for d or until ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy makes 3 attempts with a 10s timeout each, waiting 2s and
// then 4s between them.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Timeout:     10 * time.Second,
		NewBackoff: func() retry.Backoff {
			return retry.NewExponential(2 * time.Second)
		},
		Sleep: SleepContext,
	}
}

// SleepContext blocks for d, returning early with ctx.Err() if the context
// is cancelled first.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Config holds the settings for a Client.
type Config struct {
	Endpoint    string
	AccessToken string // optional; sent as the Authorization header
	HTTPClient  *http.Client
	Policy      Policy
}

// Client sends GraphQL requests to the content platform.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	policy   Policy
}

// New creates a client. Zero-valued policy fields fall back to
// DefaultPolicy so callers only override what they need.
func New(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	def := DefaultPolicy()
	p := cfg.Policy
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.Timeout <= 0 {
		p.Timeout = def.Timeout
	}
	if p.NewBackoff == nil {
		p.NewBackoff = def.NewBackoff
	}
	if p.Sleep == nil {
		p.Sleep = def.Sleep
	}

	return &Client{
		endpoint: cfg.Endpoint,
		token:    cfg.AccessToken,
		http:     cfg.HTTPClient,
		policy:   p,
	}
}

// Do runs the catalog document registered under name and decodes the
// response "data" object into out.
func (c *Client) Do(ctx context.Context, name QueryName, vars map[string]any, out any) error {
	query, ok := Query(name)
	if !ok {
		return fmt.Errorf("contentapi: unknown query %q", name)
	}
	return c.Request(ctx, query, vars, out)
}

// Request sends an arbitrary GraphQL document. It retries according to the
// client's policy and returns the last error when every attempt fails.
func (c *Client) Request(ctx context.Context, query string, vars map[string]any, out any) error {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("contentapi marshal: %w", err)
	}

	backoff := retry.WithMaxRetries(uint64(c.policy.MaxAttempts-1), c.policy.NewBackoff())

	var lastErr error
	attempt := 0
	for {
		attempt++
		lastErr = c.attempt(ctx, payload, out)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("contentapi: %w", lastErr)
		}

		delay, stop := backoff.Next()
		if stop {
			break
		}

		slog.Warn("content api request failed, retrying",
			"attempt", attempt,
			"max_attempts", c.policy.MaxAttempts,
			"delay", delay.String(),
			"error", lastErr,
		)
		if err := c.policy.Sleep(ctx, delay); err != nil {
			return fmt.Errorf("contentapi: %w", lastErr)
		}
	}

	return fmt.Errorf("contentapi: %d attempts failed: %w", attempt, lastErr)
}

// attempt performs a single request bounded by the per-attempt timeout.
func (c *Client) attempt(ctx context.Context, payload []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.policy.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: snippet(body)}
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return &GraphQLError{Messages: envelope.Messages()}
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmt.Errorf("%w: empty data", ErrInvalidResponse)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Messages returns the error messages reported by the server.
func (r *graphQLResponse) Messages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

// snippet trims a response body for inclusion in an error message.
func snippet(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max])
	}
	return string(b)
}

// IsTimeout reports whether err was caused by a request deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
