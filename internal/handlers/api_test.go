// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"devfolio/internal/models"
	"devfolio/internal/store"
)

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("Content-Type: got %q", ct)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode: %v: %s", err, rr.Body.String())
	}
}

// =====================================================================
// Search / stats / tags
// =====================================================================

func TestSearchAPI(t *testing.T) {
	posts := samplePosts(3)
	posts[2].Title = "Go services in production"
	env := newTestEnv(t, &fakeBlog{posts: posts})

	rr := env.get(t, "/api/search?q=production")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	var resp struct {
		Query   string      `json:"query"`
		Results []searchHit `json:"results"`
	}
	decodeJSON(t, rr, &resp)
	if resp.Query != "production" || len(resp.Results) != 1 || resp.Results[0].Slug != "post-2" {
		t.Errorf("results: %+v", resp)
	}
	if resp.Results[0].Score <= 0 {
		t.Error("hit should carry a positive score")
	}
}

func TestSearchAPI_RanksTitleMatchesFirst(t *testing.T) {
	posts := samplePosts(3)
	posts[0].Brief = "All about caching"
	posts[1].Title = "Caching pages"
	posts[2].Brief = "Nothing relevant"
	env := newTestEnv(t, &fakeBlog{posts: posts})

	var resp struct {
		Results []searchHit `json:"results"`
	}
	decodeJSON(t, env.get(t, "/api/search?q=caching&limit=1"), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Slug != "post-1" {
		t.Errorf("top hit: %+v", resp.Results)
	}
}

func TestSearchAPI_Errors(t *testing.T) {
	env := newTestEnv(t, &fakeBlog{})
	rr := env.get(t, "/api/search?q=%20")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("blank query: got %d, want 400", rr.Code)
	}
	if env.blog.Calls() != 0 {
		t.Error("blank query should not reach the content API")
	}

	env = newTestEnv(t, &fakeBlog{err: errUpstream})
	rr = env.get(t, "/api/search?q=go")
	var resp map[string]string
	decodeJSON(t, rr, &resp)
	if rr.Code != http.StatusBadGateway || resp["error"] != "Failed to search posts" {
		t.Errorf("upstream failure: %d %v", rr.Code, resp)
	}
}

func TestStatsAPI(t *testing.T) {
	env := newTestEnv(t, &fakeBlog{posts: samplePosts(4)})

	rr := env.get(t, "/api/stats")
	var stats models.BlogStats
	decodeJSON(t, rr, &stats)
	if stats.TotalPosts != 4 || stats.TotalViews != 100+99+98+97 || stats.TotalTags != 3 {
		t.Errorf("stats: %+v", stats)
	}

	env = newTestEnv(t, &fakeBlog{err: errUpstream})
	rr = env.get(t, "/api/stats")
	if rr.Code != http.StatusBadGateway {
		t.Errorf("status: got %d", rr.Code)
	}
}

func TestTagsAPI(t *testing.T) {
	env := newTestEnv(t, &fakeBlog{posts: samplePosts(5)})

	var resp struct {
		Tags []models.Tag `json:"tags"`
	}
	decodeJSON(t, env.get(t, "/api/tags?limit=2"), &resp)
	if len(resp.Tags) != 2 || resp.Tags[0].Slug != "go" || resp.Tags[0].PostsCount != 5 {
		t.Errorf("tags: %+v", resp.Tags)
	}
	if resp.Tags[1].Slug != "web" {
		t.Errorf("web (3 posts) should rank before ops (2), got %+v", resp.Tags[1])
	}

	var empty struct {
		Tags []models.Tag `json:"tags"`
	}
	env = newTestEnv(t, &fakeBlog{})
	rr := env.get(t, "/api/tags")
	decodeJSON(t, rr, &empty)
	if !strings.Contains(rr.Body.String(), `"tags":[]`) {
		t.Errorf("empty tags should encode as [], got %s", rr.Body.String())
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, &fakeBlog{})
	rr := env.get(t, "/health")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Errorf("health: %d %s", rr.Code, rr.Body.String())
	}
}

// =====================================================================
// Newsletter
// =====================================================================

func postNewsletter(env *testEnv, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/newsletter", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	env.mux.ServeHTTP(rr, req)
	return rr
}

func TestNewsletter(t *testing.T) {
	env := newTestEnv(t, &fakeBlog{})

	rr := postNewsletter(env, "application/json", `{"email":"ada@example.com","source":"footer","timestamp":"2026-06-01T00:00:00Z"}`)
	var resp map[string]any
	decodeJSON(t, rr, &resp)
	if rr.Code != http.StatusOK || resp["success"] != true || resp["message"] == "" {
		t.Errorf("json sign-up: %d %v", rr.Code, resp)
	}

	form := url.Values{"email": {"grace@example.com"}}.Encode()
	rr = postNewsletter(env, "application/x-www-form-urlencoded", form)
	if rr.Code != http.StatusOK {
		t.Errorf("form sign-up: %d %s", rr.Code, rr.Body.String())
	}

	want := []string{"ada@example.com|footer", "grace@example.com|website"}
	if len(env.subs.emails) != 2 || env.subs.emails[0] != want[0] || env.subs.emails[1] != want[1] {
		t.Errorf("stored: got %v, want %v", env.subs.emails, want)
	}
}

func TestNewsletter_Rejects(t *testing.T) {
	env := newTestEnv(t, &fakeBlog{})

	tests := []struct {
		name string
		body string
	}{
		{"no at sign", `{"email":"not-an-email"}`},
		{"missing email", `{}`},
		{"malformed json", `{"email":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postNewsletter(env, "application/json", tt.body)
			var resp map[string]string
			decodeJSON(t, rr, &resp)
			if rr.Code != http.StatusBadRequest || resp["error"] == "" {
				t.Errorf("got %d %v", rr.Code, resp)
			}
		})
	}
	if len(env.subs.emails) != 0 {
		t.Errorf("nothing should be stored, got %v", env.subs.emails)
	}
}

func TestNewsletter_WithoutStoreSimulatesSuccess(t *testing.T) {
	env := newTestEnv(t, &fakeBlog{})
	env.h.subscribers = nil

	rr := postNewsletter(env, "application/json", `{"email":"ada@example.com"}`)
	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d", rr.Code)
	}
}

func TestNewsletter_StoreFailure(t *testing.T) {
	env := newTestEnv(t, &fakeBlog{})
	env.subs.err = errors.New("db down")

	rr := postNewsletter(env, "application/json", `{"email":"ada@example.com"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rr.Code)
	}
}

func TestNewsletter_PostgresIsIdempotent(t *testing.T) {
	db := testDB(t)
	subs := store.NewSubscriberStore(db)

	env := newTestEnv(t, &fakeBlog{})
	env.h.subscribers = subs

	email := "handler-test@example.com"
	t.Cleanup(func() {
		db.ExecContext(context.Background(), "DELETE FROM newsletter_subscribers WHERE email = $1", email)
	})

	for i := 0; i < 2; i++ {
		rr := postNewsletter(env, "application/json", `{"email":"Handler-Test@example.com"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("attempt %d: %d %s", i+1, rr.Code, rr.Body.String())
		}
	}

	sub, err := subs.FindByEmail(context.Background(), email)
	if err != nil || sub == nil {
		t.Fatalf("FindByEmail: %v %v", sub, err)
	}
}
