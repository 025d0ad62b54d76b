// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package revalidate drops cached pages when content changes, either on a
// signed webhook from the content platform or on a manual request.
package revalidate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"devfolio/internal/cache"
	"devfolio/internal/models"
)

// maxBodySize bounds webhook and manual request bodies.
const maxBodySize = 1 << 20

// Webhook event types.
const (
	EventPostPublished       = "POST_PUBLISHED"
	EventPostUpdated         = "POST_UPDATED"
	EventPostDeleted         = "POST_DELETED"
	EventStaticPagePublished = "STATIC_PAGE_PUBLISHED"
	EventStaticPageEdited    = "STATIC_PAGE_EDITED"
	EventStaticPageUpdated   = "STATIC_PAGE_UPDATED"
	EventStaticPageDeleted   = "STATIC_PAGE_DELETED"
)

// Auditor records invalidation runs. *store.RevalidationLogStore
// implements it.
type Auditor interface {
	Log(ctx context.Context, e models.RevalidationEntry)
}

// Scheduler is notified when generated documents were invalidated.
// *feed.Mirror implements it.
type Scheduler interface {
	Schedule()
}

// Config wires a Handler. Audit and Mirror are optional.
type Config struct {
	Invalidator      Invalidator
	WebhookSecret    string
	RevalidateSecret string
	Audit            Auditor
	Mirror           Scheduler
	Now              func() time.Time
}

// Handler serves the webhook and manual revalidation endpoints.
type Handler struct {
	inv              Invalidator
	webhookSecret    string
	revalidateSecret string
	audit            Auditor
	mirror           Scheduler
	now              func() time.Time
	validate         *validator.Validate
}

// New creates a Handler.
func New(cfg Config) *Handler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.WebhookSecret == "" {
		slog.Warn("webhook signature verification disabled: HASHNODE_WEBHOOK_SECRET is not set", "security", true)
	}
	if cfg.RevalidateSecret == "" {
		slog.Warn("manual revalidation is unauthenticated: REVALIDATE_SECRET is not set", "security", true)
	}
	return &Handler{
		inv:              cfg.Invalidator,
		webhookSecret:    cfg.WebhookSecret,
		revalidateSecret: cfg.RevalidateSecret,
		audit:            cfg.Audit,
		mirror:           cfg.Mirror,
		now:              cfg.Now,
		validate:         validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ---------- Webhook ----------

type webhookTag struct {
	Slug string `json:"slug"`
}

type webhookPayload struct {
	EventType string `json:"eventType"`
	Data      struct {
		EventType string `json:"eventType"`
		Post      *struct {
			ID   string       `json:"id"`
			Slug string       `json:"slug"`
			Tags []webhookTag `json:"tags"`
		} `json:"post"`
		StaticPage *struct {
			ID   string `json:"id"`
			Slug string `json:"slug"`
		} `json:"staticPage"`
	} `json:"data"`
}

func (p *webhookPayload) eventType() string {
	ev := p.EventType
	if ev == "" {
		ev = p.Data.EventType
	}
	return strings.ToUpper(strings.TrimSpace(ev))
}

// Webhook handles POST /api/webhook/hashnode.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if h.webhookSecret == "" {
		slog.Warn("webhook accepted without signature check", "security", true, "remote", r.RemoteAddr)
	} else if !VerifySignature(h.webhookSecret, body, r.Header.Get(SignatureHeader)) {
		slog.Warn("webhook signature mismatch", "remote", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	event := payload.eventType()

	var plan Plan
	switch event {
	case EventPostPublished, EventPostUpdated, EventPostDeleted:
		post := payload.Data.Post
		if post == nil || strings.TrimSpace(post.Slug) == "" {
			writeError(w, http.StatusBadRequest, "Missing post slug")
			return
		}
		tags := make([]string, 0, len(post.Tags))
		for _, t := range post.Tags {
			if t.Slug != "" {
				tags = append(tags, t.Slug)
			}
		}
		plan = PostPlan(post.Slug, tags, event == EventPostDeleted)
	case EventStaticPagePublished, EventStaticPageEdited, EventStaticPageUpdated, EventStaticPageDeleted:
		page := payload.Data.StaticPage
		if page == nil || strings.TrimSpace(page.Slug) == "" {
			writeError(w, http.StatusBadRequest, "Missing static page slug")
			return
		}
		plan = StaticPagePlan(page.Slug)
	default:
		slog.Info("webhook event ignored", "event", event)
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"message":   "Ignored " + event + " event",
			"timestamp": h.timestamp(),
		})
		return
	}

	if _, err := h.run(r.Context(), models.SourceWebhook, event, plan); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to process webhook")
		return
	}

	slog.Info("webhook processed", "event", event, "targets", len(plan))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Processed " + event + " event",
		"timestamp": h.timestamp(),
	})
}

// ---------- Manual ----------

type manualRequest struct {
	Path   string `json:"path" validate:"omitempty,startswith=/"`
	Tag    string `json:"tag" validate:"omitempty,max=200"`
	Type   string `json:"type" validate:"omitempty,oneof=page layout"`
	Secret string `json:"secret"`
}

// Manual handles POST /api/revalidate. GET answers as a liveness probe.
func (h *Handler) Manual(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"timestamp": h.timestamp(),
			"service":   "revalidation",
		})
		return
	}

	var req manualRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if req.Secret == "" {
		req.Secret = r.URL.Query().Get("secret")
	}

	if h.revalidateSecret == "" {
		slog.Warn("manual revalidation accepted without secret check", "security", true, "remote", r.RemoteAddr)
	} else if !secretMatches(h.revalidateSecret, req.Secret) {
		slog.Warn("manual revalidation rejected: invalid secret", "remote", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, "Invalid secret")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid revalidation target")
		return
	}

	var plan Plan
	if req.Path != "" {
		plan.add(PathTarget(req.Path, cache.ParseKind(req.Type)))
	}
	if req.Tag != "" {
		plan.add(TagTarget(req.Tag))
	}
	if len(plan) == 0 {
		plan = FallbackPlan()
	}

	results, err := h.run(r.Context(), models.SourceManual, "", plan)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to revalidate")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"revalidated": true,
		"results":     results,
		"timestamp":   h.timestamp(),
	})
}

// run applies the plan, audits the outcome and schedules the feed mirror.
func (h *Handler) run(ctx context.Context, source, event string, plan Plan) ([]string, error) {
	results, err := plan.Apply(ctx, h.inv)

	entry := models.RevalidationEntry{
		Source:    source,
		EventType: event,
		Targets:   plan.Strings(),
		Succeeded: err == nil,
	}
	if err != nil {
		entry.Error = err.Error()
		slog.Error("revalidation failed", "source", source, "event", event, "error", err)
	}
	if h.audit != nil {
		h.audit.Log(ctx, entry)
	}
	if err != nil {
		return nil, err
	}

	if h.mirror != nil && plan.TouchesFeeds() {
		h.mirror.Schedule()
	}
	return results, nil
}

func (h *Handler) timestamp() string {
	return h.now().UTC().Format(time.RFC3339)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
