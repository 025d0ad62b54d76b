// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
)

const maxNewsletterBody = 16 << 10

// Newsletter handles POST /api/newsletter. It accepts a JSON body or a
// form post. Sign-ups are stored when a subscriber store is configured and
// acknowledged without storage otherwise.
func (p *Public) Newsletter(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxNewsletterBody)

	var req newsletterRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON payload")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid form payload")
			return
		}
		req.Email = r.PostFormValue("email")
		req.Source = r.PostFormValue("source")
		req.Timestamp = r.PostFormValue("timestamp")
	}

	if msg := validateNewsletter(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if p.subscribers == nil {
		slog.Info("newsletter sign-up acknowledged without storage", "source", req.Source)
	} else {
		if _, err := p.subscribers.Subscribe(r.Context(), req.Email, req.Source); err != nil {
			slog.Error("newsletter subscribe failed", "error", err, "source", req.Source)
			writeError(w, http.StatusInternalServerError, "Failed to subscribe")
			return
		}
		slog.Info("newsletter sign-up stored", "source", req.Source)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Thanks for subscribing!",
	})
}
