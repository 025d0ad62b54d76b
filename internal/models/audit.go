// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Revalidation sources.
const (
	SourceWebhook = "webhook"
	SourceManual  = "manual"
)

// RevalidationEntry is one audited invalidation run.
type RevalidationEntry struct {
	ID        uuid.UUID `json:"id"`
	Source    string    `json:"source"`
	EventType string    `json:"eventType,omitempty"`
	Targets   []string  `json:"targets"`
	Succeeded bool      `json:"succeeded"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Subscriber is a newsletter signup. Email is unique.
type Subscriber struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
