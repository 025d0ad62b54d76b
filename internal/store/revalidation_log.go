// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// revalidation_log.go records page cache invalidation runs in the database
// for audit and debugging purposes. Each entry captures what triggered the
// run, which paths and tags were dropped, and whether it succeeded.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"devfolio/internal/models"
)

// RevalidationLogStore handles revalidation audit log operations.
type RevalidationLogStore struct {
	db *sql.DB
}

// NewRevalidationLogStore creates a new RevalidationLogStore.
func NewRevalidationLogStore(db *sql.DB) *RevalidationLogStore {
	return &RevalidationLogStore{db: db}
}

// Log records an invalidation run. Failures are logged, never returned.
func (s *RevalidationLogStore) Log(ctx context.Context, e models.RevalidationEntry) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Targets == nil {
		e.Targets = []string{}
	}
	targets, err := json.Marshal(e.Targets)
	if err != nil {
		slog.Warn("failed to encode revalidation targets", "error", err)
		return
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO revalidation_log (id, source, event_type, targets, succeeded, error)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.Source, e.EventType, string(targets), e.Succeeded, e.Error)
	if err != nil {
		// Audit logging is best-effort.
		slog.Warn("failed to log revalidation",
			"source", e.Source,
			"event_type", e.EventType,
			"error", err,
		)
		return
	}
	slog.Debug("revalidation logged",
		"source", e.Source,
		"event_type", e.EventType,
		"targets", len(e.Targets),
	)
}

// Recent returns the most recent invalidation runs, newest first.
func (s *RevalidationLogStore) Recent(ctx context.Context, limit int) ([]models.RevalidationEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, event_type, targets, succeeded, error, created_at
		FROM revalidation_log
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query revalidation log: %w", err)
	}
	defer rows.Close()

	var entries []models.RevalidationEntry
	for rows.Next() {
		var e models.RevalidationEntry
		var targets []byte
		if err := rows.Scan(&e.ID, &e.Source, &e.EventType, &targets, &e.Succeeded, &e.Error, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan revalidation log: %w", err)
		}
		if err := json.Unmarshal(targets, &e.Targets); err != nil {
			return nil, fmt.Errorf("decode revalidation targets: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
