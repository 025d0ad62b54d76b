// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"devfolio/internal/models"
)

// SubscriberStore handles newsletter subscriber persistence.
type SubscriberStore struct {
	db *sql.DB
}

// NewSubscriberStore creates a new SubscriberStore.
func NewSubscriberStore(db *sql.DB) *SubscriberStore {
	return &SubscriberStore{db: db}
}

// Subscribe adds an email address, or refreshes its source if it is
// already subscribed. Emails are stored lowercased.
func (s *SubscriberStore) Subscribe(ctx context.Context, email, source string) (*models.Subscriber, error) {
	sub := &models.Subscriber{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO newsletter_subscribers (id, email, source)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET source = EXCLUDED.source, updated_at = now()
		RETURNING id, email, source, created_at, updated_at
	`, uuid.New(), strings.ToLower(strings.TrimSpace(email)), source).Scan(
		&sub.ID, &sub.Email, &sub.Source, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return sub, nil
}

// FindByEmail returns the subscriber with the given email, or nil.
func (s *SubscriberStore) FindByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	sub := &models.Subscriber{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, source, created_at, updated_at
		FROM newsletter_subscribers WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email))).Scan(
		&sub.ID, &sub.Email, &sub.Source, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find subscriber: %w", err)
	}
	return sub, nil
}

// Count returns the number of subscribers.
func (s *SubscriberStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM newsletter_subscribers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return n, nil
}
