// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"log/slog"
	"slices"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type memoryItem struct {
	entry Entry
	tags  []string
}

// MemoryStore is an in-process Store for deployments without Valkey.
type MemoryStore struct {
	c *gocache.Cache
}

// NewMemoryStore creates a store whose entries expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &MemoryStore{c: gocache.New(ttl, 2*ttl)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool) {
	v, ok := s.c.Get(key)
	if !ok {
		return Entry{}, false
	}
	return v.(memoryItem).entry, true
}

func (s *MemoryStore) Set(_ context.Context, key string, e Entry, tags ...string) {
	s.c.Set(key, memoryItem{entry: e, tags: tags}, gocache.DefaultExpiration)
}

func (s *MemoryStore) InvalidatePath(_ context.Context, path string, kind Kind) (int, error) {
	n := 0
	for key := range s.c.Items() {
		if matchPath(key, path, kind) {
			s.c.Delete(key)
			n++
		}
	}
	slog.Debug("page cache path invalidated", "path", path, "kind", kind, "deleted", n)
	return n, nil
}

func (s *MemoryStore) InvalidateTag(_ context.Context, tag string) (int, error) {
	n := 0
	for key, item := range s.c.Items() {
		if slices.Contains(item.Object.(memoryItem).tags, tag) {
			s.c.Delete(key)
			n++
		}
	}
	slog.Debug("page cache tag invalidated", "tag", tag, "deleted", n)
	return n, nil
}

func (s *MemoryStore) InvalidateAll(_ context.Context) error {
	s.c.Flush()
	return nil
}

// Len returns the number of live entries.
func (s *MemoryStore) Len() int {
	return s.c.ItemCount()
}
