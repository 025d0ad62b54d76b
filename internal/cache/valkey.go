// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cache provides the rendered-page cache. Pages, feeds and JSON
// responses are stored under their request path and labelled with tags so
// revalidation can drop them by path or by tag. ValkeyStore is shared
// across instances; MemoryStore serves single-process deployments.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pageKeyPrefix = "page:"
	tagKeyPrefix  = "tag:"
)

// ConnectValkey creates a Valkey client and verifies the connection with a ping.
func ConnectValkey(host, port, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("valkey ping: %w", err)
	}

	slog.Info("valkey connected", "addr", fmt.Sprintf("%s:%s", host, port))
	return client, nil
}

// ValkeyStore keeps each page as a hash under page:<key> and each tag as a
// set of page keys under tag:<tag>.
type ValkeyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewValkeyStore creates a store backed by the given Valkey client.
func NewValkeyStore(client *redis.Client, ttl time.Duration) *ValkeyStore {
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &ValkeyStore{client: client, ttl: ttl}
}

// Get retrieves a cached entry. Errors are logged and treated as a miss.
func (s *ValkeyStore) Get(ctx context.Context, key string) (Entry, bool) {
	vals, err := s.client.HGetAll(ctx, pageKeyPrefix+key).Result()
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return Entry{}, false
	}
	body, ok := vals["body"]
	if !ok {
		return Entry{}, false
	}
	slog.Debug("page cache hit", "key", key)
	return Entry{ContentType: vals["type"], Body: []byte(body)}, true
}

// Set stores an entry with the configured TTL and adds it to each tag set.
func (s *ValkeyStore) Set(ctx context.Context, key string, e Entry, tags ...string) {
	pageKey := pageKeyPrefix + key
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, pageKey, "type", e.ContentType, "body", e.Body)
		pipe.Expire(ctx, pageKey, s.ttl)
		for _, tag := range tags {
			tagKey := tagKeyPrefix + tag
			pipe.SAdd(ctx, tagKey, key)
			pipe.Expire(ctx, tagKey, s.ttl)
		}
		return nil
	})
	if err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// InvalidatePath removes the pages under path and returns how many were
// removed.
func (s *ValkeyStore) InvalidatePath(ctx context.Context, path string, kind Kind) (int, error) {
	var cursor uint64
	var doomed []string
	pattern := pageKeyPrefix + globEscape(path) + "*"
	if kind == KindLayout && path == "/" {
		pattern = pageKeyPrefix + "*"
	}
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return 0, fmt.Errorf("scan %s: %w", pattern, err)
		}
		for _, k := range keys {
			if matchPath(strings.TrimPrefix(k, pageKeyPrefix), path, kind) {
				doomed = append(doomed, k)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if len(doomed) == 0 {
		return 0, nil
	}
	if err := s.client.Del(ctx, doomed...).Err(); err != nil {
		return 0, fmt.Errorf("delete pages under %s: %w", path, err)
	}
	slog.Debug("page cache path invalidated", "path", path, "kind", kind, "deleted", len(doomed))
	return len(doomed), nil
}

// InvalidateTag removes every page labelled with tag, and the tag set.
func (s *ValkeyStore) InvalidateTag(ctx context.Context, tag string) (int, error) {
	tagKey := tagKeyPrefix + tag
	members, err := s.client.SMembers(ctx, tagKey).Result()
	if err != nil {
		return 0, fmt.Errorf("read tag %s: %w", tag, err)
	}
	keys := make([]string, 0, len(members)+1)
	for _, m := range members {
		keys = append(keys, pageKeyPrefix+m)
	}
	keys = append(keys, tagKey)
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("delete tag %s: %w", tag, err)
	}
	slog.Debug("page cache tag invalidated", "tag", tag, "deleted", len(members))
	return len(members), nil
}

// InvalidateAll removes all cached pages and tag sets.
func (s *ValkeyStore) InvalidateAll(ctx context.Context) error {
	var deleted int
	for _, prefix := range []string{pageKeyPrefix, tagKeyPrefix} {
		var cursor uint64
		for {
			keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", 100).Result()
			if err != nil {
				return fmt.Errorf("scan %s: %w", prefix, err)
			}
			if len(keys) > 0 {
				if err := s.client.Del(ctx, keys...).Err(); err != nil {
					return fmt.Errorf("bulk delete: %w", err)
				}
				deleted += len(keys)
			}
			cursor = next
			if cursor == 0 {
				break
			}
		}
	}
	if deleted > 0 {
		slog.Info("page cache fully cleared", "deleted", deleted)
	}
	return nil
}

// globEscape quotes the SCAN pattern metacharacters in s.
func globEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
