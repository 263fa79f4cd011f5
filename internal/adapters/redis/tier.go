package redis

// Package redis provides a Redis-backed bounded-lifetime storage tier.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tier stores values in Redis with a TTL, so expiry is handled by Redis itself.
type Tier struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewTier creates a bounded-lifetime tier. ttl is the default lifetime of each entry.
func NewTier(client redis.UniversalClient, ttl time.Duration) *Tier {
	return NewTierWithPrefix(client, "familiez:", ttl)
}

// NewTierWithPrefix creates a bounded-lifetime tier with a custom key prefix.
func NewTierWithPrefix(client redis.UniversalClient, prefix string, ttl time.Duration) *Tier {
	return &Tier{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Name identifies the tier in log records.
func (t *Tier) Name() string { return "bounded" }

// Set stores value under the prefixed key. A non-positive ttl falls back to
// the tier default; the tier refuses to store entries without expiry.
func (t *Tier) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if ttl <= 0 {
		ttl = t.ttl
	}
	if ttl <= 0 {
		return errors.New("bounded tier requires a positive ttl")
	}
	if err := t.client.Set(ctx, t.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get returns the value for key. A missing or expired key reports ok=false.
func (t *Tier) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, nil
	}
	v, err := t.client.Get(ctx, t.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (t *Tier) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil // Nothing to delete
	}
	if err := t.client.Del(ctx, t.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
