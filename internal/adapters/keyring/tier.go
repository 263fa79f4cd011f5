// Package keyring provides the durable storage tier on top of the OS keyring.
package keyring

import (
	"context"
	"errors"
	"fmt"
	"time"

	gokeyring "github.com/zalando/go-keyring"
)

// Tier stores each key as a keyring secret under one service name.
type Tier struct {
	service string
}

// NewTier creates a durable keyring tier for service.
func NewTier(service string) *Tier {
	return &Tier{service: service}
}

// Name identifies the tier in log records.
func (t *Tier) Name() string { return "durable" }

// Set stores value under key. The keyring has no expiry, so ttl is ignored.
func (t *Tier) Set(_ context.Context, key, value string, _ time.Duration) error {
	if err := gokeyring.Set(t.service, key, value); err != nil {
		return fmt.Errorf("keyring set %s: %w", key, err)
	}
	return nil
}

// Get reads key from the OS keyring. ErrNotFound maps to ok=false.
func (t *Tier) Get(_ context.Context, key string) (string, bool, error) {
	v, err := gokeyring.Get(t.service, key)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("keyring get %s: %w", key, err)
	}
	return v, true, nil
}

// Delete removes key. Missing entries are ignored.
func (t *Tier) Delete(_ context.Context, key string) error {
	if err := gokeyring.Delete(t.service, key); err != nil && !errors.Is(err, gokeyring.ErrNotFound) {
		return fmt.Errorf("keyring delete %s: %w", key, err)
	}
	return nil
}
