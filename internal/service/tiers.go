package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/familiez/familiez-auth/internal/ports"
)

// Tiers bundles the three storage tiers. Any of them may be nil (unavailable).
type Tiers struct {
	// Ephemeral is process-local and lost on exit.
	Ephemeral ports.StorageTier
	// Bounded lives for the configured state TTL.
	Bounded ports.StorageTier
	// Durable survives restarts and holds the session.
	Durable ports.StorageTier
}

// csrfReadOrder is the order CSRF lookups consult tiers.
func (t Tiers) csrfReadOrder() []ports.StorageTier {
	return compact(t.Bounded, t.Ephemeral, t.Durable)
}

func (t Tiers) all() []ports.StorageTier {
	return compact(t.Ephemeral, t.Bounded, t.Durable)
}

func compact(tiers ...ports.StorageTier) []ports.StorageTier {
	out := make([]ports.StorageTier, 0, len(tiers))
	for _, tier := range tiers {
		if tier != nil {
			out = append(out, tier)
		}
	}
	return out
}

// writeAll writes key to every tier. It fails only when no tier accepted the write.
// A tier whose write fails has key removed so it never serves an older value.
func writeAll(ctx context.Context, logger *slog.Logger, tiers []ports.StorageTier, key, value string, ttl time.Duration) error {
	var errs []error
	written := 0
	for _, tier := range tiers {
		if err := tier.Set(ctx, key, value, ttl); err != nil {
			logger.WarnContext(ctx, "storage tier write failed", "tier", tier.Name(), "key", key, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", tier.Name(), err))
			if delErr := tier.Delete(ctx, key); delErr != nil {
				logger.WarnContext(ctx, "storage tier delete failed", "tier", tier.Name(), "key", key, "error", delErr)
			}
			continue
		}
		written++
	}
	if written == 0 {
		if len(errs) == 0 {
			return errors.New("no storage tier available")
		}
		return errors.Join(errs...)
	}
	return nil
}

// readFirst returns the first value found for key in tier order. Read errors are
// logged and treated as absence so one broken tier never hides another.
func readFirst(ctx context.Context, logger *slog.Logger, tiers []ports.StorageTier, key string) (string, bool) {
	for _, tier := range tiers {
		v, ok, err := tier.Get(ctx, key)
		if err != nil {
			logger.WarnContext(ctx, "storage tier read failed", "tier", tier.Name(), "key", key, "error", err)
			continue
		}
		if ok {
			return v, true
		}
	}
	return "", false
}

// deleteAll removes keys from every tier, attempting all of them regardless of failures.
func deleteAll(ctx context.Context, logger *slog.Logger, tiers []ports.StorageTier, keys ...string) error {
	var errs []error
	for _, tier := range tiers {
		for _, key := range keys {
			if err := tier.Delete(ctx, key); err != nil {
				logger.WarnContext(ctx, "storage tier delete failed", "tier", tier.Name(), "key", key, "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", tier.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
