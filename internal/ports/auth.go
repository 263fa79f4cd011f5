package ports

// Package ports defines interfaces (hexagonal ports) for session-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/familiez/familiez-auth/internal/domain/auth"
)

// StorageTier is one persistence store with its own lifetime and visibility.
// A missing key is reported as ok=false with a nil error.
type StorageTier interface {
	// Name identifies the tier in logs (e.g. "ephemeral", "bounded", "durable").
	Name() string
	// Set stores value under key. ttl <= 0 uses the tier's default lifetime.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Navigator performs a full navigation to target (e.g. opening the system browser).
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// TokenBackend exchanges an authorization code for a backend-issued access token.
type TokenBackend interface {
	ExchangeCode(ctx context.Context, code string) (accessToken string, err error)
}

// RoleBackend fetches the authoritative role record for a bearer token.
type RoleBackend interface {
	FetchRole(ctx context.Context, accessToken string) (domainauth.RoleRecord, error)
}

// RoleMapper maps group membership to a role.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}

// DiscoveryResolver resolves the provider metadata document.
// It returns (nil, nil) when no discovery URL is configured.
type DiscoveryResolver interface {
	Resolve(ctx context.Context) (domainauth.DiscoveryDocument, error)
}

// LogoutNotifier tells the identity provider that the user logged out.
type LogoutNotifier interface {
	NotifyLogout(ctx context.Context, logoutURL string) error
}
