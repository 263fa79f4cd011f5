package oidc

// Package oidc provides the provider-facing adapters: metadata discovery and logout notification.

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/familiez/familiez-auth/internal/domain/auth"
	apperrors "github.com/familiez/familiez-auth/internal/errors"
	"github.com/familiez/familiez-auth/internal/ports"
	"golang.org/x/sync/singleflight"
)

// DiscoveryCacheKey is the storage key of the cached discovery document.
const DiscoveryCacheKey = "familiez_oidc_discovery"

// Resolver fetches and caches the provider's discovery document.
type Resolver struct {
	discoveryURL    string
	providerBaseURL string
	cache           ports.StorageTier
	httpClient      *http.Client
	logger          *slog.Logger

	group singleflight.Group
}

// ResolverConfig holds configuration for the discovery resolver.
type ResolverConfig struct {
	DiscoveryURL    string // Optional; Resolve returns (nil, nil) when empty
	ProviderBaseURL string
	Cache           ports.StorageTier
	HTTPClient      *http.Client // Optional, defaults to a client without timeout
	Logger          *slog.Logger
}

// NewResolver creates a discovery resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		discoveryURL:    strings.TrimSpace(cfg.DiscoveryURL),
		providerBaseURL: cfg.ProviderBaseURL,
		cache:           cfg.Cache,
		httpClient:      httpClient,
		logger:          logger,
	}
}

// Resolve returns the discovery document, consulting the cache first.
// Concurrent callers share a single fetch.
func (r *Resolver) Resolve(ctx context.Context) (domainauth.DiscoveryDocument, error) {
	if r.discoveryURL == "" {
		return nil, nil
	}
	v, err, _ := r.group.Do(DiscoveryCacheKey, func() (any, error) {
		return r.resolve(ctx)
	})
	if err != nil {
		return nil, err
	}
	doc, _ := v.(domainauth.DiscoveryDocument)
	return doc, nil
}

func (r *Resolver) resolve(ctx context.Context) (domainauth.DiscoveryDocument, error) {
	if doc, ok := r.fromCache(ctx); ok {
		return doc, nil
	}

	doc, err := r.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if doc.AuthorizationEndpoint() == "" && r.providerBaseURL != "" {
		doc[domainauth.DiscoveryAuthorizationEndpoint] = domainauth.FallbackAuthorizationEndpoint(r.providerBaseURL)
	}

	r.store(ctx, doc)
	return doc, nil
}

func (r *Resolver) fromCache(ctx context.Context) (domainauth.DiscoveryDocument, bool) {
	if r.cache == nil {
		return nil, false
	}
	raw, ok, err := r.cache.Get(ctx, DiscoveryCacheKey)
	if err != nil {
		r.logger.WarnContext(ctx, "read cached discovery document failed", "tier", r.cache.Name(), "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var doc domainauth.DiscoveryDocument
	if unmarshalErr := json.Unmarshal([]byte(raw), &doc); unmarshalErr != nil || doc == nil {
		r.logger.WarnContext(ctx, "evicting unparsable cached discovery document", "error", unmarshalErr)
		if deleteErr := r.cache.Delete(ctx, DiscoveryCacheKey); deleteErr != nil {
			r.logger.WarnContext(ctx, "evict discovery document failed", "error", deleteErr)
		}
		return nil, false
	}
	return doc, true
}

func (r *Resolver) store(ctx context.Context, doc domainauth.DiscoveryDocument) {
	if r.cache == nil {
		return
	}
	data, err := json.Marshal(doc)
	if err != nil {
		r.logger.WarnContext(ctx, "marshal discovery document failed", "error", err)
		return
	}
	if setErr := r.cache.Set(ctx, DiscoveryCacheKey, string(data), 0); setErr != nil {
		r.logger.WarnContext(ctx, "cache discovery document failed", "tier", r.cache.Name(), "error", setErr)
	}
}

func (r *Resolver) fetch(ctx context.Context) (domainauth.DiscoveryDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.discoveryURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDiscoveryUnavailable, "build discovery request")
	}
	// Always revalidate against the network.
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeDiscoveryUnavailable, "failed to fetch OIDC discovery document from %s", req.URL.Host)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.Newf(apperrors.ErrCodeDiscoveryUnavailable,
			"failed to fetch OIDC discovery document: status %d", resp.StatusCode)
	}

	var doc domainauth.DiscoveryDocument
	if decodeErr := json.NewDecoder(resp.Body).Decode(&doc); decodeErr != nil {
		return nil, apperrors.Wrap(decodeErr, apperrors.ErrCodeDiscoveryUnavailable, "decode OIDC discovery document")
	}
	if doc == nil {
		doc = domainauth.DiscoveryDocument{}
	}
	return doc, nil
}

// ProviderConfig returns the typed go-oidc view of a discovery document.
func ProviderConfig(doc domainauth.DiscoveryDocument) (gooidc.ProviderConfig, error) {
	var pc gooidc.ProviderConfig
	data, err := json.Marshal(doc)
	if err != nil {
		return pc, fmt.Errorf("marshal discovery document: %w", err)
	}
	if err := json.Unmarshal(data, &pc); err != nil {
		return pc, fmt.Errorf("decode provider config: %w", err)
	}
	return pc, nil
}
