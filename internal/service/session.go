package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/familiez/familiez-auth/config"
	domainauth "github.com/familiez/familiez-auth/internal/domain/auth"
	apperrors "github.com/familiez/familiez-auth/internal/errors"
	"github.com/familiez/familiez-auth/internal/ports"
)

// SessionManagerOptions groups dependencies for SessionManager.
type SessionManagerOptions struct {
	Tiers     Tiers                   // Required: Durable must be set
	Tokens    ports.TokenBackend      // Required: code exchange
	Roles     ports.RoleBackend       // Required: role lookup
	Navigator ports.Navigator         // Required: provider and entry navigation
	Discovery ports.DiscoveryResolver // Optional: provider metadata
	Logout    ports.LogoutNotifier    // Optional: provider logout notification
	Claims    *ClaimsDecoder          // Optional: defaults to config.DefaultUsernameExpr
	Events    *EventBus               // Optional: created when nil
	OAuth     config.OAuthConfig
	App       config.AppURLConfig
	StateTTL  time.Duration // Optional: defaults to config.DefaultStateTTL
	Logger    *slog.Logger  // Optional: structured logger
}

// SessionManager owns the client session: login, callback handling, the token
// store, the role cache and logout.
type SessionManager struct {
	tiers     Tiers
	tokens    ports.TokenBackend
	roles     ports.RoleBackend
	navigator ports.Navigator
	discovery ports.DiscoveryResolver
	notifier  ports.LogoutNotifier
	claims    *ClaimsDecoder
	events    *EventBus
	oauth     config.OAuthConfig
	app       config.AppURLConfig
	stateTTL  time.Duration
	logger    *slog.Logger

	// background tracks fire-and-forget work such as provider logout notification.
	background sync.WaitGroup
}

// NewSessionManager constructs a new SessionManager.
func NewSessionManager(opts SessionManagerOptions) (*SessionManager, error) {
	if opts.Tiers.Durable == nil {
		return nil, errors.New("durable StorageTier is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("TokenBackend is required")
	}
	if opts.Roles == nil {
		return nil, errors.New("RoleBackend is required")
	}
	if opts.Navigator == nil {
		return nil, errors.New("Navigator is required")
	}

	claims := opts.Claims
	if claims == nil {
		var err error
		claims, err = NewClaimsDecoder(config.DefaultUsernameExpr)
		if err != nil {
			return nil, err
		}
	}
	events := opts.Events
	if events == nil {
		events = NewEventBus()
	}
	ttl := opts.StateTTL
	if ttl <= 0 {
		ttl = config.DefaultStateTTL
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "session_manager")

	return &SessionManager{
		tiers:     opts.Tiers,
		tokens:    opts.Tokens,
		roles:     opts.Roles,
		navigator: opts.Navigator,
		discovery: opts.Discovery,
		notifier:  opts.Logout,
		claims:    claims,
		events:    events,
		oauth:     opts.OAuth,
		app:       opts.App,
		stateTTL:  ttl,
		logger:    logger,
	}, nil
}

// MustNewSessionManager constructs a new SessionManager and panics on error.
// Use this when you want fail-fast behavior during application startup.
func MustNewSessionManager(opts SessionManagerOptions) *SessionManager {
	m, err := NewSessionManager(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
	}
	return m
}

// Events returns the bus session notifications are published on.
func (m *SessionManager) Events() *EventBus {
	return m.events
}

// GetToken returns the stored access token. A storage failure reads as no session.
func (m *SessionManager) GetToken(ctx context.Context) (string, bool) {
	tok, ok, err := m.tiers.Durable.Get(ctx, TokenKey)
	if err != nil {
		m.logger.WarnContext(ctx, "read access token failed", "error", err)
		return "", false
	}
	if !ok || tok == "" {
		return "", false
	}
	return tok, true
}

// IsAuthenticated reports whether an access token is stored.
func (m *SessionManager) IsAuthenticated(ctx context.Context) bool {
	_, ok := m.GetToken(ctx)
	return ok
}

// GetSession returns the current session, or nil when logged out.
// Claims are nil when the token payload cannot be decoded.
func (m *SessionManager) GetSession(ctx context.Context) *domainauth.Session {
	tok, ok := m.GetToken(ctx)
	if !ok {
		return nil
	}
	return &domainauth.Session{AccessToken: tok, Claims: m.decodeClaims(ctx, tok)}
}

// CachedRole returns the cached Role Record, or nil when none is stored or the
// session is gone.
func (m *SessionManager) CachedRole(ctx context.Context) *domainauth.RoleRecord {
	if _, ok := m.GetToken(ctx); !ok {
		return nil
	}
	raw, ok, err := m.tiers.Durable.Get(ctx, RoleKey)
	if err != nil {
		m.logger.WarnContext(ctx, "read role cache failed", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var rec domainauth.RoleRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		m.logger.WarnContext(ctx, "discarding unreadable role cache", "error", err)
		return nil
	}
	return &rec
}

// GetUserInfo merges decoded claims with the cached role. Without a cached role the
// least privileged defaults apply. Returns nil when logged out.
func (m *SessionManager) GetUserInfo(ctx context.Context) *domainauth.UserInfo {
	sess := m.GetSession(ctx)
	if sess == nil {
		return nil
	}

	role := domainauth.LeastPrivileged()
	if rec := m.CachedRole(ctx); rec != nil {
		role = *rec
	}
	if role.Groups == nil {
		role.Groups = []string{}
	}

	info := &domainauth.UserInfo{
		Username: role.Username,
		Role:     role.Role,
		IsAdmin:  role.IsAdmin,
		IsUser:   role.IsUser,
		Groups:   role.Groups,
	}
	if c := sess.Claims; c != nil {
		info.Subject = c.Subject
		info.GivenName = c.GivenName
		info.FamilyName = c.FamilyName
		info.Email = c.Email
		if c.Username != "" {
			info.Username = c.Username
		}
	}
	return info
}

// Clear removes the token, the role cache and any CSRF residue, then publishes
// EventSessionChanged. Every removal is attempted even when one fails.
func (m *SessionManager) Clear(ctx context.Context) error {
	err := errors.Join(
		deleteAll(ctx, m.logger, compact(m.tiers.Durable), TokenKey, RoleKey),
		m.clearCSRF(ctx),
	)
	m.events.Publish(Event{Kind: EventSessionChanged})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "clear session")
	}
	return nil
}

// Invalidate clears the session and publishes EventSessionInvalid with reason.
// It is the single funnel for backend 401 responses.
func (m *SessionManager) Invalidate(ctx context.Context, reason string) {
	if err := m.Clear(ctx); err != nil {
		m.logger.WarnContext(ctx, "clear session during invalidation failed", "error", err)
	}
	m.logger.InfoContext(ctx, "session invalidated", "reason", reason)
	m.events.Publish(Event{Kind: EventSessionInvalid, Reason: reason})
}

// storeToken replaces the session token. The previous role cache belongs to the
// previous token and is dropped first.
func (m *SessionManager) storeToken(ctx context.Context, token string) error {
	if err := m.tiers.Durable.Delete(ctx, RoleKey); err != nil {
		m.logger.WarnContext(ctx, "drop stale role cache failed", "error", err)
	}
	if err := m.tiers.Durable.Set(ctx, TokenKey, token, 0); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "store access token")
	}
	return nil
}

func (m *SessionManager) storeRole(ctx context.Context, rec domainauth.RoleRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode role record: %w", err)
	}
	if err := m.tiers.Durable.Set(ctx, RoleKey, string(raw), 0); err != nil {
		return fmt.Errorf("store role record: %w", err)
	}
	return nil
}

func (m *SessionManager) decodeClaims(ctx context.Context, token string) *domainauth.Claims {
	c, err := m.claims.Decode(token)
	if err != nil {
		m.logger.DebugContext(ctx, "access token claims unavailable", "error", err)
		return nil
	}
	return c
}

func (m *SessionManager) clearCSRF(ctx context.Context) error {
	return deleteAll(ctx, m.logger, m.tiers.all(), StateKey, VerifierKey)
}

// Wait blocks until background work started by the manager has finished.
func (m *SessionManager) Wait() {
	m.background.Wait()
}
