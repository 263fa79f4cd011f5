package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"os"

	"github.com/familiez/familiez-auth/config"
	"github.com/familiez/familiez-auth/internal/adapters/authroles"
	"github.com/familiez/familiez-auth/internal/adapters/backend"
	"github.com/familiez/familiez-auth/internal/adapters/navigator"
	"github.com/familiez/familiez-auth/internal/adapters/oidc"
	"github.com/familiez/familiez-auth/internal/ports"
	"github.com/familiez/familiez-auth/internal/service"
	"golang.org/x/net/publicsuffix"
)

// SessionConfig contains dependencies for building the session manager.
type SessionConfig struct {
	Config *config.AppConfig
	Logger *slog.Logger
	// Out receives printed navigation targets. Defaults to os.Stdout.
	Out io.Writer
	// Navigator overrides the configured navigation adapter.
	Navigator ports.Navigator
	// Storage overrides the configured tiers.
	Storage *Storage
}

// SessionContainer is the wired session manager plus the clients built for it.
type SessionContainer struct {
	Manager  *service.SessionManager
	Resolver *oidc.Resolver
	// API is an HTTP client for backend calls that carries the bearer token and
	// invalidates the session on 401.
	API     *http.Client
	storage *Storage
}

// Tiers returns the storage tiers the manager was built on.
func (s *SessionContainer) Tiers() service.Tiers {
	return s.storage.Tiers
}

// Close releases storage connections.
func (s *SessionContainer) Close() error {
	if s == nil {
		return nil
	}
	return s.storage.Close()
}

// BuildSession wires storage, backend, discovery and navigation into a SessionManager.
func BuildSession(ctx context.Context, cfg SessionConfig) (*SessionContainer, error) {
	if cfg.Config == nil {
		return nil, errors.New("config is required")
	}
	appCfg := cfg.Config
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	st := cfg.Storage
	if st == nil {
		var err error
		st, err = BuildStorage(ctx, StorageConfig{Storage: appCfg.Storage, Redis: appCfg.Redis, Logger: logger})
		if err != nil {
			return nil, err
		}
	}

	base, err := newBackendHTTPClient(appCfg.Backend)
	if err != nil {
		return nil, errors.Join(err, st.Close())
	}

	claims, err := service.NewClaimsDecoder(appCfg.Claims.UsernameExpr)
	if err != nil {
		return nil, errors.Join(err, st.Close())
	}

	// The role client needs the manager as its token source; the manager needs the
	// role client. sessionRef breaks the cycle.
	ref := &sessionRef{}
	api := backend.NewAuthorizedClient(base, ref, logger)

	tokens := backend.NewClient(backend.ClientConfig{BaseURL: appCfg.Backend.BaseURL, HTTPClient: base, Logger: logger})
	roleCfg := backend.ClientConfig{BaseURL: appCfg.Backend.BaseURL, HTTPClient: api, Logger: logger}
	if mapper := (authroles.StaticRoleMapper{AdminGroup: appCfg.Roles.AdminGroup, UserGroup: appCfg.Roles.UserGroup}); mapper.Enabled() {
		roleCfg.RoleMapper = mapper
	}
	roles := backend.NewClient(roleCfg)

	resolver := oidc.NewResolver(oidc.ResolverConfig{
		DiscoveryURL:    appCfg.OAuth.DiscoveryURL,
		ProviderBaseURL: appCfg.OAuth.ProviderBaseURL,
		Cache:           st.Tiers.Bounded,
		HTTPClient:      base,
		Logger:          logger,
	})

	nav := cfg.Navigator
	if nav == nil {
		nav = buildNavigator(appCfg.HTTP.Navigator, cfg.Out, logger)
	}

	mgr, err := service.NewSessionManager(service.SessionManagerOptions{
		Tiers:     st.Tiers,
		Tokens:    tokens,
		Roles:     roles,
		Navigator: nav,
		Discovery: resolver,
		Logout:    oidc.NewLogoutNotifier(base),
		Claims:    claims,
		OAuth:     appCfg.OAuth,
		App:       appCfg.App,
		StateTTL:  appCfg.Storage.StateTTL,
		Logger:    logger,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("build session manager: %w", err), st.Close())
	}
	ref.mgr = mgr

	return &SessionContainer{Manager: mgr, Resolver: resolver, API: api, storage: st}, nil
}

// newBackendHTTPClient builds the shared client: a cookie jar for backend session
// cookies and the configured timeout.
func newBackendHTTPClient(cfg config.BackendConfig) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &http.Client{Jar: jar, Timeout: cfg.Timeout}, nil
}

//nolint:ireturn // the navigator kind is chosen at runtime.
func buildNavigator(kind config.NavigatorKind, out io.Writer, logger *slog.Logger) ports.Navigator {
	if out == nil {
		out = os.Stdout
	}
	if kind == config.NavigatorPrint {
		return &navigator.Print{W: out}
	}
	return &navigator.Browser{Fallback: out, Logger: logger}
}

// sessionRef forwards to the manager once it exists.
type sessionRef struct {
	mgr *service.SessionManager
}

func (r *sessionRef) GetToken(ctx context.Context) (string, bool) {
	if r.mgr == nil {
		return "", false
	}
	return r.mgr.GetToken(ctx)
}

func (r *sessionRef) Invalidate(ctx context.Context, reason string) {
	if r.mgr != nil {
		r.mgr.Invalidate(ctx, reason)
	}
}
