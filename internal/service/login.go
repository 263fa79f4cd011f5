package service

import (
	"context"
	"fmt"

	domainauth "github.com/familiez/familiez-auth/internal/domain/auth"
	apperrors "github.com/familiez/familiez-auth/internal/errors"
	"golang.org/x/oauth2"
)

// LoginResult contains the result of beginning a login flow.
type LoginResult struct {
	AuthURL string
	State   string
}

// Login starts the authorization code flow: it mints a fresh CSRF state and PKCE
// verifier, persists both to every storage tier and navigates to the provider.
// Nothing is written unless the configuration is complete.
func (m *SessionManager) Login(ctx context.Context) (*LoginResult, error) {
	if missing := m.oauth.MissingForLogin(); len(missing) > 0 {
		return nil, apperrors.ConfigurationMissing(missing...)
	}

	csrf, challenge, err := newCSRFState()
	if err != nil {
		return nil, err
	}

	if err := m.persistCSRF(ctx, csrf); err != nil {
		return nil, err
	}

	endpoint, err := m.authorizationEndpoint(ctx)
	if err != nil {
		m.discardCSRF(ctx)
		return nil, err
	}

	authURL := m.authCodeURL(endpoint, csrf, challenge)
	m.logger.InfoContext(ctx, "redirecting to identity provider", "endpoint", endpoint, "pkce", m.oauth.UsePKCE)
	if err := m.navigator.Navigate(ctx, authURL); err != nil {
		m.discardCSRF(ctx)
		return nil, fmt.Errorf("navigate to identity provider: %w", err)
	}

	return &LoginResult{AuthURL: authURL, State: csrf.State}, nil
}

func newCSRFState() (domainauth.CSRFState, string, error) {
	state, err := RandomToken(StateLength)
	if err != nil {
		return domainauth.CSRFState{}, "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "generate state")
	}
	verifier, err := RandomToken(VerifierLength)
	if err != nil {
		return domainauth.CSRFState{}, "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "generate code verifier")
	}
	challenge, err := Challenge(verifier)
	if err != nil {
		return domainauth.CSRFState{}, "", err
	}
	return domainauth.CSRFState{State: state, Verifier: verifier}, challenge, nil
}

// persistCSRF replaces any previous attempt's state and verifier in all tiers.
// It fails only when a value could not be stored anywhere.
func (m *SessionManager) persistCSRF(ctx context.Context, csrf domainauth.CSRFState) error {
	// A tier that rejects the new write must not keep serving the old pair.
	m.discardCSRF(ctx)
	tiers := m.tiers.all()
	if err := writeAll(ctx, m.logger, tiers, StateKey, csrf.State, m.stateTTL); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "persist login state")
	}
	if err := writeAll(ctx, m.logger, tiers, VerifierKey, csrf.Verifier, m.stateTTL); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "persist code verifier")
	}
	return nil
}

// discardCSRF removes the login attempt's state. Failures are logged by deleteAll.
func (m *SessionManager) discardCSRF(ctx context.Context) {
	_ = m.clearCSRF(ctx)
}

// authorizationEndpoint prefers the discovery document and falls back to the
// endpoint constructed from the provider base URL when discovery is not configured.
func (m *SessionManager) authorizationEndpoint(ctx context.Context) (string, error) {
	if m.discovery != nil {
		doc, err := m.discovery.Resolve(ctx)
		if err != nil {
			return "", err
		}
		if ep := doc.AuthorizationEndpoint(); ep != "" {
			return ep, nil
		}
	}
	return domainauth.FallbackAuthorizationEndpoint(m.oauth.ProviderBaseURL), nil
}

func (m *SessionManager) authCodeURL(endpoint string, csrf domainauth.CSRFState, challenge string) string {
	cfg := oauth2.Config{
		ClientID:    m.oauth.ClientID,
		RedirectURL: m.oauth.RedirectURI,
		Scopes:      m.oauth.Scopes(),
		Endpoint:    oauth2.Endpoint{AuthURL: endpoint},
	}

	var opts []oauth2.AuthCodeOption
	if m.oauth.Prompt != "" {
		opts = append(opts, oauth2.SetAuthURLParam("prompt", m.oauth.Prompt))
	}
	if m.oauth.MaxAge != "" {
		opts = append(opts, oauth2.SetAuthURLParam("max_age", m.oauth.MaxAge))
	}
	if m.oauth.UsePKCE {
		opts = append(opts,
			oauth2.SetAuthURLParam("code_challenge", challenge),
			oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		)
	}
	return cfg.AuthCodeURL(csrf.State, opts...)
}
