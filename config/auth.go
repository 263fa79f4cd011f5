package config

import (
	"strings"
	"time"
)

// DefaultPrompt forces the provider to re-authenticate the user on every login.
const DefaultPrompt = "login"

// OAuthConfig contains OAuth/OIDC provider configuration.
type OAuthConfig struct {
	ProviderBaseURL string `env:"PROVIDER_BASE_URL"`
	ClientID        string `env:"CLIENT_ID"`
	RedirectURI     string `env:"REDIRECT_URI"`
	Scope           string `env:"SCOPE"             envDefault:"openid email"`
	DiscoveryURL    string `env:"DISCOVERY_URL"`
	LogoutURL       string `env:"LOGOUT_URL"`

	// Prompt is sent as the prompt parameter; "login" forces re-authentication.
	Prompt string `env:"PROMPT" envDefault:"login"`
	// MaxAge is sent as max_age when non-empty.
	MaxAge string `env:"MAX_AGE" envDefault:"0"`

	// UsePKCE sends the derived challenge with the authorization request.
	// The provider in use does not support it, so it is off by default.
	UsePKCE bool `env:"USE_PKCE" envDefault:"false"`
}

// Sanitize trims whitespace and drops trailing slashes from base URLs.
func (o *OAuthConfig) Sanitize() {
	o.ProviderBaseURL = strings.TrimRight(strings.TrimSpace(o.ProviderBaseURL), "/")
	o.ClientID = strings.TrimSpace(o.ClientID)
	o.RedirectURI = strings.TrimSpace(o.RedirectURI)
	o.DiscoveryURL = strings.TrimSpace(o.DiscoveryURL)
	o.LogoutURL = strings.TrimSpace(o.LogoutURL)
	o.Scope = strings.Join(strings.Fields(o.Scope), " ")
	o.Prompt = strings.TrimSpace(o.Prompt)
	o.MaxAge = strings.TrimSpace(o.MaxAge)
}

// Scopes returns the configured scopes as a slice.
func (o OAuthConfig) Scopes() []string {
	return strings.Fields(o.Scope)
}

// MissingForLogin returns the environment variable names required for login that are empty.
func (o OAuthConfig) MissingForLogin() []string {
	var missing []string
	if o.ProviderBaseURL == "" {
		missing = append(missing, "OAUTH_PROVIDER_BASE_URL")
	}
	if o.ClientID == "" {
		missing = append(missing, "OAUTH_CLIENT_ID")
	}
	if o.RedirectURI == "" {
		missing = append(missing, "OAUTH_REDIRECT_URI")
	}
	return missing
}

// BackendConfig describes the application backend that issues tokens and roles.
type BackendConfig struct {
	BaseURL string `env:"BASE_URL"`

	// Timeout bounds backend calls. Zero leaves calls unbounded.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"0"`
}

// Sanitize trims the base URL and clamps negative timeouts.
func (b *BackendConfig) Sanitize() {
	b.BaseURL = strings.TrimRight(strings.TrimSpace(b.BaseURL), "/")
	if b.Timeout < 0 {
		b.Timeout = 0
	}
}

// DefaultUsernameExpr selects the display username from decoded token claims.
const DefaultUsernameExpr = "preferred_username || username || email"

// ClaimsConfig controls how display fields are derived from decoded token claims.
type ClaimsConfig struct {
	// UsernameExpr is a JMESPath expression evaluated against the claims payload.
	UsernameExpr string `env:"USERNAME_EXPR" envDefault:"preferred_username || username || email"`
}

// Sanitize restores the default expression when unset.
func (c *ClaimsConfig) Sanitize() {
	c.UsernameExpr = strings.TrimSpace(c.UsernameExpr)
	if c.UsernameExpr == "" {
		c.UsernameExpr = DefaultUsernameExpr
	}
}

// RolesConfig maps backend groups to roles when the backend omits the role.
type RolesConfig struct {
	AdminGroup string `env:"ADMIN_GROUP"`
	UserGroup  string `env:"USER_GROUP"`
}

// Sanitize trims group names.
func (r *RolesConfig) Sanitize() {
	r.AdminGroup = strings.TrimSpace(r.AdminGroup)
	r.UserGroup = strings.TrimSpace(r.UserGroup)
}
