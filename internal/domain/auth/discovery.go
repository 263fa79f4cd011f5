package auth

import "strings"

// Well-known discovery document keys.
const (
	DiscoveryAuthorizationEndpoint = "authorization_endpoint"
	DiscoveryEndSessionEndpoint    = "end_session_endpoint"
)

// AuthorizePath is appended to the provider base URL when no authorization endpoint is published.
const AuthorizePath = "/oauth/authorize"

// FallbackAuthorizationEndpoint builds the authorization endpoint from the provider base URL.
func FallbackAuthorizationEndpoint(providerBaseURL string) string {
	return strings.TrimRight(providerBaseURL, "/") + AuthorizePath
}

// DiscoveryDocument is the provider metadata document. Unknown fields are kept verbatim.
type DiscoveryDocument map[string]any

// String returns the string value stored under key, or "".
func (d DiscoveryDocument) String(key string) string {
	if d == nil {
		return ""
	}
	s, _ := d[key].(string)
	return s
}

// AuthorizationEndpoint returns the authorization endpoint, or "" when absent.
func (d DiscoveryDocument) AuthorizationEndpoint() string {
	return d.String(DiscoveryAuthorizationEndpoint)
}

// EndSessionEndpoint returns the logout endpoint, or "" when absent.
func (d DiscoveryDocument) EndSessionEndpoint() string {
	return d.String(DiscoveryEndSessionEndpoint)
}
