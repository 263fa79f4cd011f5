package backend

import (
	"context"
	"log/slog"
	"net/http"
)

// SessionExpiredMessage is the reason raised when the backend rejects the token.
const SessionExpiredMessage = "Your session has expired. Please sign in again."

// SessionSource supplies the bearer token and receives invalidation signals.
type SessionSource interface {
	GetToken(ctx context.Context) (string, bool)
	Invalidate(ctx context.Context, reason string)
}

// AuthTransport attaches the stored bearer token to every request. A 401 response
// invalidates the session; the response is still returned to the caller unchanged.
type AuthTransport struct {
	Base    http.RoundTripper
	Session SessionSource
	Logger  *slog.Logger
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *AuthTransport) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	out := req
	if token, ok := t.Session.GetToken(ctx); ok {
		out = req.Clone(ctx)
		out.Header.Set("Authorization", BearerHeader(token))
	} else {
		t.logger().WarnContext(ctx, "no auth token found; sending request unauthenticated", "url", req.URL.Redacted())
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		t.logger().WarnContext(ctx, "backend rejected auth token, clearing session", "url", req.URL.Redacted())
		t.Session.Invalidate(ctx, SessionExpiredMessage)
	}
	return resp, nil
}

// NewAuthorizedClient returns an http.Client whose requests carry the session token.
func NewAuthorizedClient(base *http.Client, session SessionSource, logger *slog.Logger) *http.Client {
	if base == nil {
		base = &http.Client{}
	}
	c := *base
	c.Transport = &AuthTransport{Base: base.Transport, Session: session, Logger: logger}
	return &c
}
