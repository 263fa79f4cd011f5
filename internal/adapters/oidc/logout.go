package oidc

import (
	"context"
	"fmt"
	"net/http"
)

// LogoutNotifier calls the provider's logout endpoint.
type LogoutNotifier struct {
	httpClient *http.Client
}

// NewLogoutNotifier creates a notifier. A nil client uses http.DefaultClient.
func NewLogoutNotifier(httpClient *http.Client) *LogoutNotifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &LogoutNotifier{httpClient: httpClient}
}

// NotifyLogout issues a GET to logoutURL. Any non-2xx/3xx status is an error.
func (n *LogoutNotifier) NotifyLogout(ctx context.Context, logoutURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, logoutURL, nil)
	if err != nil {
		return fmt.Errorf("build logout request: %w", err)
	}
	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify provider logout: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("notify provider logout: status %d", resp.StatusCode)
	}
	return nil
}
