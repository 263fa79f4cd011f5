package service

import (
	"context"
	"time"
)

// logoutNotifyTimeout bounds the provider logout request.
const logoutNotifyTimeout = 5 * time.Second

// Logout clears the local session, tells the provider in the background and
// navigates to the application entry URL. It does not wait on the network.
func (m *SessionManager) Logout(ctx context.Context) {
	if err := m.Clear(ctx); err != nil {
		m.logger.WarnContext(ctx, "clear session during logout failed", "error", err)
	}

	if m.notifier != nil {
		m.background.Add(1)
		go func() {
			defer m.background.Done()
			m.notifyProvider(context.WithoutCancel(ctx))
		}()
	}

	if m.app.EntryURL == "" {
		return
	}
	if err := m.navigator.Navigate(ctx, m.app.EntryURL); err != nil {
		m.logger.WarnContext(ctx, "navigate to entry URL failed", "error", err)
	}
}

// notifyProvider sends the logout request. Failures are logged only.
func (m *SessionManager) notifyProvider(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, logoutNotifyTimeout)
	defer cancel()

	target := m.logoutURL(ctx)
	if target == "" {
		m.logger.DebugContext(ctx, "no provider logout endpoint; skipping notification")
		return
	}
	if err := m.notifier.NotifyLogout(ctx, target); err != nil {
		m.logger.DebugContext(ctx, "provider logout notification failed", "url", target, "error", err)
		return
	}
	m.logger.DebugContext(ctx, "provider notified of logout", "url", target)
}

// logoutURL picks the discovery end_session_endpoint, else the configured URL.
func (m *SessionManager) logoutURL(ctx context.Context) string {
	if m.discovery != nil {
		doc, err := m.discovery.Resolve(ctx)
		if err != nil {
			m.logger.DebugContext(ctx, "discovery unavailable for logout", "error", err)
		} else if ep := doc.EndSessionEndpoint(); ep != "" {
			return ep
		}
	}
	return m.oauth.LogoutURL
}
