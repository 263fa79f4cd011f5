package service

import (
	"context"

	domainauth "github.com/familiez/familiez-auth/internal/domain/auth"
)

// FetchRole asks the backend for the role record of the current session and caches it.
// It never fails: without a session it returns nil, and a backend failure keeps any
// previously cached record and returns nil.
func (m *SessionManager) FetchRole(ctx context.Context) *domainauth.RoleRecord {
	token, ok := m.GetToken(ctx)
	if !ok {
		m.logger.WarnContext(ctx, "role fetch skipped: no access token")
		return nil
	}

	rec, err := m.roles.FetchRole(ctx, token)
	if err != nil {
		m.logger.WarnContext(ctx, "role fetch failed", "error", err)
		return nil
	}
	if rec.Groups == nil {
		rec.Groups = []string{}
	}

	// The session may have been cleared or replaced while the request was in flight.
	if current, ok := m.GetToken(ctx); !ok || current != token {
		m.logger.InfoContext(ctx, "discarding role for superseded session")
		return nil
	}

	if err := m.storeRole(ctx, rec); err != nil {
		m.logger.WarnContext(ctx, "cache role record failed", "error", err)
		return &rec
	}
	m.events.Publish(Event{Kind: EventSessionChanged})
	return &rec
}
