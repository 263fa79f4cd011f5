package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync/atomic"

	domainauth "github.com/familiez/familiez-auth/internal/domain/auth"
	apperrors "github.com/familiez/familiez-auth/internal/errors"
)

// CallbackExchanger completes one login attempt. Each instance handles at most one
// callback; later invocations fail with CallbackAlreadyHandled and perform no I/O.
type CallbackExchanger struct {
	m    *SessionManager
	used atomic.Bool
}

// NewCallbackExchanger returns an exchanger for the next provider callback.
func (m *SessionManager) NewCallbackExchanger() *CallbackExchanger {
	return &CallbackExchanger{m: m}
}

// Handle validates state against the stored CSRF state, exchanges code for an
// access token and stores the new session. The CSRF state is removed from every
// tier whatever the outcome.
func (c *CallbackExchanger) Handle(ctx context.Context, code, state string) (*domainauth.Session, error) {
	if !c.used.CompareAndSwap(false, true) {
		return nil, apperrors.New(apperrors.ErrCodeCallbackAlreadyHandled, "callback already handled")
	}
	return c.m.completeLogin(ctx, code, state)
}

func (m *SessionManager) completeLogin(ctx context.Context, code, state string) (*domainauth.Session, error) {
	defer func() {
		if err := m.clearCSRF(ctx); err != nil {
			m.logger.WarnContext(ctx, "clear login state failed", "error", err)
		}
	}()

	if code == "" || state == "" {
		return nil, apperrors.New(apperrors.ErrCodeMissingAuthorizationData, "authorization code and state are required")
	}

	expected, ok := readFirst(ctx, m.logger, m.tiers.csrfReadOrder(), StateKey)
	if !ok {
		m.logger.WarnContext(ctx, "callback rejected", "reason", apperrors.ReasonStateNotFound)
		return nil, apperrors.InvalidState(apperrors.ReasonStateNotFound)
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(state)) != 1 {
		m.logger.WarnContext(ctx, "callback rejected", "reason", apperrors.ReasonStateMismatch)
		return nil, apperrors.InvalidState(apperrors.ReasonStateMismatch)
	}

	token, err := m.tokens.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	if err := m.storeToken(ctx, token); err != nil {
		return nil, err
	}
	m.logger.InfoContext(ctx, "login completed")
	m.events.Publish(Event{Kind: EventSessionChanged})

	// Role data is best effort; the session stands without it.
	m.FetchRole(ctx)

	return &domainauth.Session{AccessToken: token, Claims: m.decodeClaims(ctx, token)}, nil
}
