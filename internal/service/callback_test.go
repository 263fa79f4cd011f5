package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	domainauth "github.com/familiez/familiez-auth/internal/domain/auth"
	apperrors "github.com/familiez/familiez-auth/internal/errors"
	authmocks "github.com/familiez/familiez-auth/internal/mocks/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// beginLogin runs Login and returns the state it stored.
func beginLogin(t *testing.T, f *fixture) string {
	t.Helper()
	res, err := f.mgr.Login(context.Background())
	require.NoError(t, err)
	return res.State
}

func assertCSRFCleared(t *testing.T, f *fixture) {
	t.Helper()
	for _, tier := range []*authmocks.MemoryTier{f.ephemeral, f.bounded, f.durable} {
		assert.False(t, tier.Has(StateKey), "state left in %s", tier.Name())
		assert.False(t, tier.Has(VerifierKey), "verifier left in %s", tier.Name())
	}
}

func TestCallback_Success(t *testing.T) {
	f := newFixture(t)
	state := beginLogin(t, f)
	ctx := context.Background()

	sess, err := f.mgr.NewCallbackExchanger().Handle(ctx, "auth-code", state)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, f.backend.Token, sess.AccessToken)
	require.NotNil(t, sess.Claims)
	assert.Equal(t, "alice", sess.Claims.Username)

	tok, ok := f.mgr.GetToken(ctx)
	require.True(t, ok)
	assert.Equal(t, f.backend.Token, tok)
	assertCSRFCleared(t, f)

	// Role resolution runs after the exchange and is cached.
	rec := f.mgr.CachedRole(ctx)
	require.NotNil(t, rec)
	assert.Equal(t, domainauth.RoleAdmin, rec.Role)
	assert.Equal(t, 1, f.backend.FetchCalls())

	info := f.mgr.GetUserInfo(ctx)
	require.NotNil(t, info)
	assert.Equal(t, "Alice", info.GivenName)
	assert.True(t, info.IsAdmin)
	assert.Equal(t, []EventKind{EventSessionChanged, EventSessionChanged}, f.kinds())
}

func TestCallback_StateFoundInLaterTier(t *testing.T) {
	f := newFixture(t)
	state := beginLogin(t, f)
	ctx := context.Background()
	require.NoError(t, f.bounded.Delete(ctx, StateKey))
	require.NoError(t, f.ephemeral.Delete(ctx, StateKey))

	_, err := f.mgr.NewCallbackExchanger().Handle(ctx, "auth-code", state)
	require.NoError(t, err)
	assert.True(t, f.mgr.IsAuthenticated(ctx))
}

func TestCallback_StateReadErrorFallsThrough(t *testing.T) {
	f := newFixture(t)
	state := beginLogin(t, f)
	f.bounded.FailReads = true

	_, err := f.mgr.NewCallbackExchanger().Handle(context.Background(), "auth-code", state)
	require.NoError(t, err)
}

func TestCallback_StateMismatch(t *testing.T) {
	f := newFixture(t)
	beginLogin(t, f)
	ctx := context.Background()
	f.storeSession(t, "previous-token", nil)

	sess, err := f.mgr.NewCallbackExchanger().Handle(ctx, "auth-code", "forged-state")
	require.Error(t, err)
	assert.Nil(t, sess)
	assert.True(t, apperrors.IsInvalidState(err))
	assert.Equal(t, apperrors.ReasonStateMismatch, apperrors.GetReason(err))

	tok, ok := f.mgr.GetToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "previous-token", tok, "a rejected callback leaves the session untouched")
	assert.Zero(t, f.backend.ExchangeCalls())
	assertCSRFCleared(t, f)
}

func TestCallback_StateNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.mgr.NewCallbackExchanger().Handle(context.Background(), "auth-code", "some-state")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidState(err))
	assert.Equal(t, apperrors.ReasonStateNotFound, apperrors.GetReason(err))
	assert.Zero(t, f.backend.ExchangeCalls())
}

func TestCallback_MissingAuthorizationData(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		state string
	}{
		{name: "no code", state: "s"},
		{name: "no state", code: "c"},
		{name: "neither"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			beginLogin(t, f)

			_, err := f.mgr.NewCallbackExchanger().Handle(context.Background(), tt.code, tt.state)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMissingAuthorizationData))
			assert.Zero(t, f.backend.ExchangeCalls())
		})
	}
}

func TestCallback_ExchangeFailure(t *testing.T) {
	exchangeErr := apperrors.New(apperrors.ErrCodeTokenExchangeFailed, "backend said no")
	f := newFixture(t)
	f.backend.ExchangeFunc = func(context.Context, string) (string, error) { return "", exchangeErr }
	state := beginLogin(t, f)
	ctx := context.Background()

	_, err := f.mgr.NewCallbackExchanger().Handle(ctx, "auth-code", state)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTokenExchangeFailed))
	assert.False(t, f.mgr.IsAuthenticated(ctx))
	assert.Zero(t, f.backend.FetchCalls())
	assertCSRFCleared(t, f)
}

func TestCallback_TokenStoreFailure(t *testing.T) {
	f := newFixture(t)
	state := beginLogin(t, f)
	f.durable.FailWrites = true

	_, err := f.mgr.NewCallbackExchanger().Handle(context.Background(), "auth-code", state)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInternal))
}

func TestCallback_RoleFailureKeepsSession(t *testing.T) {
	f := newFixture(t)
	f.backend.FetchFunc = func(context.Context, string) (domainauth.RoleRecord, error) {
		return domainauth.RoleRecord{}, apperrors.New(apperrors.ErrCodeRoleFetchFailed, "status 500")
	}
	state := beginLogin(t, f)
	ctx := context.Background()

	sess, err := f.mgr.NewCallbackExchanger().Handle(ctx, "auth-code", state)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.True(t, f.mgr.IsAuthenticated(ctx))
	assert.Nil(t, f.mgr.CachedRole(ctx))

	info := f.mgr.GetUserInfo(ctx)
	require.NotNil(t, info)
	assert.Equal(t, domainauth.RoleNone, info.Role)
	assert.Equal(t, []EventKind{EventSessionChanged}, f.kinds())
}

func TestCallback_StoresExchangedTokenOnce(t *testing.T) {
	f := newFixture(t)
	var gotCode string
	f.backend.ExchangeFunc = func(_ context.Context, code string) (string, error) {
		gotCode = code
		return "t1", nil
	}
	f.backend.FetchFunc = func(context.Context, string) (domainauth.RoleRecord, error) {
		return domainauth.RoleRecord{}, apperrors.New(apperrors.ErrCodeRoleFetchFailed, "status 500")
	}
	state := beginLogin(t, f)
	ctx := context.Background()

	sess, err := f.mgr.NewCallbackExchanger().Handle(ctx, "abc", state)
	require.NoError(t, err)
	assert.Equal(t, "abc", gotCode)
	assert.Equal(t, "t1", sess.AccessToken)
	assert.Nil(t, sess.Claims, "t1 is not a decodable token")

	tok, ok := f.mgr.GetToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "t1", tok)
	assert.Equal(t, []EventKind{EventSessionChanged}, f.kinds())
}

func TestCallback_MalformedTokenResponseKeepsPriorSession(t *testing.T) {
	f := newFixture(t)
	f.storeSession(t, "prior", &domainauth.RoleRecord{Role: domainauth.RoleUser, IsUser: true})
	f.backend.ExchangeFunc = func(context.Context, string) (string, error) {
		return "", apperrors.New(apperrors.ErrCodeMalformedTokenResponse, "token response missing access_token")
	}
	state := beginLogin(t, f)
	ctx := context.Background()

	_, err := f.mgr.NewCallbackExchanger().Handle(ctx, "auth-code", state)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMalformedTokenResponse))

	tok, ok := f.mgr.GetToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "prior", tok)
	rec := f.mgr.CachedRole(ctx)
	require.NotNil(t, rec)
	assert.Equal(t, domainauth.RoleUser, rec.Role)
	assert.Empty(t, f.events)
	assert.Zero(t, f.backend.FetchCalls())
}

func TestCallback_NewTokenDropsPreviousRole(t *testing.T) {
	f := newFixture(t)
	f.storeSession(t, "old-token", &domainauth.RoleRecord{Role: domainauth.RoleAdmin, IsAdmin: true})
	f.backend.FetchFunc = func(context.Context, string) (domainauth.RoleRecord, error) {
		return domainauth.RoleRecord{}, errors.New("down")
	}
	state := beginLogin(t, f)

	_, err := f.mgr.NewCallbackExchanger().Handle(context.Background(), "auth-code", state)
	require.NoError(t, err)
	assert.Nil(t, f.mgr.CachedRole(context.Background()))
}

func TestCallback_OneShot(t *testing.T) {
	f := newFixture(t)
	state := beginLogin(t, f)
	ctx := context.Background()
	exchanger := f.mgr.NewCallbackExchanger()

	_, err := exchanger.Handle(ctx, "auth-code", state)
	require.NoError(t, err)

	_, err = exchanger.Handle(ctx, "auth-code", state)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCallbackAlreadyHandled))
	assert.Equal(t, 1, f.backend.ExchangeCalls())
}

func TestCallback_OneShotConcurrent(t *testing.T) {
	f := newFixture(t)
	f.backend.FetchFunc = func(context.Context, string) (domainauth.RoleRecord, error) {
		return domainauth.RoleRecord{}, apperrors.New(apperrors.ErrCodeRoleFetchFailed, "status 500")
	}
	state := beginLogin(t, f)
	exchanger := f.mgr.NewCallbackExchanger()

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		duplicate int
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := exchanger.Handle(context.Background(), "auth-code", state)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperrors.IsCode(err, apperrors.ErrCodeCallbackAlreadyHandled):
				duplicate++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, duplicate)
	assert.Equal(t, 1, f.backend.ExchangeCalls())
	assert.Equal(t, 1, f.backend.FetchCalls())
}

func TestCallback_GuardConsumedByInvalidInput(t *testing.T) {
	f := newFixture(t)
	state := beginLogin(t, f)
	exchanger := f.mgr.NewCallbackExchanger()

	_, err := exchanger.Handle(context.Background(), "", state)
	require.Error(t, err)

	_, err = exchanger.Handle(context.Background(), "auth-code", state)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCallbackAlreadyHandled))
}
