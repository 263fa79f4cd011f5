package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/familiez/familiez-auth/config"
	"github.com/familiez/familiez-auth/internal/adapters/backend"
	"github.com/familiez/familiez-auth/internal/bootstrap"
	domainauth "github.com/familiez/familiez-auth/internal/domain/auth"
	httpx "github.com/familiez/familiez-auth/internal/http"
	"github.com/familiez/familiez-auth/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "header.eyJwcmVmZXJyZWRfdXNlcm5hbWUiOiJhbGljZSJ9.sig"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+backend.CallbackPath, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["code"] != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": testToken})
	})
	mux.HandleFunc("GET "+backend.MePath, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(domainauth.RoleRecord{
			Username: "alice", Role: domainauth.RoleUser, IsUser: true, Groups: []string{"family"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestContext(t *testing.T, backendURL string) (*commandContext, *bytes.Buffer) {
	t.Helper()
	cfg := config.AppConfig{
		OAuth: config.OAuthConfig{
			ProviderBaseURL: "https://sso.example.com",
			ClientID:        "familiez-web",
			RedirectURI:     "http://127.0.0.1:0/auth/callback",
			Scope:           "openid email",
			Prompt:          config.DefaultPrompt,
		},
		Backend: config.BackendConfig{BaseURL: backendURL, Timeout: 5 * time.Second},
		Claims:  config.ClaimsConfig{UsernameExpr: config.DefaultUsernameExpr},
		Storage: config.StorageConfig{Dir: t.TempDir(), StateTTL: time.Minute},
		App:     config.AppURLConfig{EntryURL: "http://localhost:5173/"},
		HTTP:    config.HTTPConfig{Navigator: config.NavigatorPrint, CallbackAddr: "127.0.0.1:0"},
	}
	cfg.Sanitize()

	var out bytes.Buffer
	return &commandContext{
		Ctx:    context.Background(),
		Logger: discardLogger(),
		Config: cfg,
		Out:    &out,
	}, &out
}

// printedURL returns the last navigation target written by the print navigator.
func printedURL(t *testing.T, out string) *url.URL {
	t.Helper()
	var target string
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "http") {
			target = line
		}
	}
	require.NotEmpty(t, target, "no URL in output: %s", out)
	u, err := url.Parse(target)
	require.NoError(t, err)
	return u
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))

	usage := buf.String()
	assert.Contains(t, usage, "Usage: familiez-auth <command>")
	for name := range commands() {
		assert.Contains(t, usage, name)
	}
}

func TestCommandsAreNamedByKey(t *testing.T) {
	for key, cmd := range commands() {
		assert.Equal(t, key, cmd.name)
		assert.NotEmpty(t, cmd.description)
		assert.NotNil(t, cmd.run)
	}
}

func TestParseCallbackURL(t *testing.T) {
	code, state, err := parseCallbackURL("http://127.0.0.1:8976/auth/callback?code=abc&state=xyz")
	require.NoError(t, err)
	assert.Equal(t, "abc", code)
	assert.Equal(t, "xyz", state)

	_, _, err = parseCallbackURL("http://127.0.0.1:8976/auth/callback?error=access_denied")
	require.ErrorIs(t, err, httpx.ErrProviderDenied)

	_, _, err = parseCallbackURL("http://[::1")
	require.Error(t, err)
}

func TestRunCallback_RequiresURL(t *testing.T) {
	c, _ := newTestContext(t, "http://localhost:1")
	err := runCallback(c, nil)
	require.ErrorIs(t, err, errMissingCallbackURL)
}

func TestWhoami_NotSignedIn(t *testing.T) {
	c, _ := newTestContext(t, newBackend(t).URL)
	err := runWhoami(c, nil)
	require.ErrorIs(t, err, errNotSignedIn)
}

func TestRefreshRole_NotSignedIn(t *testing.T) {
	c, _ := newTestContext(t, newBackend(t).URL)
	err := runRefreshRole(c, nil)
	require.ErrorIs(t, err, errNotSignedIn)
}

func TestManualLoginFlow(t *testing.T) {
	c, out := newTestContext(t, newBackend(t).URL)

	require.NoError(t, runLogin(c, []string{"--no-server"}))
	authURL := printedURL(t, out.String())
	assert.Equal(t, "sso.example.com", authURL.Host)
	assert.Equal(t, domainauth.AuthorizePath, authURL.Path)
	state := authURL.Query().Get("state")
	require.NotEmpty(t, state)

	out.Reset()
	redirect := "http://127.0.0.1:8976/auth/callback?code=good-code&state=" + url.QueryEscape(state)
	require.NoError(t, runCallback(c, []string{redirect}))
	assert.Contains(t, out.String(), "Signed in as alice.")

	out.Reset()
	require.NoError(t, runWhoami(c, []string{"--json"}))
	var info domainauth.UserInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, "alice", info.Username)
	assert.Equal(t, domainauth.RoleUser, info.Role)
	assert.Equal(t, []string{"family"}, info.Groups)

	out.Reset()
	require.NoError(t, runRefreshRole(c, nil))
	assert.Equal(t, "role: user\n", out.String())

	out.Reset()
	require.NoError(t, runRefreshRole(c, []string{"--require-group", "family"}))
	err := runRefreshRole(c, []string{"--require-group", "parents"})
	require.ErrorIs(t, err, errNotInGroup)

	out.Reset()
	require.NoError(t, runStatus(c, nil))
	assert.Contains(t, out.String(), "true")
	assert.Contains(t, out.String(), "not configured")

	out.Reset()
	require.NoError(t, runLogout(c, nil))
	assert.Contains(t, out.String(), "Signed out.")
	require.ErrorIs(t, runWhoami(c, nil), errNotSignedIn)
}

func TestManualLoginFlow_ReplayedCallbackRejected(t *testing.T) {
	c, out := newTestContext(t, newBackend(t).URL)

	require.NoError(t, runLogin(c, []string{"--no-server"}))
	state := printedURL(t, out.String()).Query().Get("state")
	redirect := "http://127.0.0.1:8976/auth/callback?code=good-code&state=" + url.QueryEscape(state)
	require.NoError(t, runCallback(c, []string{redirect}))

	// The state was consumed by the first callback.
	err := runCallback(c, []string{redirect})
	require.Error(t, err)
}

type completerFunc func(ctx context.Context, code, state string) (*domainauth.Session, error)

func (f completerFunc) Handle(ctx context.Context, code, state string) (*domainauth.Session, error) {
	return f(ctx, code, state)
}

func newCallbackServer(t *testing.T, completer httpx.Completer) (*httpx.CallbackServer, *httpx.CallbackHandlers) {
	t.Helper()
	cfg := &config.AppConfig{HTTP: config.HTTPConfig{CallbackAddr: "127.0.0.1:0"}}
	srv, handlers, err := bootstrap.NewCallbackServer(bootstrap.CallbackServerConfig{
		Config:    cfg,
		Completer: completer,
		Logger:    discardLogger(),
	})
	require.NoError(t, err)
	return srv, handlers
}

func TestAwaitLogin_ReturnsCallbackOutcome(t *testing.T) {
	completer := completerFunc(func(_ context.Context, code, _ string) (*domainauth.Session, error) {
		return &domainauth.Session{AccessToken: "tok-" + code}, nil
	})
	srv, handlers := newCallbackServer(t, completer)
	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		Timeout:       5 * time.Second,
	}

	login := func(context.Context) (*service.LoginResult, error) {
		go func() {
			resp, err := client.Get("http://" + srv.Addr() + "/auth/callback?code=c1&state=s1")
			if err == nil {
				_ = resp.Body.Close()
			}
		}()
		return &service.LoginResult{}, nil
	}

	res, err := awaitLogin(context.Background(), 5*time.Second, srv, handlers, login)
	require.NoError(t, err)
	require.NotNil(t, res.Session)
	assert.Equal(t, "tok-c1", res.Session.AccessToken)
}

func TestAwaitLogin_LoginError(t *testing.T) {
	srv, handlers := newCallbackServer(t, completerFunc(func(context.Context, string, string) (*domainauth.Session, error) {
		return nil, nil
	}))
	loginErr := errors.New("provider not configured")

	_, err := awaitLogin(context.Background(), 5*time.Second, srv, handlers,
		func(context.Context) (*service.LoginResult, error) { return nil, loginErr })
	require.ErrorIs(t, err, loginErr)
}

func TestAwaitLogin_Timeout(t *testing.T) {
	srv, handlers := newCallbackServer(t, completerFunc(func(context.Context, string, string) (*domainauth.Session, error) {
		return nil, nil
	}))

	_, err := awaitLogin(context.Background(), 50*time.Millisecond, srv, handlers,
		func(context.Context) (*service.LoginResult, error) { return &service.LoginResult{}, nil })
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
