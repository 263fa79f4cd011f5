package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/familiez/familiez-auth/internal/adapters/authroles"
	domainauth "github.com/familiez/familiez-auth/internal/domain/auth"
	apperrors "github.com/familiez/familiez-auth/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{BaseURL: srv.URL + "/", HTTPClient: srv.Client()})
}

func TestClient_ExchangeCode_Success(t *testing.T) {
	var gotBody map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, CallbackPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "t1"})
	})

	token, err := client.ExchangeCode(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "t1", token)
	assert.Equal(t, map[string]string{"code": "abc"}, gotBody)
}

func TestClient_ExchangeCode_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode apperrors.ErrorCode
	}{
		{name: "non-success status", status: http.StatusBadGateway, body: `{"detail":"idp down"}`, wantCode: apperrors.ErrCodeTokenExchangeFailed},
		{name: "missing access token", status: http.StatusOK, body: `{}`, wantCode: apperrors.ErrCodeMalformedTokenResponse},
		{name: "invalid json", status: http.StatusOK, body: `not json`, wantCode: apperrors.ErrCodeMalformedTokenResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.ExchangeCode(context.Background(), "abc")
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.GetCode(err))
		})
	}
}

func TestClient_MissingBaseURL(t *testing.T) {
	client := NewClient(ClientConfig{})

	_, err := client.ExchangeCode(context.Background(), "abc")
	assert.True(t, apperrors.IsConfigurationMissing(err))

	_, err = client.FetchRole(context.Background(), "t1")
	assert.True(t, apperrors.IsConfigurationMissing(err))
}

func TestClient_FetchRole(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, MePath, r.URL.Path)
		assert.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"username":"alice","role":"admin","is_admin":true,"is_user":true,"groups":["familie"]}`))
	})

	rec, err := client.FetchRole(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleRecord{
		Username: "alice",
		Role:     domainauth.RoleAdmin,
		IsAdmin:  true,
		IsUser:   true,
		Groups:   []string{"familie"},
	}, rec)
}

func TestClient_FetchRole_NormalizesMissingRole(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"username":"bob","is_user":true}`))
	})

	rec, err := client.FetchRole(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleUser, rec.Role)
	assert.NotNil(t, rec.Groups)
}

func TestClient_FetchRole_RoleFromGroups(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"username":"carol","groups":["ouders","familie"]}`))
	}))
	t.Cleanup(srv.Close)
	client := NewClient(ClientConfig{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
		RoleMapper: authroles.StaticRoleMapper{AdminGroup: "ouders", UserGroup: "familie"},
	})

	rec, err := client.FetchRole(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, rec.Role)
	assert.True(t, rec.IsAdmin)
	assert.True(t, rec.IsUser)
}

func TestClient_FetchRole_FlagsWinOverGroups(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"username":"dave","is_user":true,"groups":["ouders"]}`))
	}))
	t.Cleanup(srv.Close)
	client := NewClient(ClientConfig{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
		RoleMapper: authroles.StaticRoleMapper{AdminGroup: "ouders"},
	})

	rec, err := client.FetchRole(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleUser, rec.Role)
	assert.False(t, rec.IsAdmin)
}

func TestClient_FetchRole_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.FetchRole(context.Background(), "t1")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeRoleFetchFailed, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "status 500")
}
