// Package backend provides the HTTP client for the application backend's auth endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/familiez/familiez-auth/internal/domain/auth"
	apperrors "github.com/familiez/familiez-auth/internal/errors"
	"github.com/familiez/familiez-auth/internal/ports"
)

// Backend endpoint paths, relative to the configured base URL.
const (
	CallbackPath = "/auth/callback"
	MePath       = "/auth/me"
)

// maxErrorBody bounds how much of an error response is kept for diagnostics.
const maxErrorBody = 512

// Client talks to the backend's /auth endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	roles      ports.RoleMapper
	logger     *slog.Logger
}

// ClientConfig holds configuration for the backend client.
type ClientConfig struct {
	BaseURL    string
	HTTPClient *http.Client // Optional, defaults to a client without timeout
	// RoleMapper derives a role from groups when the backend sends neither a role nor flags.
	RoleMapper ports.RoleMapper
	Logger     *slog.Logger
}

// NewClient creates a backend client. An empty BaseURL is reported when a call is made.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		roles:      cfg.RoleMapper,
		logger:     logger,
	}
}

// BearerHeader formats an Authorization header value for token.
func BearerHeader(token string) string {
	return "Bearer " + token
}

type exchangeRequest struct {
	Code string `json:"code"`
}

type exchangeResponse struct {
	AccessToken string `json:"access_token"`
}

// ExchangeCode posts the authorization code to the backend and returns the issued access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	if c.baseURL == "" {
		return "", apperrors.ConfigurationMissing("BACKEND_BASE_URL")
	}

	body, err := json.Marshal(exchangeRequest{Code: code})
	if err != nil {
		return "", fmt.Errorf("marshal exchange request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+CallbackPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeTokenExchangeFailed, "token exchange failed")
	}
	defer closeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &apperrors.AppError{
			Code:    apperrors.ErrCodeTokenExchangeFailed,
			Message: fmt.Sprintf("token exchange failed: status %d", resp.StatusCode),
			Cause:   statusError(resp),
		}
	}

	var out exchangeResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&out); decodeErr != nil {
		return "", apperrors.Wrap(decodeErr, apperrors.ErrCodeMalformedTokenResponse, "token response is not valid JSON")
	}
	if out.AccessToken == "" {
		return "", apperrors.New(apperrors.ErrCodeMalformedTokenResponse, "token response missing access_token")
	}
	return out.AccessToken, nil
}

// FetchRole calls the backend identity endpoint with the bearer token attached.
func (c *Client) FetchRole(ctx context.Context, accessToken string) (domainauth.RoleRecord, error) {
	if c.baseURL == "" {
		return domainauth.RoleRecord{}, apperrors.ConfigurationMissing("BACKEND_BASE_URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+MePath, nil)
	if err != nil {
		return domainauth.RoleRecord{}, fmt.Errorf("build role request: %w", err)
	}
	req.Header.Set("Authorization", BearerHeader(accessToken))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainauth.RoleRecord{}, apperrors.Wrap(err, apperrors.ErrCodeRoleFetchFailed, "fetch role")
	}
	defer closeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domainauth.RoleRecord{}, &apperrors.AppError{
			Code:    apperrors.ErrCodeRoleFetchFailed,
			Message: fmt.Sprintf("fetch role: status %d", resp.StatusCode),
			Cause:   statusError(resp),
		}
	}

	var rec domainauth.RoleRecord
	if decodeErr := json.NewDecoder(resp.Body).Decode(&rec); decodeErr != nil {
		return domainauth.RoleRecord{}, apperrors.Wrap(decodeErr, apperrors.ErrCodeRoleFetchFailed, "decode role response")
	}
	return c.normalizeRole(rec), nil
}

// normalizeRole fills a missing role from the boolean flags, then from groups,
// and never yields nil groups.
func (c *Client) normalizeRole(rec domainauth.RoleRecord) domainauth.RoleRecord {
	if rec.Role == "" {
		switch {
		case rec.IsAdmin:
			rec.Role = domainauth.RoleAdmin
		case rec.IsUser:
			rec.Role = domainauth.RoleUser
		case c.roles != nil:
			rec.Role = c.roles.Map(rec.Groups)
			rec.IsAdmin = rec.Role == domainauth.RoleAdmin
			rec.IsUser = rec.Role == domainauth.RoleUser || rec.IsAdmin
		default:
			rec.Role = domainauth.RoleNone
		}
	}
	if rec.Groups == nil {
		rec.Groups = []string{}
	}
	return rec
}

func statusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("backend responded %s: %s", resp.Status, msg)
}

func closeBody(body io.ReadCloser) {
	// Drain for connection reuse.
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}
