package httpx

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	domainauth "github.com/familiez/familiez-auth/internal/domain/auth"
	apperrors "github.com/familiez/familiez-auth/internal/errors"
)

// Completer finishes a login attempt from the provider callback parameters.
type Completer interface {
	Handle(ctx context.Context, code, state string) (*domainauth.Session, error)
}

// SessionChecker reports whether a session is currently stored.
type SessionChecker interface {
	IsAuthenticated(ctx context.Context) bool
}

// CallbackResult is the outcome of the first callback request.
type CallbackResult struct {
	Session *domainauth.Session
	Err     error
}

// FailureMessage is shown to the user when a callback cannot complete the login.
const FailureMessage = "Authentication failed. Please try again."

var failurePage = template.Must(template.New("failure").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Sign-in failed</title></head>
<body>
<p>{{.Message}}</p>
{{if .EntryURL}}<p><a href="{{.EntryURL}}">Return to the application</a></p>{{end}}
</body>
</html>
`))

// ErrProviderDenied is reported when the provider redirected back with an error parameter.
var ErrProviderDenied = errors.New("identity provider returned an error")

// CallbackHandlers serves the redirect target registered with the identity provider.
type CallbackHandlers struct {
	Completer Completer
	// Session decides where a repeated callback goes. Without it a repeat is
	// treated as a reload after success.
	Session SessionChecker
	// PostLoginURL is where a successful login is redirected.
	PostLoginURL string
	// EntryURL is linked from the failure page.
	EntryURL string
	Logger   *slog.Logger

	once    sync.Once
	results chan CallbackResult
}

func (h *CallbackHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Results delivers the outcome of the first completed callback. Buffered; never closed.
func (h *CallbackHandlers) Results() <-chan CallbackResult {
	h.init()
	return h.results
}

func (h *CallbackHandlers) init() {
	h.once.Do(func() { h.results = make(chan CallbackResult, 1) })
}

func (h *CallbackHandlers) report(res CallbackResult) {
	h.init()
	select {
	case h.results <- res:
	default:
	}
}

// Callback handles the provider redirect.
// GET <callback path>?code=<code>&state=<state>.
func (h *CallbackHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx := r.Context()

	if providerErr := q.Get("error"); providerErr != "" {
		h.logger().WarnContext(ctx, "identity provider returned an error",
			"error", providerErr, "description", q.Get("error_description"))
		h.report(CallbackResult{Err: ErrProviderDenied})
		h.renderFailure(w, r, ErrProviderDenied, http.StatusBadRequest)
		return
	}

	sess, err := h.Completer.Handle(context.WithoutCancel(ctx), q.Get("code"), q.Get("state"))
	switch {
	case apperrors.IsCode(err, apperrors.ErrCodeCallbackAlreadyHandled):
		// A reload of the callback page. Only a completed login continues to the app.
		if h.Session != nil && !h.Session.IsAuthenticated(ctx) {
			h.renderFailure(w, r, err, http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, h.postLoginURL(), http.StatusFound)
		return
	case err != nil:
		h.logger().WarnContext(ctx, "login callback failed", "code", apperrors.GetCode(err), "error", err)
		h.report(CallbackResult{Err: err})
		h.renderFailure(w, r, err, statusFor(err))
		return
	}

	h.report(CallbackResult{Session: sess})
	http.Redirect(w, r, h.postLoginURL(), http.StatusFound)
}

func (h *CallbackHandlers) postLoginURL() string {
	if h.PostLoginURL != "" {
		return h.PostLoginURL
	}
	return "/"
}

// renderFailure shows the generic failure message. Clients asking for JSON get
// the error code without details.
func (h *CallbackHandlers) renderFailure(w http.ResponseWriter, r *http.Request, err error, status int) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		WriteError(w, ErrorParams{Code: status, ErrCode: failureCode(err), Err: errors.New(FailureMessage)})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	data := struct{ Message, EntryURL string }{Message: FailureMessage, EntryURL: h.EntryURL}
	if err := failurePage.Execute(w, data); err != nil {
		h.logger().Debug("render failure page", "error", err)
	}
}

func failureCode(err error) string {
	if errors.Is(err, ErrProviderDenied) {
		return "provider_denied"
	}
	return string(apperrors.GetCode(err))
}

// statusFor maps a callback error to the response status.
func statusFor(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeMissingAuthorizationData, apperrors.ErrCodeInvalidState:
		return http.StatusBadRequest
	case apperrors.ErrCodeTokenExchangeFailed, apperrors.ErrCodeMalformedTokenResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
