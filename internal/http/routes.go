package httpx

import (
	"io"
	"log/slog"
	"net/http"
)

const healthResponse = `{"status":"ok"}`

// RouterConfig groups what the callback router serves.
type RouterConfig struct {
	Callback *CallbackHandlers
	// CallbackPath is the path of the registered redirect URI.
	CallbackPath string
	Logger       *slog.Logger
}

// NewRouter builds the loopback router with middleware applied.
// Order: Recover -> Logging -> SecurityHeaders -> mux.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	path := cfg.CallbackPath
	if path == "" {
		path = "/auth/callback"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthHandler)
	if cfg.Callback != nil {
		mux.HandleFunc("GET "+path, cfg.Callback.Callback)
	}

	var h http.Handler = mux
	h = SecurityHeaders(h)
	h = Logging(logger)(h)
	h = Recover(logger)(h)
	return h
}

// healthHandler reports that the callback server is listening.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}
