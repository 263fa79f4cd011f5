package bootstrap

import (
	"log/slog"

	"github.com/familiez/familiez-auth/config"
	httpx "github.com/familiez/familiez-auth/internal/http"
)

// CallbackServerConfig contains configuration for the loopback callback server.
type CallbackServerConfig struct {
	Config    *config.AppConfig
	Completer httpx.Completer
	Session   httpx.SessionChecker
	Logger    *slog.Logger
}

// NewCallbackServer binds the callback address and returns the server with the
// handlers whose Results channel reports the login outcome. Serve is left to the caller.
func NewCallbackServer(cfg CallbackServerConfig) (*httpx.CallbackServer, *httpx.CallbackHandlers, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handlers := &httpx.CallbackHandlers{
		Completer:    cfg.Completer,
		Session:      cfg.Session,
		PostLoginURL: appCfg.App.PostLoginURL,
		EntryURL:     appCfg.App.EntryURL,
		Logger:       logger,
	}
	router := httpx.NewRouter(httpx.RouterConfig{
		Callback:     handlers,
		CallbackPath: appCfg.HTTP.CallbackPath,
		Logger:       logger,
	})

	srv, err := httpx.Listen(appCfg.HTTP.CallbackAddr, router, logger)
	if err != nil {
		return nil, nil, err
	}
	return srv, handlers, nil
}
