package httpx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// shutdownTimeout bounds graceful shutdown of the callback server.
const shutdownTimeout = 5 * time.Second

// CallbackServer is the short-lived loopback server that receives the provider redirect.
type CallbackServer struct {
	server   *http.Server
	listener net.Listener
	logger   *slog.Logger
}

// Listen binds addr and prepares a server for handler. Serve must be called to start it.
func Listen(addr string, handler http.Handler, logger *slog.Logger) (*CallbackServer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return &CallbackServer{
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		listener: ln,
		logger:   logger,
	}, nil
}

// Addr returns the bound address.
func (s *CallbackServer) Addr() string {
	return s.listener.Addr().String()
}

// Serve runs until ctx is cancelled, then shuts down gracefully.
func (s *CallbackServer) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting callback server", "addr", s.Addr())
		errCh <- s.server.Serve(s.listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("callback server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("callback server shutdown failed", "error", err)
		return fmt.Errorf("shutdown callback server: %w", err)
	}
	s.logger.Info("callback server stopped")
	return nil
}
