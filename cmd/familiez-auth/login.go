package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/familiez/familiez-auth/internal/bootstrap"
	domainauth "github.com/familiez/familiez-auth/internal/domain/auth"
	httpx "github.com/familiez/familiez-auth/internal/http"
	"github.com/familiez/familiez-auth/internal/service"
	"golang.org/x/sync/errgroup"
)

const defaultLoginTimeout = 5 * time.Minute

var errMissingCallbackURL = errors.New("callback URL is required")

func runLogin(c *commandContext, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	timeout := fs.Duration("timeout", defaultLoginTimeout, "how long to wait for the provider callback")
	noServer := fs.Bool("no-server", false, "skip the local callback listener; finish with the callback command")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := c.session()
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	if *noServer {
		if _, err := sess.Manager.Login(c.Ctx); err != nil {
			return err
		}
		return writeln(c.Out, "After signing in, run: familiez-auth callback '<redirect URL>'")
	}

	srv, handlers, err := bootstrap.NewCallbackServer(bootstrap.CallbackServerConfig{
		Config:    &c.Config,
		Completer: sess.Manager.NewCallbackExchanger(),
		Session:   sess.Manager,
		Logger:    c.Logger,
	})
	if err != nil {
		return fmt.Errorf("start callback server: %w", err)
	}

	res, err := awaitLogin(c.Ctx, *timeout, srv, handlers, sess.Manager.Login)
	if err != nil {
		return err
	}
	return printSignedIn(c, res.Session)
}

type loginFn func(ctx context.Context) (*service.LoginResult, error)

// awaitLogin serves the callback listener while the login runs and returns
// the first callback outcome. The listener stops when this returns.
func awaitLogin(
	ctx context.Context,
	timeout time.Duration,
	srv *httpx.CallbackServer,
	handlers *httpx.CallbackHandlers,
	login loginFn,
) (httpx.CallbackResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var outcome httpx.CallbackResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx)
	})
	g.Go(func() error {
		defer cancel()
		if _, err := login(gctx); err != nil {
			return err
		}
		select {
		case outcome = <-handlers.Results():
			return outcome.Err
		case <-gctx.Done():
			return fmt.Errorf("wait for provider callback: %w", gctx.Err())
		}
	})
	if err := g.Wait(); err != nil {
		return httpx.CallbackResult{}, err
	}
	return outcome, nil
}

func runCallback(c *commandContext, args []string) error {
	fs := flag.NewFlagSet("callback", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errMissingCallbackURL
	}
	code, state, err := parseCallbackURL(fs.Arg(0))
	if err != nil {
		return err
	}

	sess, err := c.session()
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	s, err := sess.Manager.NewCallbackExchanger().Handle(c.Ctx, code, state)
	if err != nil {
		return err
	}
	return printSignedIn(c, s)
}

// parseCallbackURL extracts code and state from a redirect URL pasted by the user.
func parseCallbackURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse callback URL: %w", err)
	}
	q := u.Query()
	if e := q.Get("error"); e != "" {
		return "", "", fmt.Errorf("%w: %s", httpx.ErrProviderDenied, e)
	}
	return q.Get("code"), q.Get("state"), nil
}

func printSignedIn(c *commandContext, s *domainauth.Session) error {
	name := ""
	if s != nil && s.Claims != nil {
		name = s.Claims.Username
	}
	if name == "" {
		return writeln(c.Out, "Signed in.")
	}
	return writef(c.Out, "Signed in as %s.\n", name)
}
