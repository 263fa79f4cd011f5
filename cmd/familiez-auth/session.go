package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/familiez/familiez-auth/internal/adapters/oidc"
)

var (
	errNotSignedIn      = errors.New("not signed in")
	errRoleLookupFailed = errors.New("role lookup failed")
	errNotInGroup       = errors.New("user is not in the required group")
)

func runLogout(c *commandContext, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := c.session()
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	sess.Manager.Logout(c.Ctx)
	// The provider notification runs in the background; let it finish before exit.
	sess.Manager.Wait()
	return writeln(c.Out, "Signed out.")
}

func runWhoami(c *commandContext, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "print the user info as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := c.session()
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	info := sess.Manager.GetUserInfo(c.Ctx)
	if info == nil {
		return errNotSignedIn
	}
	if *asJSON {
		enc := json.NewEncoder(c.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	if err := writef(c.Out, "%-10s %s\n", "user:", info.DisplayName()); err != nil {
		return err
	}
	if info.Email != "" {
		if err := writef(c.Out, "%-10s %s\n", "email:", info.Email); err != nil {
			return err
		}
	}
	if err := writef(c.Out, "%-10s %s\n", "role:", info.Role); err != nil {
		return err
	}
	return writef(c.Out, "%-10s %s\n", "groups:", strings.Join(info.Groups, ", "))
}

func runRefreshRole(c *commandContext, args []string) error {
	fs := flag.NewFlagSet("refresh-role", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	requireGroup := fs.String("require-group", "", "fail unless the refreshed record lists this group")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := c.session()
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	if !sess.Manager.IsAuthenticated(c.Ctx) {
		return errNotSignedIn
	}
	rec := sess.Manager.FetchRole(c.Ctx)
	if rec == nil {
		return errRoleLookupFailed
	}
	if err := writef(c.Out, "role: %s\n", rec.Role); err != nil {
		return err
	}
	if *requireGroup != "" && !rec.InGroup(*requireGroup) {
		return fmt.Errorf("%w: %s", errNotInGroup, *requireGroup)
	}
	return nil
}

func runStatus(c *commandContext, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := c.session()
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	if err := writef(c.Out, "%-16s %t\n", "authenticated:", sess.Manager.IsAuthenticated(c.Ctx)); err != nil {
		return err
	}
	if missing := c.Config.OAuth.MissingForLogin(); len(missing) > 0 {
		if err := writef(c.Out, "%-16s %s\n", "missing config:", strings.Join(missing, ", ")); err != nil {
			return err
		}
	}

	doc, err := sess.Resolver.Resolve(c.Ctx)
	switch {
	case err != nil:
		return writef(c.Out, "%-16s unavailable (%v)\n", "discovery:", err)
	case doc == nil:
		return writef(c.Out, "%-16s not configured\n", "discovery:")
	}
	pc, err := oidc.ProviderConfig(doc)
	if err != nil {
		return err
	}
	rows := [][2]string{
		{"issuer:", pc.IssuerURL},
		{"authorize:", pc.AuthURL},
		{"token:", pc.TokenURL},
		{"userinfo:", pc.UserInfoURL},
		{"jwks:", pc.JWKSURL},
		{"end session:", doc.EndSessionEndpoint()},
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		if err := writef(c.Out, "%-16s %s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return nil
}
