package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/familiez/familiez-auth/config"
	"github.com/familiez/familiez-auth/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
}

func (c *commandContext) session() (*bootstrap.SessionContainer, error) {
	return bootstrap.BuildSession(c.Ctx, bootstrap.SessionConfig{Config: &c.Config, Logger: c.Logger, Out: c.Out})
}

func main() {
	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		if err := printUsage(os.Stderr); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		bootstrap.InitLogger(os.Stderr, slog.LevelInfo).Error("load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	logger := bootstrap.InitLogger(os.Stderr, cfg.Logging.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
		Out:    os.Stdout,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(ctx, "command failed", "command", cmdName, "error", runErr)
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Sign in through the identity provider and wait for the callback",
			run:         runLogin,
		},
		"callback": {
			name:        "callback",
			description: "Complete a login from a copied callback URL",
			run:         runCallback,
		},
		"logout": {
			name:        "logout",
			description: "Clear the local session and sign out at the provider",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Print the signed-in user and role",
			run:         runWhoami,
		},
		"status": {
			name:        "status",
			description: "Show session state and provider endpoints",
			run:         runStatus,
		},
		"refresh-role": {
			name:        "refresh-role",
			description: "Fetch the role record from the backend again",
			run:         runRefreshRole,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: familiez-auth <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-14s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
