// ABOUTME: Command-line client for the Synapse admin API
// ABOUTME: Parses global flags, loads config and the session, then dispatches one sub-command

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/florianjacob/synadminctl/internal/config"
	"github.com/florianjacob/synadminctl/internal/login"
	"github.com/florianjacob/synadminctl/internal/matrix"
	"github.com/florianjacob/synadminctl/internal/prompt"
	"github.com/florianjacob/synadminctl/internal/session"
	"github.com/florianjacob/synadminctl/internal/store"
	"github.com/florianjacob/synadminctl/internal/transport"
)

const banner = `
  ╔═╗╦ ╦╔╗╔╔═╗╔╦╗╔╦╗╦╔╗╔╔═╗╔╦╗╦
  ╚═╗╚╦╝║║║╠═╣ ║║║║║║║║║║   ║ ║
  ╚═╝ ╩ ╝╚╝╩ ╩═╩╝╩ ╩╩╝╚╝╚═╝ ╩ ╩═╝
`

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type globalOptions struct {
	configPath string
	logLevel   string
	homeserver string
	json       bool
}

func main() {
	opts, args, err := parseGlobalFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		printUsage(os.Stdout)
		return
	}
	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}

	if len(args) == 0 {
		printUsage(os.Stdout)
		os.Exit(1)
	}
	switch args[0] {
	case "help", "-h", "--help":
		if len(args) > 1 {
			err = printCommandHelp(os.Stdout, args[1])
		} else {
			printUsage(os.Stdout)
		}
		if err != nil {
			color.Red("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	// After the first interrupt a second one kills the process outright.
	context.AfterFunc(ctx, stop)

	a, err := newApp(ctx, opts, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}

	err = execute(ctx, a, args)
	a.Close()
	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func parseGlobalFlags(args []string) (globalOptions, []string, error) {
	var opts globalOptions
	fs := pflag.NewFlagSet("synadminctl", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	// Flags after the sub-command name belong to the sub-command.
	fs.SetInterspersed(false)
	fs.StringVarP(&opts.configPath, "config", "c", config.Path(), "configuration file")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&opts.homeserver, "homeserver", "", "homeserver URL, skips server discovery")
	fs.BoolVar(&opts.json, "json", false, "print raw JSON")

	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}
	return opts, fs.Args(), nil
}

// app carries everything a sub-command needs.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	out       io.Writer
	prompter  prompt.Prompter
	transport matrix.Transport
	sessions  session.Store
	journal   store.Journal
	jsonOut   bool
}

func newApp(ctx context.Context, opts globalOptions, stdin *os.File, stdout, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.homeserver != "" {
		cfg.Homeserver = opts.homeserver
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := setupLogger(cfg.Logging.Level, stderr).With("invocation", uuid.New().String())
	slog.SetDefault(logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		out:    stdout,
		// Prompts go to stderr so stdout stays clean for --json.
		prompter: prompt.NewTerminal(stdin, stderr).WithContext(ctx),
		transport: transport.New(transport.Options{
			Timeout:   cfg.Timeout,
			UserAgent: transport.DefaultUserAgent + "/" + version,
			Logger:    logger,
		}),
		sessions: session.FileStore{Path: cfg.Session.Path},
		jsonOut:  opts.json,
	}, nil
}

func setupLogger(level string, w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

func (a *app) flow() *login.Flow {
	return &login.Flow{
		Transport:       a.transport,
		WellKnownScheme: a.cfg.WellKnownScheme,
		Sessions:        a.sessions,
		Prompter:        a.prompter,
		Homeserver:      a.cfg.Homeserver,
		DeviceName:      a.cfg.DeviceName,
		Logger:          a.logger,
	}
}

// openJournal opens the journal on first use. It returns nil when the
// journal is disabled.
func (a *app) openJournal() (store.Journal, error) {
	if a.journal != nil {
		return a.journal, nil
	}
	if !a.cfg.Journal.Enabled {
		return nil, nil
	}
	j, err := store.NewSQLiteStore(a.cfg.Journal.Path, a.logger)
	if err != nil {
		return nil, err
	}
	a.journal = j
	return j, nil
}

// record appends a journal entry for a mutating operation. Failures are
// logged and never change the command's result.
func (a *app) record(ctx context.Context, s *session.Session, action store.Action, targetType, targetID string, opErr error, detail map[string]any) {
	j, err := a.openJournal()
	if err != nil {
		a.logger.Warn("journal unavailable", "error", err)
		return
	}
	if j == nil {
		return
	}

	entry := &store.Entry{
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Outcome:    store.OutcomeOK,
		Detail:     detail,
	}
	if s != nil {
		entry.Actor = s.UserID
		entry.Homeserver = s.BaseURL
	}
	if opErr != nil {
		entry.Outcome = store.OutcomeFailed
		if entry.Detail == nil {
			entry.Detail = map[string]any{}
		}
		entry.Detail["error"] = errorSummary(opErr)
	}

	if err := j.Append(ctx, entry); err != nil {
		a.logger.Warn("failed to append journal entry", "action", action, "error", err)
	}
}

// errorSummary keeps the Matrix errcode when there is one.
func errorSummary(err error) string {
	var httpErr *matrix.HTTPError
	if errors.As(err, &httpErr) {
		if code := httpErr.ErrCode(); code != "" {
			return fmt.Sprintf("%d %s", httpErr.StatusCode(), code)
		}
		return fmt.Sprintf("%d", httpErr.StatusCode())
	}
	return err.Error()
}

// Close releases the journal.
func (a *app) Close() {
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.logger.Warn("closing journal", "error", err)
		}
	}
}
