package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fragmede/campusevents/internal/api"
	"github.com/fragmede/campusevents/internal/cache"
	"github.com/fragmede/campusevents/internal/config"
	"github.com/fragmede/campusevents/internal/logging"
	"github.com/fragmede/campusevents/internal/session"
	"github.com/fragmede/campusevents/internal/sheets"
	"github.com/fragmede/campusevents/internal/ui"
	"github.com/fragmede/campusevents/internal/ui/dashboard"
	"github.com/fragmede/campusevents/internal/ui/messages"
)

type rootFlags struct {
	server     string
	configPath string
	logLevel   string
	logFormat  string
	debug      bool
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:          "campusevents",
		Short:        "Browse and manage campus events from the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.server, "server", "", "backend URL (overrides config and "+config.EnvServer+")")
	pf.StringVar(&flags.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format: text or json")
	pf.BoolVar(&flags.debug, "debug", false, "shorthand for --log-level=debug")

	root.AddCommand(newWhoamiCmd(&flags), newLogoutCmd(&flags))
	return root
}

func newWhoamiCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Resolve the stored session and print who is logged in",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(*flags, nil)
			if err != nil {
				return err
			}
			defer env.close()

			env.sess.Initialize(cmd.Context())
			snap := env.sess.Snapshot()
			out := cmd.OutOrStdout()
			if !snap.LoggedIn() {
				fmt.Fprintln(out, "not logged in")
				return nil
			}
			fmt.Fprintf(out, "%s (%s)\n", snap.Identity.DisplayName(), snap.Role)
			if snap.Identity.Email != "" {
				fmt.Fprintf(out, "email: %s\n", snap.Identity.Email)
			}
			if snap.Role == api.RoleStudent {
				if len(snap.Registrations) == 0 {
					fmt.Fprintln(out, "registered events: none")
				} else {
					fmt.Fprintf(out, "registered events: %s\n", strings.Join(snap.Registrations, ", "))
				}
			}
			return nil
		},
	}
}

func newLogoutCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(*flags, nil)
			if err != nil {
				return err
			}
			defer env.close()

			env.sess.Logout(cmd.Context())
			env.client.ClearCookies()
			if err := env.db.ClearCookies(env.client.BaseURL()); err != nil {
				return fmt.Errorf("clearing stored session: %w", err)
			}
			env.db.InvalidateEventList(cache.ListMy)
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func runTUI(flags rootFlags) error {
	// The program is created after the session manager, so snapshots are
	// forwarded through this indirection.
	var program *tea.Program
	onChange := func(s session.Snapshot) {
		if p := program; p != nil {
			// Session calls run inside Update; Send would block there.
			go p.Send(messages.SessionChangedMsg{Snapshot: s})
		}
	}

	env, err := setup(flags, onChange)
	if err != nil {
		return err
	}
	defer env.close()

	var reader dashboard.SheetReader
	sc, err := sheets.New(context.Background(), env.cfg.SheetsAPIKey, env.logger)
	switch {
	case err == nil:
		reader = sc
	case errors.Is(err, sheets.ErrNoAPIKey):
		env.logger.Debug("registration dashboard disabled", "reason", err)
	default:
		env.logger.Warn("registration dashboard disabled", "error", err)
	}

	app := ui.NewApp(env.cfg, env.client, env.db, env.sess, reader, env.logger)
	program = tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	app.SetProgram(program)
	defer app.Stop()

	env.logger.Info("starting", "server", env.cfg.ServerURL)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

// environment holds everything a command needs. close releases it in
// reverse order.
type environment struct {
	cfg     config.Config
	logger  *slog.Logger
	db      *cache.DB
	client  *api.Client
	sess    *session.Manager
	closers []io.Closer
}

func (e *environment) close() {
	if e.sess != nil {
		e.sess.Dispose()
	}
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i].Close()
	}
}

// setup loads config, opens the cache and restores the saved session
// cookie. Commands given a nil onChange log to stderr; the TUI logs to
// the configured file.
func setup(flags rootFlags, onChange func(session.Snapshot)) (*environment, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.server != "" {
		cfg.ServerURL = strings.TrimRight(flags.server, "/")
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.debug {
		cfg.LogLevel = "debug"
	}
	if flags.logFormat != "" {
		cfg.LogFormat = flags.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	env := &environment{cfg: cfg}
	level := logging.ParseLevel(cfg.LogLevel)
	if onChange == nil {
		env.logger = logging.NewLogger(level, cfg.LogFormat)
	} else {
		logger, f, err := logging.OpenFile(cfg.LogPath, level, cfg.LogFormat)
		if err != nil {
			return nil, err
		}
		env.logger = logger
		env.closers = append(env.closers, f)
	}

	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		env.close()
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	db, err := cache.Open(cfg.DBPath)
	if err != nil {
		env.close()
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	env.db = db
	env.closers = append(env.closers, db)

	env.client = api.NewClient(cfg.ServerURL, env.logger)
	cookies, err := db.LoadCookies(env.client.BaseURL())
	if err != nil {
		env.logger.Warn("loading saved session", "error", err)
	} else {
		env.client.SetCookies(cookies)
	}

	opts := cfg.SessionOptions()
	opts.Logger = env.logger
	opts.OnChange = onChange
	env.sess = session.New(env.client, opts)
	return env, nil
}
