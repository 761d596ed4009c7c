package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/format"
	"taskdeck/internal/logging"
	"taskdeck/internal/model"
	"taskdeck/internal/session"
	"taskdeck/internal/store"
	"taskdeck/internal/telemetry"
	"taskdeck/internal/tui"

	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type App struct {
	Dir         string
	APIURL      string
	AgentURL    string
	Timeout     time.Duration
	MaxMessages int
	LogFile     string
	Debug       bool
	PrettyJSON  bool
	Format      string

	cfg     *config.Config
	log     *zap.Logger
	tp      *sdktrace.TracerProvider
	store   store.Store
	client  *api.Client
	session *session.Session
}

// Run executes the command tree with args and releases the logger and tracer afterwards.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd, app := newRootCmd()
	defer app.close()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}

func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

func newRootCmd() (*cobra.Command, *App) {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "taskdeck",
		Short:        "Tasks, notes and an AI assistant in your terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  taskdeck

  # Sign in once; the token is kept in ~/.taskdeck/state.sqlite
  taskdeck login --username alice --password-stdin

  # Scriptable commands
  taskdeck tasks list --filter pending
  taskdeck tasks create --title "Buy milk" --priority high --due 2025-06-01

  # Direct task lookup (shortcut for: taskdeck tasks show 42)
  taskdeck 42

  # Ask the assistant
  taskdeck chat send "what is due this week?"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		return app.setup(c.Context(), c == cmd)
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("TASKDECK_CONFIG_DIR", ""), "Config and state directory (default ~/.taskdeck)")
	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", "", "Backend API base URL (default http://localhost:8000/api)")
	cmd.PersistentFlags().StringVar(&app.AgentURL, "agent-url", "", "AI agent base URL (default http://localhost:8001)")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", 0, "Per-request timeout (default 30s)")
	cmd.PersistentFlags().IntVar(&app.MaxMessages, "max-messages", 0, "Chat thread length before the oldest messages are dropped (default 50)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", "", "Log file (default <dir>/taskdeck.log)")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Debug logging (also to stderr for non-interactive commands)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "", "Output format (json|text)")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newSignupCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newNotesCmd(app))
	cmd.AddCommand(newCalendarCmd(app))
	cmd.AddCommand(newDashboardCmd(app))
	cmd.AddCommand(newChatCmd(app))
	cmd.AddCommand(newHealthCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd, app
}

// setup resolves config and builds the shared collaborators. The TUI owns the terminal, so it
// never gets a console log sink.
func (app *App) setup(ctx context.Context, interactive bool) error {
	cfg, err := config.Load(config.Overrides{
		Dir:         app.Dir,
		APIURL:      app.APIURL,
		AgentURL:    app.AgentURL,
		Timeout:     app.Timeout,
		MaxMessages: app.MaxMessages,
		LogFile:     app.LogFile,
		Debug:       app.Debug,
		Format:      app.Format,
	})
	if err != nil {
		return err
	}
	app.cfg = cfg
	app.Format = cfg.Format

	log, err := logging.New(logging.Options{File: cfg.LogFile, Debug: cfg.Debug, Console: cfg.Debug && !interactive})
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	app.log = log

	if cfg.OTELEnabled {
		tp, err := telemetry.InitTracer(ctx, telemetry.ServiceName, cfg.OTELEndpoint)
		if err != nil {
			// Tracing is optional; commands still run without an exporter.
			log.Warn("tracing disabled", zap.Error(err))
		} else {
			app.tp = tp
		}
	}

	app.store = store.Store{Dir: cfg.Dir}
	if err := app.store.Ensure(); err != nil {
		return err
	}
	app.client = api.New(api.Options{
		BaseURL:  cfg.APIURL,
		AgentURL: cfg.AgentURL,
		Timeout:  cfg.Timeout,
		Tokens:   app.store,
		Logger:   log,
	})
	app.session = session.New(session.Options{
		Tokens:  app.store,
		Backend: app.client,
		Logger:  log,
	})
	return nil
}

func (app *App) close() {
	if app.tp != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = telemetry.Shutdown(ctx, app.tp)
		cancel()
	}
	_ = logging.Sync(app.log)
}

func runTUI(cmd *cobra.Command, app *App) error {
	return tui.Run(cmd.Context(), tui.Options{
		Store:       app.store,
		Client:      app.client,
		Logger:      app.log,
		MaxMessages: app.cfg.MaxMessages,
	})
}

// requireUser restores the session from the stored token and fails when nobody is signed in.
func requireUser(ctx context.Context, app *App) (model.User, error) {
	if err := app.session.Restore(ctx); err != nil {
		return model.User{}, err
	}
	u, ok := app.session.User()
	if !ok {
		return model.User{}, errNotSignedIn()
	}
	return u, nil
}

func parseID(kind, raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, errInvalidID(kind, raw)
	}
	return id, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), errorText(err))
	return err
}

// errorText prefers the server's detail over the kind-prefixed error string.
func errorText(err error) string {
	var ae *api.Error
	if errors.As(err, &ae) {
		return fmt.Sprintf("%s: %s", ae.Kind, ae.Message())
	}
	return err.Error()
}
