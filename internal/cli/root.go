package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"tms-cli/internal/api"
	"tms-cli/internal/auth"
	"tms-cli/internal/config"
	"tms-cli/internal/format"
	"tms-cli/internal/logging"
	"tms-cli/internal/perm"
	"tms-cli/internal/route"
	"tms-cli/internal/session"
	"tms-cli/internal/tui"
	"tms-cli/internal/validate"

	"github.com/spf13/cobra"
)

// Command annotations read by the route guard.
const (
	annotAuth     = "tms/auth"
	annotNoClient = "tms/no-client"

	authRequired = "required"
	authAdmin    = "admin"
)

type App struct {
	ConfigPath string
	APIURL     string
	SessionDir string
	LogLevel   string
	PrettyJSON bool
	Format     string

	cfg    *config.Config
	logger *slog.Logger
	store  session.Store
	client *api.Client
	auth   *auth.Manager
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "tms",
		Short:        "Task management client (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  tms

  # Sign in and list your tasks
  tms login --email ann@example.com --password secret
  tms tasks list --status pending --format table

  # Assign a member to a task
  tms tasks assign 12 7
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if annotation(cmd, annotNoClient) != "" {
			return nil
		}
		if err := app.setup(cmd); err != nil {
			return writeErr(cmd, err)
		}
		return guard(cmd, app)
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("TMS_CONFIG", ""), "Path to config.json (default: <config dir>/config.json)")
	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", "", "API base URL (overrides config and TMS_API_URL)")
	cmd.PersistentFlags().StringVar(&app.SessionDir, "session-dir", "", "Directory holding the stored session (overrides config)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("TMS_CLI_LOG_LEVEL", "warn"), "CLI log level on stderr (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TMS_FORMAT", "json"), "Output format (json|table)")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newDashboardCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newMembersCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

// loadConfig resolves config with flag overrides applied.
func (app *App) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(app.APIURL); v != "" {
		cfg.APIURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(app.SessionDir); v != "" {
		cfg.SessionDir = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup opens config, session, API client and auth state for one command.
func (app *App) setup(cmd *cobra.Command) error {
	cfg, err := app.loadConfig()
	if err != nil {
		return err
	}
	app.cfg = cfg
	if app.logger == nil {
		app.logger = logging.New(cmd.ErrOrStderr(), app.LogLevel)
	}
	return app.open(cmd.Context())
}

func (app *App) open(ctx context.Context) error {
	st, err := session.Open(app.cfg, app.logger)
	if err != nil {
		return err
	}
	app.store = st
	app.client = api.New(app.cfg.APIURL, st,
		api.WithTimeout(app.cfg.Timeout),
		api.WithRateLimit(app.cfg.RateLimit, app.cfg.RateBurst),
		api.WithLogger(app.logger),
	)
	app.auth = auth.New(st, app.client,
		auth.WithLogger(app.logger),
		auth.WithTokenExpiryCheck(app.cfg.TokenExpiryCheck),
	)
	if ctx == nil {
		ctx = context.Background()
	}
	app.auth.Init(ctx)
	return nil
}

// guard is the route guard: protected commands need a session, and the
// members area is only offered to admins.
func guard(cmd *cobra.Command, app *App) error {
	switch annotation(cmd, annotAuth) {
	case "":
		return nil
	case authAdmin:
		if err := app.auth.RequireAuth(); err != nil {
			return writeErr(cmd, err)
		}
		if !perm.CanSee(app.auth.User(), route.Members) {
			return writeErr(cmd, errAdminOnly("members"))
		}
		return nil
	default:
		if err := app.auth.RequireAuth(); err != nil {
			return writeErr(cmd, err)
		}
		return nil
	}
}

// annotation finds key on cmd or its nearest ancestor.
func annotation(cmd *cobra.Command, key string) string {
	for c := cmd; c != nil; c = c.Parent() {
		if v, ok := c.Annotations[key]; ok {
			return v
		}
	}
	return ""
}

func runTUI(cmd *cobra.Command, app *App) error {
	logger, closer, err := logging.NewFile(app.cfg.LogFile, app.cfg.LogLevel)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer closer.Close()
	app.logger = logger
	if err := app.open(cmd.Context()); err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(tui.Deps{
		Auth:    app.auth,
		Client:  app.client,
		PerPage: app.cfg.PerPage,
		Logger:  logger,
	})
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

// writeErr prints err for humans. Field validation errors get one line each.
func writeErr(cmd *cobra.Command, err error) error {
	w := cmd.ErrOrStderr()
	var ve validate.Errors
	if errors.As(err, &ve) {
		writeFieldErrors(w, ve)
		return err
	}
	fmt.Fprintln(w, api.Message(err))
	return err
}

func writeFieldErrors(w io.Writer, ve validate.Errors) {
	for _, f := range ve.Fields() {
		fmt.Fprintf(w, "%s: %s\n", f, ve[f])
	}
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
