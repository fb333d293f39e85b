package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tms-cli/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Show or change client configuration",
		Annotations: map[string]string{annotNoClient: "true"},
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": cfg,
				"meta": map[string]any{"path": cfg.Path},
			})
		},
	}
}

// configKeys lists the keys `config set` accepts.
var configKeys = []string{
	"api_url", "session_backend", "session_dir", "per_page", "timeout",
	"rate_limit", "rate_burst", "log_level", "log_file", "token_expiry_check",
}

func newConfigSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Persist one configuration value",
		Args:      cobra.ExactArgs(2),
		ValidArgs: configKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(app.ConfigPath)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := setConfigValue(cfg, args[0], args[1]); err != nil {
				return writeErr(cmd, err)
			}
			if err := cfg.Validate(); err != nil {
				return writeErr(cmd, err)
			}
			if err := config.Save(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": cfg, "meta": map[string]any{"path": cfg.Path}})
		},
	}
}

func setConfigValue(cfg *config.Config, key, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_") {
	case "api_url":
		cfg.APIURL = strings.TrimRight(value, "/")
	case "session_backend":
		cfg.SessionBackend = strings.ToLower(value)
	case "session_dir":
		cfg.SessionDir = value
	case "log_level":
		cfg.LogLevel = strings.ToLower(value)
	case "log_file":
		cfg.LogFile = value
	case "per_page":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("per_page must be a positive integer (got %q)", value)
		}
		cfg.PerPage = n
	case "rate_burst":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("rate_burst must be a positive integer (got %q)", value)
		}
		cfg.RateBurst = n
	case "rate_limit":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("rate_limit must be a non-negative number (got %q)", value)
		}
		cfg.RateLimit = f
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return fmt.Errorf("timeout must be a duration like 30s (got %q)", value)
		}
		cfg.Timeout = d
	case "token_expiry_check":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("token_expiry_check must be true or false (got %q)", value)
		}
		cfg.TokenExpiryCheck = b
	default:
		return fmt.Errorf("unknown config key %q (expected one of: %s)", key, strings.Join(configKeys, ", "))
	}
	return nil
}
