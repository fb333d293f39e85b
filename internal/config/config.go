package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultAPIURL  = "http://localhost:8080/api"
	DefaultPerPage = 10

	SessionBackendFile   = "file"
	SessionBackendSQLite = "sqlite"
)

// Config is the resolved client configuration.
//
// Precedence (lowest to highest): built-in defaults, <config dir>/config.json,
// TMS_* environment variables, command-line flags (applied by the caller).
type Config struct {
	APIURL string `json:"api_url" mapstructure:"api_url"`

	// SessionBackend is one of: file|sqlite
	SessionBackend string `json:"session_backend" mapstructure:"session_backend"`
	// SessionDir holds session.json / session.sqlite. Defaults to the config dir.
	SessionDir string `json:"session_dir,omitempty" mapstructure:"session_dir"`

	PerPage int `json:"per_page" mapstructure:"per_page"`

	// Timeout bounds a single HTTP request; 0 keeps the transport default.
	Timeout time.Duration `json:"timeout,omitempty" mapstructure:"timeout"`

	// RateLimit is requests/second for outgoing calls; 0 disables limiting.
	RateLimit float64 `json:"rate_limit,omitempty" mapstructure:"rate_limit"`
	RateBurst int     `json:"rate_burst,omitempty" mapstructure:"rate_burst"`

	LogLevel string `json:"log_level" mapstructure:"log_level"`
	// LogFile receives logs while the TUI owns the terminal.
	LogFile string `json:"log_file,omitempty" mapstructure:"log_file"`

	// TokenExpiryCheck drops an expired JWT at startup instead of trusting it.
	TokenExpiryCheck bool `json:"token_expiry_check" mapstructure:"token_expiry_check"`

	// Path is where the config was loaded from (not persisted).
	Path string `json:"-" mapstructure:"-"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.tms).
	if v := strings.TrimSpace(os.Getenv("TMS_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".tms"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("session_backend", SessionBackendFile)
	v.SetDefault("session_dir", dir)
	v.SetDefault("per_page", DefaultPerPage)
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("rate_limit", 0.0)
	v.SetDefault("rate_burst", 1)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", filepath.Join(dir, "tms.log"))
	v.SetDefault("token_expiry_check", true)
}

// Load reads the config file at path (or the default location when path is empty).
// A missing file is not an error; defaults and environment overrides still apply.
func Load(path string) (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) == "" {
		path = filepath.Join(dir, "config.json")
	}

	v := viper.New()
	setDefaults(v, dir)
	v.SetEnvPrefix("TMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{
		APIURL:           strings.TrimRight(strings.TrimSpace(v.GetString("api_url")), "/"),
		SessionBackend:   strings.ToLower(strings.TrimSpace(v.GetString("session_backend"))),
		SessionDir:       strings.TrimSpace(v.GetString("session_dir")),
		PerPage:          v.GetInt("per_page"),
		Timeout:          v.GetDuration("timeout"),
		RateLimit:        v.GetFloat64("rate_limit"),
		RateBurst:        v.GetInt("rate_burst"),
		LogLevel:         strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		LogFile:          strings.TrimSpace(v.GetString("log_file")),
		TokenExpiryCheck: v.GetBool("token_expiry_check"),
		Path:             path,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("config: api_url is empty")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("config: api_url must start with http:// or https:// (got %q)", c.APIURL)
	}
	switch c.SessionBackend {
	case SessionBackendFile, SessionBackendSQLite:
	default:
		return fmt.Errorf("config: unknown session_backend %q (expected file|sqlite)", c.SessionBackend)
	}
	if c.PerPage <= 0 {
		c.PerPage = DefaultPerPage
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 1
	}
	return nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

// fileConfig is the persisted subset; Duration is stored as a string ("30s").
type fileConfig struct {
	APIURL           string  `json:"api_url"`
	SessionBackend   string  `json:"session_backend"`
	SessionDir       string  `json:"session_dir,omitempty"`
	PerPage          int     `json:"per_page"`
	Timeout          string  `json:"timeout,omitempty"`
	RateLimit        float64 `json:"rate_limit,omitempty"`
	RateBurst        int     `json:"rate_burst,omitempty"`
	LogLevel         string  `json:"log_level"`
	LogFile          string  `json:"log_file,omitempty"`
	TokenExpiryCheck bool    `json:"token_expiry_check"`
}

// Save writes cfg to cfg.Path (or the default location).
func Save(cfg *Config) error {
	path := cfg.Path
	if strings.TrimSpace(path) == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	fc := fileConfig{
		APIURL:           cfg.APIURL,
		SessionBackend:   cfg.SessionBackend,
		SessionDir:       cfg.SessionDir,
		PerPage:          cfg.PerPage,
		RateLimit:        cfg.RateLimit,
		RateBurst:        cfg.RateBurst,
		LogLevel:         cfg.LogLevel,
		LogFile:          cfg.LogFile,
		TokenExpiryCheck: cfg.TokenExpiryCheck,
	}
	if cfg.Timeout > 0 {
		fc.Timeout = cfg.Timeout.String()
	}
	b, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}
