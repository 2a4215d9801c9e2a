package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fragmede/campusevents/internal/session"
)

const (
	// EnvServer overrides the backend URL.
	EnvServer = "CAMPUSEVENTS_SERVER"
	// EnvSheetsAPIKey supplies the Google API key used by the dashboard.
	EnvSheetsAPIKey = "CAMPUSEVENTS_SHEETS_API_KEY"
)

type Config struct {
	ServerURL string `yaml:"server"`

	CacheDir string `yaml:"cache_dir"`
	DBPath   string `yaml:"db_path"`
	LogPath  string `yaml:"log_path"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	EventListTTL    time.Duration `yaml:"event_list_ttl"`
	MonitorInterval time.Duration `yaml:"monitor_interval"`

	// SheetsAPIKey reads the registration sheets behind the club
	// dashboard. The dashboard reports an error when it is empty.
	SheetsAPIKey string `yaml:"sheets_api_key"`

	Session SessionConfig `yaml:"session"`
}

// SessionConfig carries the session manager timings.
type SessionConfig struct {
	SettleDelay     time.Duration `yaml:"settle_delay"`
	InitTimeout     time.Duration `yaml:"init_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ConfirmAttempts int           `yaml:"confirm_attempts"`
	MaxBackoff      time.Duration `yaml:"max_backoff"`
}

func Default() Config {
	cacheDir := filepath.Join(userConfigDir(), "campusevents")
	return Config{
		ServerURL:       "http://localhost:5000",
		CacheDir:        cacheDir,
		DBPath:          filepath.Join(cacheDir, "cache.db"),
		LogPath:         filepath.Join(cacheDir, "debug.log"),
		LogLevel:        "info",
		LogFormat:       "text",
		EventListTTL:    60 * time.Second,
		MonitorInterval: 30 * time.Second,
		Session: SessionConfig{
			SettleDelay:     500 * time.Millisecond,
			InitTimeout:     10 * time.Second,
			RequestTimeout:  10 * time.Second,
			ConfirmAttempts: 4,
			MaxBackoff:      4 * time.Second,
		},
	}
}

// DefaultPath is where Load looks when no file is given.
func DefaultPath() string {
	return filepath.Join(userConfigDir(), "campusevents", "config.yaml")
}

// Load returns the defaults overlaid with the YAML file at path and then
// the environment. A missing file at the default path is not an error;
// a missing file that was asked for explicitly is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	if v := strings.TrimSpace(os.Getenv(EnvServer)); v != "" {
		cfg.ServerURL = v
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	if v := strings.TrimSpace(os.Getenv(EnvSheetsAPIKey)); v != "" {
		cfg.SheetsAPIKey = v
	}

	// A relocated cache dir moves the files that were left at their
	// default location with it.
	def := Default()
	if cfg.CacheDir != def.CacheDir {
		if cfg.DBPath == def.DBPath {
			cfg.DBPath = filepath.Join(cfg.CacheDir, "cache.db")
		}
		if cfg.LogPath == def.LogPath {
			cfg.LogPath = filepath.Join(cfg.CacheDir, "debug.log")
		}
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings the client cannot run with.
func (c Config) Validate() error {
	if c.ServerURL == "" {
		return errors.New("config: server URL is empty")
	}
	if !strings.HasPrefix(c.ServerURL, "http://") && !strings.HasPrefix(c.ServerURL, "https://") {
		return fmt.Errorf("config: server URL %q must start with http:// or https://", c.ServerURL)
	}
	if c.Session.ConfirmAttempts < 0 {
		return fmt.Errorf("config: session.confirm_attempts must not be negative")
	}
	return nil
}

// SessionOptions converts the session timings. Logger and OnChange are
// left for the caller.
func (c Config) SessionOptions() session.Options {
	return session.Options{
		SettleDelay:     c.Session.SettleDelay,
		InitTimeout:     c.Session.InitTimeout,
		RequestTimeout:  c.Session.RequestTimeout,
		ConfirmAttempts: c.Session.ConfirmAttempts,
		MaxBackoff:      c.Session.MaxBackoff,
	}
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}
