// ABOUTME: Configuration loader for the voteverse client
// ABOUTME: Layers flags, VOTEVERSE_* env vars, .env, config.yaml, and defaults

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment variable key
	EnvPrefix = "VOTEVERSE"

	DefaultAPIURL    = "http://localhost:8080/api"
	DefaultTimeout   = 30 * time.Second
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"

	sessionFile = "session.db"
	logFile     = "debug.log"
)

// Config keys, shared by flags, env vars, and config.yaml
const (
	KeyAPIURL    = "api-url"
	KeyTimeout   = "timeout"
	KeyConfigDir = "config-dir"
	KeyLogLevel  = "log-level"
	KeyLogFormat = "log-format"
)

type Config struct {
	APIURL    string
	Timeout   time.Duration
	ConfigDir string
	LogLevel  string
	LogFormat string
}

// SessionPath is where the durable session entries live
func (c *Config) SessionPath() string {
	return filepath.Join(c.ConfigDir, sessionFile)
}

// LogPath is where the TUI writes its log so the terminal stays clean
func (c *Config) LogPath() string {
	return filepath.Join(c.ConfigDir, logFile)
}

// Load resolves configuration in priority order: changed flags, environment,
// config.yaml in the config directory, then defaults. A .env file in the
// working directory is loaded into the environment first when present.
func Load(flags *pflag.FlagSet) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyConfigDir, DefaultConfigDir())
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	configDir := v.GetString(KeyConfigDir)
	if configDir != "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		APIURL:    strings.TrimRight(ensureScheme(v.GetString(KeyAPIURL)), "/"),
		Timeout:   v.GetDuration(KeyTimeout),
		ConfigDir: configDir,
		LogLevel:  v.GetString(KeyLogLevel),
		LogFormat: v.GetString(KeyLogFormat),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%s %q is not a valid URL", KeyAPIURL, c.APIURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", KeyAPIURL, u.Scheme)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyTimeout, c.Timeout)
	}
	if c.ConfigDir == "" {
		return fmt.Errorf("%s is required (no home directory found)", KeyConfigDir)
	}
	return nil
}

// DefaultConfigDir returns the default config directory following the XDG base directory layout
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "voteverse")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "voteverse")
}

// ensureScheme adds http:// prefix if the URL has no scheme
func ensureScheme(u string) string {
	if u == "" {
		return u
	}
	if !strings.Contains(u, "://") {
		return "http://" + u
	}
	return u
}
