package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents application configuration
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Locale   LocaleConfig   `mapstructure:"locale"`
	Prefs    PrefsConfig    `mapstructure:"prefs"`
	Docstore DocstoreConfig `mapstructure:"docstore"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// LogConfig selects the log destination. An empty File logs to stderr.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

type LocaleConfig struct {
	Language string `mapstructure:"language"`
}

// PrefsConfig represents the preference file and its encryption
type PrefsConfig struct {
	Path           string `mapstructure:"path"`
	AutoCommit     bool   `mapstructure:"auto_commit"`
	Cipher         string `mapstructure:"cipher"` // "none", "keyring" or "passphrase"
	KeyringService string `mapstructure:"keyring_service"`
	KeyringUser    string `mapstructure:"keyring_user"`
}

// DocstoreConfig represents the document backend
type DocstoreConfig struct {
	Backend string `mapstructure:"backend"` // "memory" or "postgres"
	DSN     string `mapstructure:"dsn"`
	User    string `mapstructure:"user"`
}

// HTTPConfig represents the API server
type HTTPConfig struct {
	Addr         string  `mapstructure:"addr"`
	ReadTimeout  string  `mapstructure:"read_timeout"`
	WriteTimeout string  `mapstructure:"write_timeout"`
	RateLimit    float64 `mapstructure:"rate_limit"` // requests per second, 0 disables
	RateBurst    int     `mapstructure:"rate_burst"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load loads configuration from configPath, or from config.yaml in the
// search path when configPath is empty. A missing file in the search path is
// not an error; defaults and APPKIT_* variables still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.appkit")
		v.AddConfigPath("/etc/appkit")
	}

	v.SetEnvPrefix("APPKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("locale.language", "en")
	v.SetDefault("prefs.auto_commit", true)
	v.SetDefault("prefs.cipher", "none")
	v.SetDefault("prefs.keyring_service", "appkit")
	v.SetDefault("prefs.keyring_user", "prefs")
	v.SetDefault("docstore.backend", "memory")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.rate_burst", 20)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Prefs.Cipher {
	case "", "none", "passphrase":
	case "keyring":
		if c.Prefs.KeyringService == "" || c.Prefs.KeyringUser == "" {
			return fmt.Errorf("prefs.keyring_service and prefs.keyring_user are required for keyring cipher")
		}
	default:
		return fmt.Errorf("prefs.cipher must be 'none', 'keyring' or 'passphrase', got '%s'", c.Prefs.Cipher)
	}

	switch c.Docstore.Backend {
	case "", "memory":
	case "postgres":
		if c.Docstore.DSN == "" {
			return fmt.Errorf("docstore.dsn is required for postgres backend")
		}
	default:
		return fmt.Errorf("docstore.backend must be 'memory' or 'postgres', got '%s'", c.Docstore.Backend)
	}

	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit must not be negative")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/'")
	}

	return nil
}

// GetPath returns the preference file path. Default: $HOME/.appkit/prefs.json
func (c *PrefsConfig) GetPath() string {
	if c.Path != "" {
		return c.Path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "prefs.json"
	}
	return filepath.Join(home, ".appkit", "prefs.json")
}

// GetLanguage returns the configured language tag, "en" when unset.
func (c *LocaleConfig) GetLanguage() string {
	if c.Language == "" {
		return "en"
	}
	return c.Language
}

// GetReadTimeout returns the server read timeout. Default: 10s
func (c *HTTPConfig) GetReadTimeout() time.Duration {
	return parseDuration(c.ReadTimeout, 10*time.Second)
}

// GetWriteTimeout returns the server write timeout. Default: 10s
func (c *HTTPConfig) GetWriteTimeout() time.Duration {
	return parseDuration(c.WriteTimeout, 10*time.Second)
}

// GetRateBurst returns the limiter burst, at least 1.
func (c *HTTPConfig) GetRateBurst() int {
	if c.RateBurst <= 0 {
		return 1
	}
	return c.RateBurst
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	duration, err := time.ParseDuration(s)
	if err != nil || duration <= 0 {
		return def
	}
	return duration
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Docstore.DSN = os.ExpandEnv(c.Docstore.DSN)
	c.Prefs.Path = os.ExpandEnv(c.Prefs.Path)
	c.Log.File = os.ExpandEnv(c.Log.File)
}
