package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/viper"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

// AppName is used for the config directory and environment prefix
const AppName = "bearvault"

// Config holds all application configuration
type Config struct {
	General     GeneralConfig             `mapstructure:"general"`
	Filter      FilterConfig              `mapstructure:"filter"`
	UI          UIConfig                  `mapstructure:"ui"`
	History     HistoryConfig             `mapstructure:"history"`
	Performance PerformanceConfig         `mapstructure:"performance"`
	Log         LogConfig                 `mapstructure:"log"`
	Connections []models.ConnectionConfig `mapstructure:"connections"`
}

type GeneralConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	SampleSize   int `mapstructure:"sample_size"`
}

type FilterConfig struct {
	// Timezone is an IANA name used for every date window
	Timezone string `mapstructure:"timezone"`
}

type UIConfig struct {
	Theme        string `mapstructure:"theme"`
	MouseEnabled bool   `mapstructure:"mouse_enabled"`
}

type HistoryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxEntries int    `mapstructure:"max_entries"`
}

type PerformanceConfig struct {
	ConnectionPoolSize int `mapstructure:"connection_pool_size"`
	QueryTimeout       int `mapstructure:"query_timeout"` // milliseconds
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		General: GeneralConfig{
			DefaultLimit: 1000,
			SampleSize:   50,
		},
		Filter: FilterConfig{
			Timezone: "UTC",
		},
		UI: UIConfig{
			Theme:        "default",
			MouseEnabled: true,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 1000,
		},
		Performance: PerformanceConfig{
			ConnectionPoolSize: 5,
			QueryTimeout:       30000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := GetDefaults()
	v.SetDefault("general.default_limit", d.General.DefaultLimit)
	v.SetDefault("general.sample_size", d.General.SampleSize)
	v.SetDefault("filter.timezone", d.Filter.Timezone)
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.mouse_enabled", d.UI.MouseEnabled)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("history.max_entries", d.History.MaxEntries)
	v.SetDefault("performance.connection_pool_size", d.Performance.ConnectionPoolSize)
	v.SetDefault("performance.query_timeout", d.Performance.QueryTimeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
}

// Load loads configuration. An explicit path must exist; otherwise config.yaml
// is searched in the user config dir, the current directory and ./config.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if dir, err := GetConfigPath(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// A missing file is fine when searching, we have defaults
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.General.DefaultLimit <= 0 {
		return errors.Errorf("general.default_limit must be positive, got %d", c.General.DefaultLimit)
	}
	if c.General.SampleSize <= 0 {
		return errors.Errorf("general.sample_size must be positive, got %d", c.General.SampleSize)
	}
	seen := make(map[string]bool)
	for i, conn := range c.Connections {
		if conn.Name == "" {
			return errors.Errorf("connections[%d]: name is required", i)
		}
		if seen[conn.Name] {
			return errors.Errorf("connections[%d]: duplicate name %q", i, conn.Name)
		}
		seen[conn.Name] = true
		d, err := models.ParseDialect(string(conn.Driver))
		if err != nil {
			return errors.Wrapf(err, "connections[%d]", i)
		}
		c.Connections[i].Driver = d
	}
	return nil
}

// Location resolves filter.timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Filter.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Filter.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "filter.timezone %q", c.Filter.Timezone)
	}
	return loc, nil
}

// QueryTimeout returns performance.query_timeout as a duration
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Performance.QueryTimeout) * time.Millisecond
}

// Connection finds a configured connection by name
func (c *Config) Connection(name string) (models.ConnectionConfig, bool) {
	for _, conn := range c.Connections {
		if conn.Name == name {
			return conn, true
		}
	}
	return models.ConnectionConfig{}, false
}

// HistoryPath returns history.path, defaulting to history.db in the config dir
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create config directory")
	}
	return filepath.Join(dir, "history.db"), nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}
