// Package config loads runtime settings from defaults, an optional
// config.yaml, NOTEKEEPER_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"notekeeper/internal/storage"
)

// EnvPrefix prefixes every environment variable, e.g. NOTEKEEPER_DATA_DIR.
const EnvPrefix = "NOTEKEEPER"

// ConfigName is the optional config file looked up in the data dir.
const ConfigName = "config.yaml"

// Config holds the runtime settings.
type Config struct {
	DataDir string `mapstructure:"data_dir"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Debug   bool   `mapstructure:"debug"`

	Storage struct {
		Driver string `mapstructure:"driver"`
	} `mapstructure:"storage"`

	AutoSave struct {
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"autosave"`

	Reminder struct {
		InboxSize   int           `mapstructure:"inbox_size"`
		PushURLs    []string      `mapstructure:"push_urls"`
		PushTimeout time.Duration `mapstructure:"push_timeout"`
	} `mapstructure:"reminder"`

	Search struct {
		IncludeEncrypted bool `mapstructure:"include_encrypted"`
	} `mapstructure:"search"`

	Crypto struct {
		KeyCacheTTL time.Duration `mapstructure:"key_cache_ttl"`
	} `mapstructure:"crypto"`
}

// Address is host:port for the HTTP bridge.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8080)
	v.SetDefault("debug", false)
	v.SetDefault("storage.driver", storage.DriverFile)
	v.SetDefault("autosave.interval", 30*time.Second)
	v.SetDefault("reminder.inbox_size", 50)
	v.SetDefault("reminder.push_urls", []string{})
	v.SetDefault("reminder.push_timeout", 10*time.Second)
	v.SetDefault("search.include_encrypted", false)
	v.SetDefault("crypto.key_cache_ttl", 30*time.Minute)
}

// Load reads the config file, if any, and decodes v into a validated Config.
// An explicit file must exist; otherwise <data_dir>/config.yaml is read when
// present.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigFile(filepath.Join(v.GetString("data_dir"), ConfigName))
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case storage.DriverFile, storage.DriverSQLite:
	default:
		return fmt.Errorf("storage.driver: %w: %q", storage.ErrUnknownDriver, c.Storage.Driver)
	}
	if c.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.AutoSave.Interval < time.Second {
		return fmt.Errorf("autosave.interval must be at least 1s, got %s", c.AutoSave.Interval)
	}
	if c.Reminder.InboxSize < 1 {
		return fmt.Errorf("reminder.inbox_size must be positive, got %d", c.Reminder.InboxSize)
	}
	if c.Reminder.PushTimeout <= 0 {
		return fmt.Errorf("reminder.push_timeout must be positive, got %s", c.Reminder.PushTimeout)
	}
	return nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	return errors.Is(err, fs.ErrNotExist)
}
