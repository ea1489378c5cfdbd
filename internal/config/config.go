// Package config provides Viper-based configuration loading for the battle tracker.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BT_TELNET_PORT.
const EnvPrefix = "BT"

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener. 0 picks a free port.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// MaxConnections caps concurrent sessions; 0 means unlimited.
	MaxConnections int `mapstructure:"max_connections"`
	// MaxLineLength caps a single input line in bytes.
	MaxLineLength int `mapstructure:"max_line_length"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// TrackerConfig holds battle tracking settings.
type TrackerConfig struct {
	// EventHistory is how many events each fight and character retains.
	EventHistory int `mapstructure:"event_history"`
	// ConditionsDir is a directory of condition YAML files; empty uses the built-in catalog.
	ConditionsDir string `mapstructure:"conditions_dir"`
	// DiceSeed seeds a deterministic dice source; 0 uses crypto randomness.
	DiceSeed uint64 `mapstructure:"dice_seed"`
	// MaxFights caps the fights one session may hold.
	MaxFights int `mapstructure:"max_fights"`
}

// Config is the top-level application configuration.
type Config struct {
	Telnet  TelnetConfig  `mapstructure:"telnet"`
	Logging LoggingConfig `mapstructure:"logging"`
	Tracker TrackerConfig `mapstructure:"tracker"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	errs = append(errs, validateTelnet(c.Telnet)...)
	errs = append(errs, validateLogging(c.Logging)...)
	errs = append(errs, validateTracker(c.Tracker)...)

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTelnet(t TelnetConfig) []string {
	var errs []string
	if t.Port < 0 || t.Port > 65535 {
		errs = append(errs, fmt.Sprintf("telnet.port must be between 0 and 65535, got %d", t.Port))
	}
	if t.ReadTimeout < 0 {
		errs = append(errs, "telnet.read_timeout must not be negative")
	}
	if t.WriteTimeout < 0 {
		errs = append(errs, "telnet.write_timeout must not be negative")
	}
	if t.MaxConnections < 0 {
		errs = append(errs, fmt.Sprintf("telnet.max_connections must be >= 0, got %d", t.MaxConnections))
	}
	if t.MaxLineLength < 16 {
		errs = append(errs, fmt.Sprintf("telnet.max_line_length must be >= 16, got %d", t.MaxLineLength))
	}
	return errs
}

func validateLogging(l LoggingConfig) []string {
	var errs []string
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", l.Level))
	}
	if l.Format != "json" && l.Format != "console" {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", l.Format))
	}
	return errs
}

func validateTracker(t TrackerConfig) []string {
	var errs []string
	if t.EventHistory < 1 {
		errs = append(errs, fmt.Sprintf("tracker.event_history must be >= 1, got %d", t.EventHistory))
	}
	if t.MaxFights < 1 {
		errs = append(errs, fmt.Sprintf("tracker.max_fights must be >= 1, got %d", t.MaxFights))
	}
	return errs
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// NewViper returns a Viper instance carrying the defaults and BT_ environment
// overrides, ready for flags or a config file to be layered on.
func NewViper() *viper.Viper {
	v := viper.New()

	// Environment variable overrides with BT_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", "30m")
	v.SetDefault("telnet.write_timeout", "30s")
	v.SetDefault("telnet.max_connections", 64)
	v.SetDefault("telnet.max_line_length", 1024)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("tracker.event_history", 15)
	v.SetDefault("tracker.conditions_dir", "")
	v.SetDefault("tracker.dice_seed", 0)
	v.SetDefault("tracker.max_fights", 32)
}
