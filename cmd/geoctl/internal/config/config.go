// Package config resolves geoctl settings from flags, GEOCTL_* environment
// variables and an optional geoctl.yaml.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/go-drift/geolocation/cmd/geoctl/internal/logging"
	"github.com/go-drift/geolocation/pkg/geolocation"
)

// Prompt modes.
const (
	PromptAsk = "ask"
	PromptYes = "yes"
	PromptNo  = "no"
)

// EnvPrefix prefixes environment overrides, e.g. GEOCTL_FETCH_TIMEOUT for
// fetch.timeout.
const EnvPrefix = "GEOCTL"

// Config is the resolved geoctl configuration.
type Config struct {
	// Profile is the simulated device profile path.
	Profile string         `mapstructure:"profile"`
	Prompt  string         `mapstructure:"prompt"`
	Log     logging.Config `mapstructure:"log"`
	Fetch   FetchConfig    `mapstructure:"fetch"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
}

// FetchConfig holds the default position fetch options.
type FetchConfig struct {
	HighAccuracy bool          `mapstructure:"high_accuracy"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaximumAge   time.Duration `mapstructure:"maximum_age"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address; empty disables the endpoint.
	Addr string `mapstructure:"addr"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Profile: "geoctl-device.yaml",
		Prompt:  PromptAsk,
		Log:     logging.DefaultConfig(),
		Fetch: FetchConfig{
			HighAccuracy: geolocation.DefaultFetchOptions.HighAccuracy,
			Timeout:      time.Duration(geolocation.DefaultFetchOptions.TimeoutMs) * time.Millisecond,
			MaximumAge:   0,
		},
	}
}

// SetDefaults registers every key with v so environment overrides apply.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("profile", d.Profile)
	v.SetDefault("prompt", d.Prompt)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output", d.Log.Output)
	v.SetDefault("fetch.high_accuracy", d.Fetch.HighAccuracy)
	v.SetDefault("fetch.timeout", d.Fetch.Timeout)
	v.SetDefault("fetch.maximum_age", d.Fetch.MaximumAge)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
}

// Load resolves the configuration held by v. When file is empty, geoctl.yaml
// is looked up in the working directory and skipped if absent.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("geoctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
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

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	switch c.Prompt {
	case PromptAsk, PromptYes, PromptNo:
	default:
		return fmt.Errorf("prompt: must be %s, %s or %s, got %q", PromptAsk, PromptYes, PromptNo, c.Prompt)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format: must be console or json, got %q", c.Log.Format)
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("fetch.timeout: must not be negative")
	}
	if c.Fetch.MaximumAge < 0 {
		return fmt.Errorf("fetch.maximum_age: must not be negative")
	}
	return nil
}

// FetchOptions converts the fetch section. A zero timeout means no limit.
func (c *Config) FetchOptions() geolocation.FetchOptions {
	return geolocation.FetchOptions{
		HighAccuracy: c.Fetch.HighAccuracy,
		TimeoutMs:    c.Fetch.Timeout.Milliseconds(),
		MaximumAgeMs: c.Fetch.MaximumAge.Milliseconds(),
	}
}
