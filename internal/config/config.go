// Package config carries the run configuration for verification runs.
//
// Defaults are explicit and documented on the struct fields; helpers that
// need a tweaked configuration copy the struct and set named fields
// rather than threading ad-hoc option maps around.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Monitoring levels for the computation under test.
const (
	MonitoringNone = "none"
	MonitoringAll  = "all"
)

// Config configures a verification run. The zero value is not usable;
// start from Default().
type Config struct {
	// Debug enables debug execution of the computation under test.
	// Default: true.
	Debug bool `mapstructure:"debug"`

	// Monitoring selects the engine monitoring level ("none" or "all").
	// Default: "none".
	Monitoring string `mapstructure:"monitoring"`

	// Timeout bounds how long the runner polls the checker before
	// reporting failure. Default: 30s.
	Timeout time.Duration `mapstructure:"timeout"`

	// PollInterval is the granularity at which the checker is polled.
	// Default: 100ms.
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// PersistenceGrace is slept before terminating the worker, giving
	// asynchronous persistence flushing time to finish so state writes
	// are not truncated. Default: 0; use DefaultPersistenceGrace when the
	// run configuration implies persistence.
	PersistenceGrace time.Duration `mapstructure:"persistence_grace"`
}

// DefaultPersistenceGrace is the empirical flush gap for runs with
// asynchronous persistence.
const DefaultPersistenceGrace = 5 * time.Second

// Default returns the documented default configuration.
func Default() Config {
	return Config{
		Debug:        true,
		Monitoring:   MonitoringNone,
		Timeout:      30 * time.Second,
		PollInterval: 100 * time.Millisecond,
	}
}

// Load reads a configuration file, applying defaults for unset fields
// and allowing STREAMCHECK_* environment variables to override. An
// empty path skips the file and resolves defaults and environment only.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetEnvPrefix("STREAMCHECK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	defaults := Default()
	v.SetDefault("debug", defaults.Debug)
	v.SetDefault("monitoring", defaults.Monitoring)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("poll_interval", defaults.PollInterval)
	v.SetDefault("persistence_grace", defaults.PersistenceGrace)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", c.PollInterval)
	}
	if c.PollInterval >= c.Timeout {
		return fmt.Errorf("poll_interval (%v) must be shorter than timeout (%v)", c.PollInterval, c.Timeout)
	}
	if c.PersistenceGrace < 0 {
		return fmt.Errorf("persistence_grace must not be negative, got %v", c.PersistenceGrace)
	}
	if c.Monitoring != MonitoringNone && c.Monitoring != MonitoringAll {
		return fmt.Errorf("monitoring must be %q or %q, got %q", MonitoringNone, MonitoringAll, c.Monitoring)
	}
	return nil
}
