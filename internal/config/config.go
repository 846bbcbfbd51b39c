package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the counter application's configuration.
type Config struct {
	Counter CounterConfig `mapstructure:"counter"`
	UI      UIConfig      `mapstructure:"ui"`
	Log     LogConfig     `mapstructure:"log"`
}

// CounterConfig holds feature settings.
type CounterConfig struct {
	Start int           `mapstructure:"start"`
	Tick  time.Duration `mapstructure:"tick"` // 0 disables auto-increment
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Mode string `mapstructure:"mode"` // "auto" | "tui" | "plain"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" | "json"
	File   string `mapstructure:"file"`   // empty means stderr
}

const (
	ModeAuto  = "auto"
	ModeTUI   = "tui"
	ModePlain = "plain"
)

// Load reads configuration from file and env. Env var overrides use prefix MVI_COUNTER_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("counter.start", 0)
	v.SetDefault("counter.tick", time.Second)
	v.SetDefault("ui.mode", ModeAuto)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	v.SetConfigType("yaml")

	cfgPath := os.Getenv("MVI_COUNTER_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "mvi-counter"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MVI_COUNTER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// an explicitly named file must exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgPath != "" {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.UI.Mode {
	case ModeAuto, ModeTUI, ModePlain:
	default:
		return fmt.Errorf("ui.mode: unknown mode %q", c.UI.Mode)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if c.Counter.Tick < 0 {
		return fmt.Errorf("counter.tick: must not be negative, got %s", c.Counter.Tick)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses Level ("debug", "info", "warn", "error").
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
