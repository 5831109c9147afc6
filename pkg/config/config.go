// Package config handles configuration loading and validation for rowexec.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the execution engine.
type Config struct {
	Memory   MemoryConfig   `mapstructure:"memory"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Log      LogConfig      `mapstructure:"log"`
	Fixtures FixturesConfig `mapstructure:"fixtures"`
}

// MemoryConfig bounds what running statements may hold in memory.
type MemoryConfig struct {
	// Limit is the per-connection byte limit. The process-wide limit is
	// Limit + Reserve.
	Limit   uint64 `mapstructure:"limit"`
	Reserve uint64 `mapstructure:"reserve"`
}

// EngineConfig holds type defaults applied when a column declares none.
type EngineConfig struct {
	DefaultVarcharLength uint32 `mapstructure:"default_varchar_length"`
	DecimalPrecision     uint8  `mapstructure:"decimal_precision"`
	DecimalScale         uint8  `mapstructure:"decimal_scale"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// FixturesConfig points at the YAML table fixtures used by the CLI.
type FixturesConfig struct {
	Path    string `mapstructure:"path"`
	Parquet string `mapstructure:"parquet"`
}

const (
	// DefaultReserve is the headroom the process-wide limit keeps above a
	// single connection's limit.
	DefaultReserve uint64 = 100 << 20
)

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Memory: MemoryConfig{
			Limit:   math.MaxInt64,
			Reserve: DefaultReserve,
		},
		Engine: EngineConfig{
			DefaultVarcharLength: 65535,
			DecimalPrecision:     18,
			DecimalScale:         3,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

// Load reads configuration from file and environment. An empty configPath
// searches the usual locations and falls back to defaults when no file exists.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := Default()
	v.SetDefault("memory.limit", cfg.Memory.Limit)
	v.SetDefault("memory.reserve", cfg.Memory.Reserve)
	v.SetDefault("engine.default_varchar_length", cfg.Engine.DefaultVarcharLength)
	v.SetDefault("engine.decimal_precision", cfg.Engine.DecimalPrecision)
	v.SetDefault("engine.decimal_scale", cfg.Engine.DecimalScale)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.output", cfg.Log.Output)
	v.SetDefault("fixtures.path", "")
	v.SetDefault("fixtures.parquet", "")

	v.SetEnvPrefix("ROWEXEC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("rowexec")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.rowexec")

		// Missing file is fine, defaults apply.
		_ = v.ReadInConfig()
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that configuration values are sensible
func (c *Config) Validate() error {
	if c.Memory.Limit == 0 {
		return fmt.Errorf("memory.limit must be greater than 0")
	}
	if c.Engine.DecimalPrecision == 0 || c.Engine.DecimalPrecision > 38 {
		return fmt.Errorf("engine.decimal_precision must be between 1 and 38")
	}
	if c.Engine.DecimalScale > c.Engine.DecimalPrecision {
		return fmt.Errorf("engine.decimal_scale %d exceeds precision %d",
			c.Engine.DecimalScale, c.Engine.DecimalPrecision)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}
	return nil
}
