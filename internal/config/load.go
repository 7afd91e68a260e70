package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from defaults, an optional rawviewer.yaml in the
// working directory, and RAWVIEWER_-prefixed environment variables, in
// increasing order of precedence. The result is validated before it is
// returned; an invalid configuration yields an error, never a partial
// Config.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("rawviewer")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and environment
		// variables carry the configuration. A malformed one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// RAWVIEWER_POOL_WORKER_COUNT overrides pool.worker_count, and so on.
	v.SetEnvPrefix("RAWVIEWER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers a default for every key so AutomaticEnv can bind
// overrides for all of them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("pool.worker_count", 2)
	v.SetDefault("pool.queue_size", 100)
	v.SetDefault("cache.max_bytes", 256<<20)
	v.SetDefault("decoder.tool", "dcraw")
	v.SetDefault("decoder.timeout_seconds", 30)
}
