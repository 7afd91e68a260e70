package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" validate:"required"`
	Pool    PoolConfig    `mapstructure:"pool" validate:"required"`
	Cache   CacheConfig   `mapstructure:"cache" validate:"required"`
	Decoder DecoderConfig `mapstructure:"decoder" validate:"required"`
}

// LoggingConfig contains all logging-related configuration settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// PoolConfig contains the decode worker pool settings.
type PoolConfig struct {
	// WorkerCount is the number of concurrent decode workers.
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0,lte=64"`

	// QueueSize bounds each worker's task queue.
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`
}

// CacheConfig contains the artifact cache settings.
type CacheConfig struct {
	// MaxBytes is the cache capacity in bytes of decoded image data.
	MaxBytes int64 `mapstructure:"max_bytes" validate:"required,gt=0"`
}

// DecoderConfig contains settings for the external RAW decoding tool.
type DecoderConfig struct {
	// Tool is the dcraw-compatible executable used to decode RAW files.
	Tool string `mapstructure:"tool" validate:"required"`

	// TimeoutSeconds bounds a single decode invocation.
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"required,gt=0"`
}
