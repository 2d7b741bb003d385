package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Notify   NotifyConfig   `mapstructure:"notify" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains the settings for verifying handshake credentials.
// Token issuance happens elsewhere in the system; this service only needs
// the shared signing secret and the lifetime used when minting test tokens.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// NotifyConfig contains tuning knobs for the notification pipeline.
type NotifyConfig struct {
	// WorkerCount is the number of dispatcher goroutines draining the
	// fire-and-forget queue.
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`

	// QueueSize is the dispatcher's buffered queue capacity. A full queue
	// drops the dispatch rather than blocking the caller.
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`

	// ResolveAttempts bounds the project lookup retries that absorb
	// read-after-write lag.
	ResolveAttempts int `mapstructure:"resolve_attempts" validate:"required,gt=0"`

	// ResolveBackoffMillis is the base backoff between lookup attempts;
	// the actual delay grows linearly with the attempt number.
	ResolveBackoffMillis int `mapstructure:"resolve_backoff_millis" validate:"required,gt=0"`
}
