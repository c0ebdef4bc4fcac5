package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Session  SessionConfig  `mapstructure:"session"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// SessionConfig tunes the in-session review queue.
type SessionConfig struct {
	// ReturnHorizonMinutes is how far ahead a just-graded item's due time may
	// lie for it to be held in the current sitting rather than left to a
	// future queue build.
	ReturnHorizonMinutes int `mapstructure:"return_horizon_minutes" validate:"gte=0"`
}
