// Package config loads and validates process-level application configuration
// from environment variables and optional config files. Per-user scheduling
// configuration is a domain concern and lives in internal/domain instead.
package config
