package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the configuration is usable before the server
// starts serving requests.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.ServerPort == "" {
		errors = append(errors, "SERVER_PORT must not be empty")
	}
	if cfg.DBHost == "" || cfg.DBPort == "" || cfg.DBName == "" {
		errors = append(errors, "DB_HOST, DB_PORT and DB_NAME are required")
	}
	if cfg.DBUser == "" || cfg.DBPassword == "" {
		errors = append(errors, "database credentials are required (env or docker secrets)")
	}
	if cfg.JWTSecret == "" && !IsDevelopment() {
		errors = append(errors, "JWT_SECRET is required outside development")
	}
	if IsProduction() && cfg.DBSSLMode == "disable" {
		errors = append(errors, "DB_SSL_MODE must not be disable in production")
	}
	if cfg.MediaDir == "" {
		errors = append(errors, "MEDIA_DIR must not be empty")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "\n"))
	}

	return nil
}
