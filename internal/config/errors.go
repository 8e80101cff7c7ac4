package config

import (
	"errors"
	"fmt"
)

// ConfigError names the environment variable that made startup fail.
type ConfigError struct {
	Field   string
	Message string
	// Value is the rejected setting. It is left empty for credentials.
	Value string
}

// NewConfigError creates a new configuration error
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewConfigValueError creates a configuration error that quotes the
// rejected value.
func NewConfigValueError(field, value, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("config error for %s=%q: %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("config error for %s: %s", e.Field, e.Message)
}

// AsConfigError extracts a ConfigError from an error chain.
func AsConfigError(err error) (*ConfigError, bool) {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr, true
	}
	return nil, false
}
