package config

import (
	"fmt"
	"slices"
)

// ValidationError reports a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

const (
	minPort = 1
	maxPort = 65535
)

var logLevels = []string{"debug", "info", "warn", "warning", "error", "fatal"}

// ValidateRequired fails when value is empty.
func ValidateRequired(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// ValidatePort fails when port is outside 1-65535.
func ValidatePort(field string, port int) error {
	if port < minPort || port > maxPort {
		return &ValidationError{Field: field, Message: "must be between 1 and 65535"}
	}
	return nil
}

// ValidatePositive fails when n is zero or negative.
func ValidatePositive[N ~int | ~int64 | ~float64](field string, n N) error {
	if n <= 0 {
		return &ValidationError{Field: field, Message: "must be greater than zero"}
	}
	return nil
}

// ValidateLogLevel fails for level names the logger does not understand.
func ValidateLogLevel(field, level string) error {
	if !slices.Contains(logLevels, level) {
		return &ValidationError{Field: field, Message: "must be one of: debug, info, warn, error, fatal"}
	}
	return nil
}
