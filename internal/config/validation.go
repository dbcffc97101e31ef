// validation.go - Startup configuration validation.
//
// Problems are collected rather than returned one at a time so an operator
// sees every bad setting in a single run.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValidationError describes one rejected configuration value.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// Validator accumulates configuration errors. A Validator with errors is
// itself an error.
type Validator struct {
	errors []ValidationError
}

// NewValidator creates an empty validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// AddError records a validation error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

func (v *Validator) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d error(s):\n", len(v.errors)))
	for i, err := range v.errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidatePort parses a port number, accepting an optional leading ':'.
func (v *Validator) ValidatePort(key, value string) int {
	portStr := strings.TrimPrefix(strings.TrimSpace(value), ":")

	port, err := strconv.Atoi(portStr)
	if err != nil {
		v.AddError(key, "port must be a number")
		return 0
	}

	if port < 1 || port > 65535 {
		v.AddError(key, "port must be between 1 and 65535")
	}
	return port
}

// ValidatePositiveInt parses a strictly positive integer.
func (v *Validator) ValidatePositiveInt(key, value string) int {
	num, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		v.AddError(key, "must be a valid integer")
		return 0
	}

	if num <= 0 {
		v.AddError(key, "must be a positive integer")
	}
	return num
}

// ValidateNonNegativeInt parses an integer that may be zero.
func (v *Validator) ValidateNonNegativeInt(key, value string) int {
	num, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		v.AddError(key, "must be a valid integer")
		return 0
	}

	if num < 0 {
		v.AddError(key, "must not be negative")
	}
	return num
}

// ValidateDuration parses a Go duration string such as "30s" or "5m".
// Zero is allowed and means "no timeout".
func (v *Validator) ValidateDuration(key, value string) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		v.AddError(key, "must be a valid duration (e.g. 30s, 5m)")
		return 0
	}

	if d < 0 {
		v.AddError(key, "must not be negative")
	}
	return d
}

// ValidateEnum validates that a value is one of allowed options.
func (v *Validator) ValidateEnum(key, value string, allowed []string) {
	for _, opt := range allowed {
		if value == opt {
			return
		}
	}

	v.AddError(key, fmt.Sprintf("must be one of: %s (got: %s)", strings.Join(allowed, ", "), value))
}
