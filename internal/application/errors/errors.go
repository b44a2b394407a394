// Package apperrors defines application-level error types.
package apperrors

import (
	"fmt"
)

// ConfigLoadError indicates a keyed config source is missing, unreadable
// or unparsable. The key is dropped from the build.
type ConfigLoadError struct {
	Cause error
	Key   string
	Path  string
}

func (e *ConfigLoadError) Error() string {
	return fmt.Sprintf("load config for %s from %s: %v", e.Key, e.Path, e.Cause)
}

func (e *ConfigLoadError) Unwrap() error {
	return e.Cause
}

// NewConfigLoadError creates a new load error.
func NewConfigLoadError(key, path string, cause error) *ConfigLoadError {
	return &ConfigLoadError{
		Key:   key,
		Path:  path,
		Cause: cause,
	}
}

// ConfigValidationError indicates parsed config content violates its rules.
// The key is dropped from the build.
type ConfigValidationError struct {
	Cause   error
	Key     string
	Details []string // One entry per violation
}

func (e *ConfigValidationError) Error() string {
	if len(e.Details) <= 1 {
		return fmt.Sprintf("validation failed for %s: %v", e.Key, e.Cause)
	}
	return fmt.Sprintf("validation failed for %s: %d issues", e.Key, len(e.Details))
}

func (e *ConfigValidationError) Unwrap() error {
	return e.Cause
}

// NewConfigValidationError creates a new validation error.
func NewConfigValidationError(key string, cause error, details ...string) *ConfigValidationError {
	return &ConfigValidationError{
		Key:     key,
		Cause:   cause,
		Details: details,
	}
}

// FilesystemError indicates the output could not be materialized.
// It aborts the whole build.
type FilesystemError struct {
	Cause error
	Op    string
	Path  string
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("filesystem error: %s %s: %v", e.Op, e.Path, e.Cause)
}

func (e *FilesystemError) Unwrap() error {
	return e.Cause
}

// NewFilesystemError creates a new filesystem error.
func NewFilesystemError(op, path string, cause error) *FilesystemError {
	return &FilesystemError{
		Op:    op,
		Path:  path,
		Cause: cause,
	}
}

// ConfigurationError indicates service config or setup issue.
type ConfigurationError struct {
	Cause   error
	Aspect  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error (%s): %s: %v", e.Aspect, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Aspect, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Aspect:  aspect,
		Message: message,
		Cause:   cause,
	}
}
