// Package config provides infrastructure for loading configuration:
// the service configuration and the per-country app configuration files.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/distribution/internal/domain/entities"
)

// AppConfigLoader loads app configuration files from YAML.
type AppConfigLoader struct {
	substitutor *VariableSubstitutor
}

// LoaderOption configures an AppConfigLoader.
type LoaderOption func(*AppConfigLoader)

// WithVariables resolves {{ .vars.key }} placeholders after decoding.
func WithVariables(vars map[string]interface{}) LoaderOption {
	return func(l *AppConfigLoader) {
		l.substitutor = NewVariableSubstitutor(vars)
	}
}

// NewAppConfigLoader creates a new app config loader.
func NewAppConfigLoader(opts ...LoaderOption) *AppConfigLoader {
	l := &AppConfigLoader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and parses the app configuration at path.
// Unknown fields are rejected.
func (l *AppConfigLoader) Load(ctx context.Context, path string) (*entities.ApplicationConfiguration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Security: Use os.OpenRoot to prevent path traversal attacks
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open config directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(base)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	return l.LoadFromReader(file)
}

// LoadFromReader parses an app configuration from an io.Reader.
func (l *AppConfigLoader) LoadFromReader(r io.Reader) (*entities.ApplicationConfiguration, error) {
	var cfg entities.ApplicationConfiguration

	decoder := yaml.NewDecoder(r, yaml.DisallowUnknownField())
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode config YAML: empty document")
		}
		return nil, fmt.Errorf("failed to decode config YAML: %w", err)
	}

	if l.substitutor != nil {
		if err := l.substitutor.Substitute(&cfg); err != nil {
			return nil, fmt.Errorf("failed to substitute variables: %w", err)
		}
	}

	return &cfg, nil
}
