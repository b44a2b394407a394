// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"

	"github.com/reglet-dev/distribution/internal/application/dto"
	"github.com/reglet-dev/distribution/internal/domain/structure"
)

// ParametersSource supplies the config source path for a logical key.
type ParametersSource interface {
	ParametersFile(key string) string
}

// ConfigLoader reads a config source into a structured value.
// Missing, unreadable or unparsable input is an error.
type ConfigLoader[T any] interface {
	Load(ctx context.Context, path string) (T, error)
}

// ConfigValidator judges a structured config value against business rules.
type ConfigValidator[T any] interface {
	Validate(ctx context.Context, cfg T) error
}

// PayloadEncoder serializes a validated config value into artifact bytes.
// Encoding must be deterministic.
type PayloadEncoder[T any] interface {
	Encode(cfg T) ([]byte, error)
}

// OutputTarget is a materializer for one build.
type OutputTarget interface {
	structure.Sink

	// Root describes where output goes, for reporting.
	Root() string

	// Written returns the files written so far, sorted.
	Written() []string
}

// OutputFactory opens the output target of a build.
type OutputFactory interface {
	Open(ctx context.Context, dryRun bool) (OutputTarget, error)
}

// ReportFormatter renders build reports and validation verdicts.
type ReportFormatter interface {
	Format(report *dto.BuildReport) error
	FormatValidation(resp *dto.ValidateResponse) error
}
