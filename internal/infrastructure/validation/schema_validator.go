// Package validation implements the app configuration validators.
package validation

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/reglet-dev/distribution/internal/domain/entities"
)

//go:embed schema/app_config.schema.json
var appConfigSchema []byte

const appConfigSchemaURL = "app_config.schema.json"

// SchemaValidator checks the structural shape of an app configuration
// against the bundled JSON Schema.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles the bundled schema.
func NewSchemaValidator() (*SchemaValidator, error) {
	return NewSchemaValidatorFromBytes(appConfigSchema)
}

// NewSchemaValidatorFromBytes compiles a Draft 2020-12 schema document.
func NewSchemaValidatorFromBytes(schemaBytes []byte) (*SchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(appConfigSchemaURL, bytes.NewReader(schemaBytes)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile(appConfigSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &SchemaValidator{schema: schema}, nil
}

// Validate implements ports.ConfigValidator.
func (v *SchemaValidator) Validate(ctx context.Context, cfg *entities.ApplicationConfiguration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	// The schema validates generic JSON values, not Go structs.
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := v.schema.Validate(doc); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return formatSchemaValidationError(validationErr)
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// formatSchemaValidationError turns the leaf causes of a schema error into
// one error per violation.
func formatSchemaValidationError(err *jsonschema.ValidationError) error {
	var result *multierror.Error

	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			result = multierror.Append(result, fmt.Errorf("schema: %s: %s", location, e.Message))
			return
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)

	if result == nil {
		return errors.New("schema: validation failed")
	}
	return result.ErrorOrNil()
}
