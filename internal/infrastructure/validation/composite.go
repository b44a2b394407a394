package validation

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/reglet-dev/distribution/internal/application/ports"
	"github.com/reglet-dev/distribution/internal/domain/entities"
)

// DomainValidator applies the business rules of the entity itself.
type DomainValidator struct{}

// Validate implements ports.ConfigValidator.
func (DomainValidator) Validate(ctx context.Context, cfg *entities.ApplicationConfiguration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return cfg.Validate()
}

// Composite runs every validator and aggregates their violations.
type Composite []ports.ConfigValidator[*entities.ApplicationConfiguration]

// Validate implements ports.ConfigValidator.
func (c Composite) Validate(ctx context.Context, cfg *entities.ApplicationConfiguration) error {
	var result *multierror.Error
	for _, v := range c {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := v.Validate(ctx, cfg); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Options selects the validators of a build.
type Options struct {
	Rules  []string
	Schema bool
}

// New assembles the validator chain: schema (optional), domain rules, then
// operator rules.
func New(opts Options) (Composite, error) {
	var chain Composite
	if opts.Schema {
		sv, err := NewSchemaValidator()
		if err != nil {
			return nil, err
		}
		chain = append(chain, sv)
	}
	chain = append(chain, DomainValidator{})
	if len(opts.Rules) > 0 {
		rv, err := NewRuleValidator(opts.Rules)
		if err != nil {
			return nil, err
		}
		chain = append(chain, rv)
	}
	return chain, nil
}
