// Package container provides dependency injection for the application.
package container

import (
	"fmt"
	"log/slog"

	"github.com/reglet-dev/distribution/internal/application/dto"
	"github.com/reglet-dev/distribution/internal/application/services"
	"github.com/reglet-dev/distribution/internal/domain/values"
	"github.com/reglet-dev/distribution/internal/infrastructure/checksum"
	"github.com/reglet-dev/distribution/internal/infrastructure/codec"
	"github.com/reglet-dev/distribution/internal/infrastructure/config"
	"github.com/reglet-dev/distribution/internal/infrastructure/filesystem"
	"github.com/reglet-dev/distribution/internal/infrastructure/output"
	"github.com/reglet-dev/distribution/internal/infrastructure/validation"
)

// Container holds all application dependencies.
type Container struct {
	cfg              config.ServiceConfig
	countries        []values.CountryCode
	assembleUseCase  *services.AssembleUseCase
	validateUseCase  *services.ValidateConfigUseCase
	formatterFactory *output.FormatterFactory
	logger           *slog.Logger
}

// Options configure the container.
type Options struct {
	Config config.ServiceConfig
	Logger *slog.Logger
}

// New creates a new dependency injection container.
func New(opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	cfg := opts.Config

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	countries, err := cfg.Countries()
	if err != nil {
		return nil, err
	}

	loader := config.NewAppConfigLoader(config.WithVariables(cfg.AppConfig.Vars))

	validator, err := validation.New(validation.Options{
		Schema: cfg.Validation.Schema,
		Rules:  cfg.Validation.Rules,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build validators: %w", err)
	}

	encoder, err := codec.NewCBOREncoder()
	if err != nil {
		return nil, err
	}

	digester, err := checksum.New(cfg.Checksum.Algorithm)
	if err != nil {
		return nil, err
	}

	outputDir, err := cfg.OutputDir()
	if err != nil {
		return nil, err
	}

	assembleUseCase, err := services.NewAssembleUseCase(services.AssembleDeps{
		Source:         cfg,
		Loader:         loader,
		Validator:      validator,
		Encoder:        encoder,
		Digester:       digester,
		Output:         filesystem.Factory{OutputDir: outputDir, Recreate: cfg.Paths.RecreateOutput},
		Logger:         opts.Logger,
		ChecksumSuffix: cfg.Checksum.Suffix,
		Concurrency:    cfg.AppConfig.Concurrency,
	})
	if err != nil {
		return nil, err
	}

	validateUseCase, err := services.NewValidateConfigUseCase(loader, validator, opts.Logger)
	if err != nil {
		return nil, err
	}

	return &Container{
		cfg:              cfg,
		countries:        countries,
		assembleUseCase:  assembleUseCase,
		validateUseCase:  validateUseCase,
		formatterFactory: output.NewFormatterFactory(),
		logger:           opts.Logger,
	}, nil
}

// AssembleUseCase returns the assemble use case.
func (c *Container) AssembleUseCase() *services.AssembleUseCase {
	return c.assembleUseCase
}

// ValidateConfigUseCase returns the validate use case.
func (c *Container) ValidateConfigUseCase() *services.ValidateConfigUseCase {
	return c.validateUseCase
}

// FormatterFactory returns the report formatter factory.
func (c *Container) FormatterFactory() *output.FormatterFactory {
	return c.formatterFactory
}

// AssembleRequest returns the request for a build of the configured countries.
func (c *Container) AssembleRequest(dryRun bool) dto.AssembleRequest {
	return dto.AssembleRequest{
		Layout:    c.cfg.Layout(),
		Countries: append([]values.CountryCode(nil), c.countries...),
		DryRun:    dryRun,
	}
}

// Config returns the service configuration.
func (c *Container) Config() config.ServiceConfig {
	return c.cfg
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}
