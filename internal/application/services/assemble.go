// Package services contains application use cases.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/reglet-dev/distribution/internal/application/dto"
	apperrors "github.com/reglet-dev/distribution/internal/application/errors"
	"github.com/reglet-dev/distribution/internal/application/ports"
	"github.com/reglet-dev/distribution/internal/domain/entities"
	"github.com/reglet-dev/distribution/internal/domain/structure"
	"github.com/reglet-dev/distribution/internal/domain/values"
)

// AppConfig is the config value type flowing through the app configuration tree.
type AppConfig = *entities.ApplicationConfiguration

// AssembleDeps are the collaborators of an assembly build.
type AssembleDeps struct {
	Source         ports.ParametersSource
	Loader         ports.ConfigLoader[AppConfig]
	Validator      ports.ConfigValidator[AppConfig]
	Encoder        ports.PayloadEncoder[AppConfig]
	Digester       structure.Digester
	Output         ports.OutputFactory
	Logger         *slog.Logger
	ChecksumSuffix string
	// Concurrency bounds the countries processed at once; 0 means no limit.
	Concurrency int
}

// AssembleUseCase builds the app configuration tree and writes it out.
// A fresh tree is built per Execute call.
type AssembleUseCase struct {
	deps AssembleDeps
}

// NewAssembleUseCase creates a new assemble use case.
func NewAssembleUseCase(deps AssembleDeps) (*AssembleUseCase, error) {
	if deps.Source == nil || deps.Loader == nil || deps.Validator == nil || deps.Encoder == nil {
		return nil, errors.New("assemble requires a source, loader, validator and encoder")
	}
	if deps.Digester == nil || deps.Output == nil {
		return nil, errors.New("assemble requires a digester and an output factory")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &AssembleUseCase{deps: deps}, nil
}

// Execute runs one build. Per-key load and validation failures are
// reported in the result; filesystem failures abort with an error.
func (uc *AssembleUseCase) Execute(ctx context.Context, req dto.AssembleRequest) (*dto.BuildReport, error) {
	startTime := time.Now()
	buildID := values.NewBuildID()
	logger := uc.deps.Logger.With("build_id", buildID.String())

	keys := make([]string, 0, len(req.Countries))
	for _, c := range req.Countries {
		keys = append(keys, c.String())
	}

	countries, err := NewValidatedDirectory(ValidatedDirectoryOptions[AppConfig]{
		Name:         req.Layout.Country,
		IndexName:    req.Layout.Index,
		ArtifactName: req.Layout.Artifact,
		Keys:         keys,
		Source:       uc.deps.Source,
		Loader:       uc.deps.Loader,
		Validator:    uc.deps.Validator,
		Encoder:      uc.deps.Encoder,
		Logger:       logger,
		Concurrency:  uc.deps.Concurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create country directory: %w", err)
	}

	root, err := NewAppConfigurationTree(req.Layout, countries)
	if err != nil {
		return nil, err
	}

	logger.Info("preparing output tree", "countries", len(keys))
	if err := root.Prepare(ctx, structure.Ancestry{}); err != nil {
		return nil, fmt.Errorf("failed to prepare output tree: %w", err)
	}

	target, err := uc.deps.Output.Open(ctx, req.DryRun)
	if err != nil {
		return nil, err
	}

	emitter := structure.NewChecksumEmitter(target, uc.deps.Digester, uc.deps.ChecksumSuffix)
	if err := root.Write(ctx, emitter); err != nil {
		logger.Error("build aborted", "error", err)
		return nil, fmt.Errorf("failed to write output tree: %w", err)
	}

	report := &dto.BuildReport{
		BuildID:   buildID,
		StartTime: startTime,
		Output:    target.Root(),
		Checksum:  uc.deps.Digester.Algorithm(),
		Entries:   entryReports(countries.Entries()),
		Files:     target.Written(),
		DryRun:    req.DryRun,
		Duration:  time.Since(startTime),
	}

	logger.Info("build finished",
		"output", report.Output,
		"ready", len(report.ReadyKeys()),
		"failed", report.FailedCount(),
		"files", len(report.Files),
		"dry_run", req.DryRun)

	return report, nil
}

// NewAppConfigurationTree returns the root directory holding
// <prefix...>/<configuration>/<countries>.
func NewAppConfigurationTree(layout dto.Layout, countries structure.Writable) (*structure.Directory, error) {
	root := structure.NewRootDirectory()

	parent := root
	for _, segment := range layout.Prefix {
		dir, err := structure.NewDirectory(segment)
		if err != nil {
			return nil, fmt.Errorf("invalid prefix segment: %w", err)
		}
		if err := parent.AddWritable(dir); err != nil {
			return nil, err
		}
		parent = dir
	}

	configuration, err := structure.NewDirectory(layout.Configuration)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration directory name: %w", err)
	}
	if err := configuration.AddWritable(countries); err != nil {
		return nil, err
	}
	if err := parent.AddWritable(configuration); err != nil {
		return nil, err
	}
	return root, nil
}

func entryReports(entries []Entry) []dto.EntryReport {
	reports := make([]dto.EntryReport, 0, len(entries))
	for _, e := range entries {
		r := dto.EntryReport{
			Key:    e.Key,
			State:  e.State,
			Source: e.Source,
		}
		if e.Err != nil {
			r.Reason = e.Err.Error()
		}
		var verr *apperrors.ConfigValidationError
		if errors.As(e.Err, &verr) {
			r.Details = verr.Details
		}
		reports = append(reports, r)
	}
	return reports
}
