package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/reglet-dev/distribution/internal/application/dto"
	"github.com/reglet-dev/distribution/internal/application/ports"
	"github.com/reglet-dev/distribution/internal/domain/values"
)

// ValidateConfigUseCase checks one app config file without building anything.
type ValidateConfigUseCase struct {
	loader    ports.ConfigLoader[AppConfig]
	validator ports.ConfigValidator[AppConfig]
	logger    *slog.Logger
}

// NewValidateConfigUseCase creates a new validate use case.
func NewValidateConfigUseCase(
	loader ports.ConfigLoader[AppConfig],
	validator ports.ConfigValidator[AppConfig],
	logger *slog.Logger,
) (*ValidateConfigUseCase, error) {
	if loader == nil || validator == nil {
		return nil, errors.New("validate requires a loader and a validator")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidateConfigUseCase{loader: loader, validator: validator, logger: logger}, nil
}

// Execute loads and validates req.Path. Load and validation failures are
// part of the response, not errors.
func (uc *ValidateConfigUseCase) Execute(ctx context.Context, req dto.ValidateRequest) (*dto.ValidateResponse, error) {
	resp := &dto.ValidateResponse{Path: req.Path, State: values.EntryUnloaded}

	cfg, err := uc.loader.Load(ctx, req.Path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		resp.State = values.EntryLoadFailed
		resp.Reason = err.Error()
		return resp, nil
	}

	if err := uc.validator.Validate(ctx, cfg); err != nil {
		resp.State = values.EntryValidationFailed
		resp.Reason = "validation failed"
		resp.Details = validationDetails(err)
		return resp, nil
	}

	uc.logger.Debug("config is valid", "path", req.Path)
	resp.State = values.EntryReady
	return resp, nil
}
