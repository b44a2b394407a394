package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/distribution/internal/application/ports"
	"github.com/reglet-dev/distribution/internal/infrastructure/output"
)

// CommonOptions contains the report flags shared by the commands.
type CommonOptions struct {
	Format  string
	OutFile string
	Timeout time.Duration
	NoColor bool
}

// DefaultCommonOptions returns sensible defaults.
func DefaultCommonOptions() CommonOptions {
	return CommonOptions{
		Timeout: 2 * time.Minute,
		Format:  "table",
	}
}

// RegisterFlags adds common flags to a cobra command.
func (opts *CommonOptions) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", opts.Timeout,
		"Global timeout for the command (0 to disable)")
	cmd.Flags().StringVar(&opts.Format, "format", opts.Format,
		"Report format: table, json, yaml")
	cmd.Flags().StringVarP(&opts.OutFile, "output", "o", "",
		"Report file path (default: stdout)")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false,
		"Disable colored table output")
}

// ApplyToContext applies timeout to context.
// Returns new context and cancel function.
func (opts *CommonOptions) ApplyToContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	return context.WithCancel(ctx)
}

// Formatter opens the report destination and returns a formatter on it.
// The returned close function must be called once formatting is done.
func (opts *CommonOptions) Formatter(factory *output.FormatterFactory, stdout io.Writer) (ports.ReportFormatter, func(), error) {
	writer := stdout
	closeFn := func() {}
	if opts.OutFile != "" {
		//nolint:gosec // G304: User-controlled output file path is intentional
		file, err := os.Create(opts.OutFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		closeFn = func() {
			_ = file.Close() // Best-effort cleanup
		}
		writer = file
		slog.Info("writing report", "file", opts.OutFile, "format", opts.Format)
	}

	formatter, err := factory.Create(opts.Format, writer, output.FormatterOptions{
		Indent:  true,
		NoColor: opts.NoColor || opts.OutFile != "",
	})
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return formatter, closeFn, nil
}
