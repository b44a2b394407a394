package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/distribution/internal/infrastructure/config"
)

type assembleOptions struct {
	CommonOptions
	dryRun    bool
	strict    bool
	outDir    string
	countries []string
}

func newAssembleCmd(global *globalOptions) *cobra.Command {
	opts := &assembleOptions{CommonOptions: DefaultCommonOptions()}

	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Build the app configuration tree",
		Long: `Load, validate and encode the app configuration of every configured
country and write the distribution tree:

  configuration/country/index
  configuration/country/index.checksum
  configuration/country/<CC>/app_config
  configuration/country/<CC>/app_config.checksum

Countries that fail to load or validate are reported and left out.
Use --strict to turn any dropped country into a failed command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAssemble(cmd, global, opts)
		},
	}

	opts.RegisterFlags(cmd)
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "build in memory without touching the output directory")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when any country is dropped")
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "output directory (overrides paths.output)")
	cmd.Flags().StringSliceVar(&opts.countries, "countries", nil, "countries to build (overrides app-config.countries)")
	return cmd
}

func runAssemble(cmd *cobra.Command, global *globalOptions, opts *assembleOptions) error {
	c, err := loadContainer(global, func(cfg *config.ServiceConfig) {
		if opts.outDir != "" {
			cfg.Paths.Output = opts.outDir
		}
		if len(opts.countries) > 0 {
			cfg.AppConfig.Countries = opts.countries
		}
	})
	if err != nil {
		return err
	}

	ctx, cancel := opts.ApplyToContext(contextOf(cmd))
	defer cancel()

	report, err := c.AssembleUseCase().Execute(ctx, c.AssembleRequest(opts.dryRun))
	if err != nil {
		return fmt.Errorf("assemble failed: %w", err)
	}

	formatter, closeFn, err := opts.Formatter(c.FormatterFactory(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeFn()

	if err := formatter.Format(report); err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}

	if opts.strict && report.FailedCount() > 0 {
		return fmt.Errorf("%d of %d countries dropped", report.FailedCount(), len(report.Entries))
	}
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
