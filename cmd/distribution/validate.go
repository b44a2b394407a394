package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/distribution/internal/application/dto"
)

func newValidateCmd(global *globalOptions) *cobra.Command {
	opts := DefaultCommonOptions()

	cmd := &cobra.Command{
		Use:   "validate <app-config.yaml>",
		Short: "Check a single app configuration file",
		Long: `Load and validate one app configuration file with the same validators
the assemble command uses. The command fails when the file does not load
or does not validate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(global, nil)
			if err != nil {
				return err
			}

			ctx, cancel := opts.ApplyToContext(contextOf(cmd))
			defer cancel()

			resp, err := c.ValidateConfigUseCase().Execute(ctx, dto.ValidateRequest{Path: args[0]})
			if err != nil {
				return err
			}

			formatter, closeFn, err := opts.Formatter(c.FormatterFactory(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := formatter.FormatValidation(resp); err != nil {
				return fmt.Errorf("failed to format report: %w", err)
			}
			if !resp.State.IsReady() {
				return fmt.Errorf("%s: %s", resp.Path, resp.State)
			}
			return nil
		},
	}

	opts.RegisterFlags(cmd)
	return cmd
}
