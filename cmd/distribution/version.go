package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/distribution/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of distribution",
		Run: func(cmd *cobra.Command, _ []string) {
			info := version.Get()
			fmt.Fprintf(cmd.OutOrStdout(), "distribution version %s\n", info.Full())
		},
	}
}
