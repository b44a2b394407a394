package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/distribution/internal/infrastructure/config"
	"github.com/reglet-dev/distribution/internal/infrastructure/container"
)

// globalOptions are the persistent flags of every command.
type globalOptions struct {
	cfgFile   string
	verbose   bool
	logFormat string
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Output goes to stdout, logs to stderr.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "distribution",
		Short: "Assemble the app configuration distribution tree",
		Long: `Distribution loads the per-country app configuration, validates it and
writes the result as a directory tree: one payload per valid country, an
index of the countries that made it, and a checksum next to every file.

A country that fails to load or validate is left out of the tree and the
index; the build itself carries on.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogging(stderr, opts)
		},
		SilenceUsage: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "",
		"service config file (env overrides use the "+config.EnvPrefix+"_ prefix)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text, json")

	rootCmd.AddCommand(
		newAssembleCmd(opts),
		newValidateCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func setupLogging(w io.Writer, opts *globalOptions) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch opts.logFormat {
	case "text", "":
		handler = slog.NewTextHandler(w, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	default:
		return fmt.Errorf("unknown log format: %s (supported: text, json)", opts.logFormat)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// loadContainer resolves the service config and wires the application.
func loadContainer(opts *globalOptions, override func(*config.ServiceConfig)) (*container.Container, error) {
	cfg, err := config.LoadServiceConfig(opts.cfgFile)
	if err != nil {
		return nil, err
	}
	if opts.cfgFile != "" {
		slog.Debug("using config file", "file", opts.cfgFile)
	}
	if override != nil {
		override(&cfg)
	}
	return container.New(container.Options{Config: cfg, Logger: slog.Default()})
}
