// Package cmd implements the case-tracker command-line interface. With no
// sub-command it runs the HTTP service.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// cfgFile overrides CONFIG_PATH and ./config.yml.
	cfgFile string

	// version is set at build time with -ldflags "-X .../cmd.version=...".
	version = "dev"

	rootCmd = newRootCommand()
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "case-tracker",
		Short:         "Crime case tracking reports and API",
		Long:          `case-tracker aggregates pending crime cases by district, police station, stage and period, and serves the reports over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $CONFIG_PATH or ./config.yml)")

	root.AddCommand(
		newServeCommand(),
		newReportCommand(),
		newExportCommand(),
		newChartCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "case-tracker version %s\n", version)
		},
	}
}
