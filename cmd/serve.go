package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/bootstrap"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	return bootstrap.Start(cmd.Context(), cfgFile)
}
