package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/render"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/report"
)

const outputFileMode = 0o644

func newExportCommand() *cobra.Command {
	var (
		out    string
		group  string
		period periodFlags
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stage and period reports to an Excel workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, queryErr := period.query(time.Now())
			if queryErr != nil {
				return queryErr
			}

			return withReports(cmd, func(r reportSource) error {
				stages := r.Stages(cmd.Context(), report.ParseGroupBy(group))
				warnFetch(cmd, stages.FetchError)

				periods, periodsErr := r.Periods(cmd.Context(), q)
				if periodsErr != nil {
					return periodsErr
				}

				var buf bytes.Buffer
				if renderErr := render.StageWorkbook(&buf, stages.Data, periods.Data); renderErr != nil {
					return fmt.Errorf("render workbook: %w", renderErr)
				}
				return writeOutput(cmd, out, buf.Bytes())
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "stages.xlsx", "output file")
	cmd.Flags().StringVar(&group, "group", string(report.GroupByJurisdiction), "stage sheet grouping: district or thana")
	period.register(cmd, true)
	return cmd
}

// writeOutput writes a fully rendered file, so a failed render never leaves
// a partial one behind.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if writeErr := os.WriteFile(path, data, outputFileMode); writeErr != nil {
		return fmt.Errorf("write %s: %w", path, writeErr)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", path, len(data))
	return nil
}
