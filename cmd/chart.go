package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/render"
)

const defaultChartTitle = "Cases per month"

func newChartCommand() *cobra.Command {
	var (
		out    string
		title  string
		series seriesFlags
	)

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Plot cases per month to a PNG or PDF file",
		Long: `Plot cases per month. The format follows the output file extension.

Examples:
  case-tracker chart --out murder.pdf --section 103`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, formatErr := chartFormat(out)
			if formatErr != nil {
				return formatErr
			}

			heading := title
			if series.section != "" {
				heading += " - " + series.section
			}

			return withReports(cmd, func(r reportSource) error {
				res := r.TimeSeries(cmd.Context(), series.filter())
				warnFetch(cmd, res.FetchError)

				var buf bytes.Buffer
				if chartErr := render.SeriesChart(&buf, res.Data, heading, format); chartErr != nil {
					return fmt.Errorf("render chart: %w", chartErr)
				}
				return writeOutput(cmd, out, buf.Bytes())
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "series.png", "output file, .png or .pdf")
	cmd.Flags().StringVar(&title, "title", defaultChartTitle, "chart title")
	series.register(cmd)
	return cmd
}

func chartFormat(path string) (string, error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch format {
	case render.FormatPNG, render.FormatPDF:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %q (use .png or .pdf)", render.ErrUnsupportedFormat, filepath.Ext(path))
	}
}
