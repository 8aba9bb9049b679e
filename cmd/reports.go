package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/report"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/service"
)

// reportSource is the part of service.ReportService the CLI reads.
type reportSource interface {
	JurisdictionReport(ctx context.Context) service.Result[report.JurisdictionReport]
	Stages(ctx context.Context, group report.GroupBy) service.Result[report.StageReport]
	Periods(ctx context.Context, q report.PeriodQuery) (service.Result[report.PeriodReport], error)
	TimeSeries(ctx context.Context, filter report.SeriesFilter) service.Result[report.Series]
	Weekly(ctx context.Context) service.Result[report.WeeklyReport]
}

// openReports connects to the database and returns the report service with
// its cleanup. Logs go to stderr.
var openReports = func(ctx context.Context) (reportSource, func(), error) {
	app, appErr := bootstrap.NewApp(ctx, bootstrap.Options{
		ConfigPath:     cfgFile,
		LogOutputPaths: []string{"stderr"},
	})
	if appErr != nil {
		return nil, nil, appErr
	}
	return app.Reports, app.Close, nil
}

func withReports(cmd *cobra.Command, fn func(reportSource) error) error {
	reports, closeFn, openErr := openReports(cmd.Context())
	if openErr != nil {
		return fmt.Errorf("initialize: %w", openErr)
	}
	defer closeFn()

	return fn(reports)
}

// warnFetch tells the user the report is empty because the data could not be
// loaded.
func warnFetch(cmd *cobra.Command, fetchErr string) {
	if fetchErr != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: case data unavailable, report is empty: %s\n", fetchErr)
	}
}
