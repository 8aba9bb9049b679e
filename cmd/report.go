package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/render"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/report"
)

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a report as a table",
		Long: `Print one of the case reports as a table.

Examples:
  # Pending cases per stage, by police station
  case-tracker report stages --group thana

  # Three-month comparison ending March 2024, with the prior year
  case-tracker report periods --year 2024 --month 3 --yoy`,
	}

	cmd.AddCommand(
		newJurisdictionsReportCommand(),
		newStagesReportCommand(),
		newPeriodsReportCommand(),
		newTimeSeriesReportCommand(),
		newWeeklyReportCommand(),
	)
	return cmd
}

func newJurisdictionsReportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "jurisdictions",
		Short: "Case counts per district",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withReports(cmd, func(r reportSource) error {
				res := r.JurisdictionReport(cmd.Context())
				warnFetch(cmd, res.FetchError)
				render.JurisdictionTable(cmd.OutOrStdout(), res.Data)
				return nil
			})
		},
	}
}

func newStagesReportCommand() *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "stages",
		Short: "Pending cases per stage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withReports(cmd, func(r reportSource) error {
				res := r.Stages(cmd.Context(), report.ParseGroupBy(group))
				warnFetch(cmd, res.FetchError)
				render.StageTable(cmd.OutOrStdout(), res.Data)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&group, "group", string(report.GroupByJurisdiction), "row grouping: district or thana")
	return cmd
}

// periodFlags holds the period comparison flags shared by report periods and
// export. Month is 1-12 here; PeriodQuery counts from 0.
type periodFlags struct {
	year     int
	month    int
	window   int
	district string
	yoy      bool
}

func (p *periodFlags) register(cmd *cobra.Command, defaultYOY bool) {
	cmd.Flags().IntVar(&p.year, "year", 0, "year of the latest month (default current year)")
	cmd.Flags().IntVar(&p.month, "month", 0, "latest month, 1-12 (default current month)")
	cmd.Flags().IntVar(&p.window, "window", report.DefaultWindow, "window length in months: 3, 6 or 12")
	cmd.Flags().StringVar(&p.district, "district", "", "restrict to one district")
	cmd.Flags().BoolVar(&p.yoy, "yoy", defaultYOY, "compare with the same window a year earlier")
}

func (p *periodFlags) query(now time.Time) (report.PeriodQuery, error) {
	q := report.PeriodQuery{
		Year:         p.year,
		Month:        p.month - 1,
		Window:       p.window,
		Jurisdiction: p.district,
		YearOverYear: p.yoy,
	}
	if p.year == 0 {
		q.Year = now.Year()
	}
	if p.month == 0 {
		q.Month = int(now.Month()) - 1
	}
	if p.month < 0 || p.month > 12 {
		return q, fmt.Errorf("--month must be between 1 and 12, got %d", p.month)
	}
	return q, nil
}

func newPeriodsReportCommand() *cobra.Command {
	var flags periodFlags

	cmd := &cobra.Command{
		Use:   "periods",
		Short: "Pending work per district and police station over the last months",
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, queryErr := flags.query(time.Now())
			if queryErr != nil {
				return queryErr
			}

			return withReports(cmd, func(r reportSource) error {
				res, periodsErr := r.Periods(cmd.Context(), q)
				if periodsErr != nil {
					return periodsErr
				}
				warnFetch(cmd, res.FetchError)
				render.PeriodTable(cmd.OutOrStdout(), res.Data)
				return nil
			})
		},
	}

	flags.register(cmd, false)
	return cmd
}

// seriesFlags filters the monthly series.
type seriesFlags struct {
	section string
	stage   string
}

func (s *seriesFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.section, "section", "", "only cases under this section")
	cmd.Flags().StringVar(&s.stage, "stage", "", "only cases at this stage")
}

func (s *seriesFlags) filter() report.SeriesFilter {
	return report.SeriesFilter{Section: s.section, Stage: domain.Stage(s.stage)}
}

func newTimeSeriesReportCommand() *cobra.Command {
	var flags seriesFlags

	cmd := &cobra.Command{
		Use:   "timeseries",
		Short: "Cases per month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withReports(cmd, func(r reportSource) error {
				res := r.TimeSeries(cmd.Context(), flags.filter())
				warnFetch(cmd, res.FetchError)
				render.SeriesTable(cmd.OutOrStdout(), res.Data)
				return nil
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func newWeeklyReportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "weekly",
		Short: "Cases per police station for each week of each month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withReports(cmd, func(r reportSource) error {
				res := r.Weekly(cmd.Context())
				warnFetch(cmd, res.FetchError)
				render.WeeklyTable(cmd.OutOrStdout(), res.Data)
				return nil
			})
		},
	}
}
