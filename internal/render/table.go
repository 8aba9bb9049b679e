// Package render turns report results into terminal tables, spreadsheets and
// charts.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/report"
)

// Column headers shared by the table and workbook renderers.
const (
	headerYellowLine      = "Yellow line"
	headerRedLine         = "Red line"
	headerPreparedRedLine = "Prepared (red)"
	headerTotal           = "Total"
)

// stageExtraColumns counts the label, total and priority columns around the
// stage columns.
const stageExtraColumns = 5

func newWriter(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// stageHeader is the column header row of a stage cross-tab.
func stageHeader(r *report.StageReport) []string {
	header := make([]string, 0, len(r.Stages)+stageExtraColumns)
	header = append(header, string(r.GroupBy))
	for _, s := range r.Stages {
		header = append(header, string(s))
	}
	return append(header, headerTotal, headerYellowLine, headerRedLine, headerPreparedRedLine)
}

// stageCells flattens one cross-tab row into header order.
func stageCells(row *report.StageRow) []any {
	cells := make([]any, 0, len(row.Counts)+stageExtraColumns)
	cells = append(cells, row.Label)
	for _, n := range row.Counts {
		cells = append(cells, n)
	}
	return append(cells, row.Total, row.YellowLine, row.RedLine, row.PreparedRedLine)
}

func toRow(values []string) table.Row {
	row := make(table.Row, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}

// StageTable writes the stage cross-tab with its totals row as the footer.
func StageTable(w io.Writer, r report.StageReport) {
	t := newWriter(w)
	t.AppendHeader(toRow(stageHeader(&r)))
	for i := range r.Rows {
		t.AppendRow(stageCells(&r.Rows[i]))
	}
	t.AppendFooter(stageCells(&r.Totals))
	t.Render()
}

// JurisdictionTable writes case counts per jurisdiction.
func JurisdictionTable(w io.Writer, r report.JurisdictionReport) {
	t := newWriter(w)
	t.AppendHeader(table.Row{"District", "Cases"})

	total := 0
	for _, row := range r.Rows {
		t.AppendRow(table.Row{row.Jurisdiction, row.Count})
		total += row.Count
	}
	if r.Unmatched > 0 {
		t.AppendRow(table.Row{"(unmatched)", r.Unmatched})
	}
	t.AppendFooter(table.Row{headerTotal, total + r.Unmatched})
	t.Render()
}

// PeriodTable writes one block per compared month: each district with its
// ranked sub-units, then the month's totals and the prior-year comparison
// when present.
func PeriodTable(w io.Writer, r report.PeriodReport) {
	t := newWriter(w)
	t.SetTitle(fmt.Sprintf("Pending cases, %d month window", r.Query.Window))
	t.AppendHeader(table.Row{"Month", "District", "Thanas", "Count", "Cases"})

	for _, m := range r.Months {
		for _, j := range m.Jurisdictions {
			units := make([]string, 0, len(j.SubUnits))
			for _, u := range j.SubUnits {
				units = append(units, fmt.Sprintf("%s (%d)", u.SubUnit, u.Count))
			}
			t.AppendRow(table.Row{m.Label, j.Jurisdiction, strings.Join(units, ", "), j.Total, j.Cases})
		}

		summary := table.Row{m.Label, headerTotal, "", m.Total, m.Cases}
		if m.Prior != nil {
			summary[2] = fmt.Sprintf("prior year %d (%+d, %+.1f%%)", m.Prior.Cases, m.Prior.Difference, m.Prior.PercentChange)
		}
		t.AppendRow(summary)
		t.AppendSeparator()
	}

	t.Render()
}

// SeriesTable writes the monthly counts of a time series.
func SeriesTable(w io.Writer, s report.Series) {
	t := newWriter(w)
	t.AppendHeader(table.Row{"Month", "Cases"})

	total := 0
	for i, label := range s.Labels {
		t.AppendRow(table.Row{label, s.Values[i]})
		total += s.Values[i]
	}
	t.AppendFooter(table.Row{headerTotal, total})
	t.Render()
}

// WeeklyTable writes the week-by-sub-unit cross-tab.
func WeeklyTable(w io.Writer, r report.WeeklyReport) {
	t := newWriter(w)

	header := table.Row{"Week"}
	for _, u := range r.SubUnits {
		header = append(header, u)
	}
	t.AppendHeader(append(header, headerTotal))

	for _, row := range r.Rows {
		cells := table.Row{fmt.Sprintf("%d/%d week %d", row.Month, row.Year, row.Week)}
		for _, n := range row.Counts {
			cells = append(cells, n)
		}
		t.AppendRow(append(cells, row.Total))
	}

	footer := table.Row{headerTotal}
	for _, n := range r.Totals {
		footer = append(footer, n)
	}
	t.AppendFooter(append(footer, r.Total))
	t.Render()
}
