package report

import (
	"sort"
	"time"

	"golang.org/x/text/cases"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/domain"
)

// daysPerWeek buckets days of a month into weeks 1-5.
const daysPerWeek = 7

// WeekOfMonth returns the 1-based week of the month t falls in; days 1-7 are
// week 1.
func WeekOfMonth(t time.Time) int {
	return (t.Day()-1)/daysPerWeek + 1
}

// WeeklyRow counts cases per sub-unit for one week of one month. Counts is
// aligned with the report's SubUnits.
type WeeklyRow struct {
	Year   int   `json:"year"`
	Month  int   `json:"month"`
	Week   int   `json:"week"`
	Counts []int `json:"counts"`
	Total  int   `json:"total"`
}

// WeeklyReport is a week-by-sub-unit cross-tab of incidents.
type WeeklyReport struct {
	SubUnits []string    `json:"thanas"`
	Rows     []WeeklyRow `json:"rows"`
	// Totals holds the per-sub-unit column sums.
	Totals []int `json:"totals"`
	Total  int   `json:"total"`
}

// WeeklyBreakdown counts incidents per (year, month, week of month) and
// sub-unit. Columns follow subUnits and match sub-jurisdictions
// case-insensitively; cases at other sub-units or without an incident date
// are skipped. Rows are chronological.
func WeeklyBreakdown(cs []domain.CaseRecord, subUnits []string) WeeklyReport {
	folder := cases.Fold()

	columns := make(map[string]int, len(subUnits))
	for i, unit := range subUnits {
		key := folder.String(unit)
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}

	type rowKey struct{ year, month, week int }
	rowIndex := make(map[rowKey]int)

	report := WeeklyReport{
		SubUnits: append([]string(nil), subUnits...),
		Rows:     []WeeklyRow{},
		Totals:   make([]int, len(subUnits)),
	}

	for i := range cs {
		c := &cs[i]
		if c.IncidentDate == nil {
			continue
		}
		col, ok := columns[folder.String(c.SubJurisdiction)]
		if !ok {
			continue
		}

		t := *c.IncidentDate
		key := rowKey{year: t.Year(), month: int(t.Month()), week: WeekOfMonth(t)}
		idx, seen := rowIndex[key]
		if !seen {
			idx = len(report.Rows)
			rowIndex[key] = idx
			report.Rows = append(report.Rows, WeeklyRow{
				Year:   key.year,
				Month:  key.month,
				Week:   key.week,
				Counts: make([]int, len(subUnits)),
			})
		}

		report.Rows[idx].Counts[col]++
		report.Rows[idx].Total++
		report.Totals[col]++
		report.Total++
	}

	sort.Slice(report.Rows, func(i, j int) bool {
		a, b := report.Rows[i], report.Rows[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Week < b.Week
	})

	return report
}
