package report

import "github.com/jonesrussell/north-cloud/case-tracker/internal/domain"

// TotalsLabel labels the totals row of a cross-tab.
const TotalsLabel = "कुल योग"

// GroupBy selects the case field that keys cross-tab rows.
type GroupBy string

const (
	// GroupByJurisdiction keys rows by district.
	GroupByJurisdiction GroupBy = "district"
	// GroupBySubJurisdiction keys rows by police station.
	GroupBySubJurisdiction GroupBy = "thana"
)

// ParseGroupBy maps a query value onto a GroupBy, defaulting to jurisdiction.
func ParseGroupBy(s string) GroupBy {
	if GroupBy(s) == GroupBySubJurisdiction {
		return GroupBySubJurisdiction
	}
	return GroupByJurisdiction
}

func (g GroupBy) key(c *domain.CaseRecord) string {
	if g == GroupBySubJurisdiction {
		return c.SubJurisdiction
	}
	return c.Jurisdiction
}

// StageRow is one line of the stage cross-tab. Counts is aligned with the
// report's Stages.
type StageRow struct {
	Label  string `json:"label"`
	Counts []int  `json:"counts"`
	// Total sums Counts only.
	Total int `json:"total"`
	// YellowLine counts yellow-marked cases in any stage.
	YellowLine int `json:"yellow_line"`
	// RedLine counts red-marked cases outside the charge-prepared stage.
	RedLine int `json:"red_line"`
	// PreparedRedLine counts red-marked cases in the charge-prepared stage.
	// These cases are not in the charge-prepared column.
	PreparedRedLine int `json:"prepared_red_line"`
}

// Count returns the row's count for stage, or zero if stage is not a column.
func (r *StageRow) Count(stages []domain.Stage, stage domain.Stage) int {
	for i, s := range stages {
		if s == stage {
			return r.Counts[i]
		}
	}
	return 0
}

func (r *StageRow) add(other *StageRow) {
	for i, n := range other.Counts {
		r.Counts[i] += n
	}
	r.YellowLine += other.YellowLine
	r.RedLine += other.RedLine
	r.PreparedRedLine += other.PreparedRedLine
}

func (r *StageRow) sumTotal() {
	r.Total = 0
	for _, n := range r.Counts {
		r.Total += n
	}
}

// StageReport cross-tabulates cases by group and workflow stage.
type StageReport struct {
	GroupBy GroupBy        `json:"group_by"`
	Stages  []domain.Stage `json:"stages"`
	Rows    []StageRow     `json:"rows"`
	// Totals sums every row, PreparedRedLine included; the legacy dashboard
	// left that column at zero in its totals row.
	Totals StageRow `json:"totals"`
}

// StageTable builds the stage cross-tab in a single pass. Rows appear in the
// order their key is first seen; columns follow vocabulary. A stage that is not
// in the vocabulary adds to no column, but the case's row still exists.
//
// Priority counters are tracked beside the stage columns. The one exception is
// a red-marked case in the charge-prepared stage: it counts in PreparedRedLine
// only, neither in the charge-prepared column nor in RedLine.
func StageTable(cs []domain.CaseRecord, vocabulary []domain.Stage, group GroupBy) StageReport {
	if group == "" {
		group = GroupByJurisdiction
	}

	columns := make(map[domain.Stage]int, len(vocabulary))
	for i, s := range vocabulary {
		if _, dup := columns[s]; !dup {
			columns[s] = i
		}
	}

	report := StageReport{
		GroupBy: group,
		Stages:  append([]domain.Stage(nil), vocabulary...),
		Rows:    []StageRow{},
		Totals:  StageRow{Label: TotalsLabel, Counts: make([]int, len(vocabulary))},
	}
	rowIndex := make(map[string]int)

	for i := range cs {
		c := &cs[i]
		key := group.key(c)

		idx, ok := rowIndex[key]
		if !ok {
			idx = len(report.Rows)
			rowIndex[key] = idx
			report.Rows = append(report.Rows, StageRow{Label: key, Counts: make([]int, len(vocabulary))})
		}
		row := &report.Rows[idx]

		red := c.Priority.Has(domain.PriorityRed)
		prepared := c.Stage == domain.StageChargeSheetPrepared

		if red && prepared {
			row.PreparedRedLine++
		} else {
			if col, known := columns[c.Stage]; known {
				row.Counts[col]++
			}
			if red {
				row.RedLine++
			}
		}

		if c.Priority.Has(domain.PriorityYellow) {
			row.YellowLine++
		}
	}

	for i := range report.Rows {
		report.Rows[i].sumTotal()
		report.Totals.add(&report.Rows[i])
	}
	report.Totals.sumTotal()

	return report
}
