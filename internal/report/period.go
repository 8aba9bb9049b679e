package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/domain"
)

// Window lengths, in months, accepted by ComparePeriods.
const (
	WindowQuarter  = 3
	WindowHalfYear = 6
	WindowYear     = 12
	DefaultWindow  = WindowQuarter
)

// comparedMonths is the number of consecutive reference months in a PeriodReport.
const comparedMonths = 3

// percentScale converts a ratio to a percentage.
const percentScale = 100

// ValidWindow reports whether n is an accepted window length.
func ValidWindow(n int) bool {
	return n == WindowQuarter || n == WindowHalfYear || n == WindowYear
}

// Window is a half-open span of whole calendar months, [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow returns the window of length months ending with the reference
// month (0-based) of year. Windows that reach before January continue into the
// previous year.
func NewWindow(year, month, length int) Window {
	ref := time.Month(month + 1)
	return Window{
		Start: time.Date(year, ref-time.Month(length-1), 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, ref+1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// shiftYears moves the window by n years.
func (w Window) shiftYears(n int) Window {
	return Window{Start: w.Start.AddDate(n, 0, 0), End: w.End.AddDate(n, 0, 0)}
}

// PeriodQuery selects the months compared by ComparePeriods.
type PeriodQuery struct {
	Year int `json:"year"`
	// Month is 0-based: January is 0.
	Month  int `json:"month"`
	Window int `json:"window"`
	// Jurisdiction restricts counting to one district. Empty means all.
	Jurisdiction string `json:"district,omitempty"`
	YearOverYear bool   `json:"year_over_year"`
}

// JurisdictionPeriod is the pending work of one jurisdiction in a window.
type JurisdictionPeriod struct {
	Jurisdiction string `json:"district"`
	// SubUnits are ranked by count, highest first.
	SubUnits []SubUnitCount `json:"thanas"`
	// Total sums the sub-unit counts.
	Total int `json:"total"`
	// Cases is the number of matching cases, including those that list no sub-unit.
	Cases int `json:"cases"`
}

// PriorPeriod compares a window with the same window one year earlier.
type PriorPeriod struct {
	Window        Window  `json:"window"`
	Cases         int     `json:"cases"`
	Difference    int     `json:"difference"`
	PercentChange float64 `json:"percent_change"`
}

// MonthComparison is the pending work in the window ending at one month.
type MonthComparison struct {
	Label         string               `json:"label"`
	Year          int                  `json:"year"`
	Month         int                  `json:"month"`
	Window        Window               `json:"window"`
	Jurisdictions []JurisdictionPeriod `json:"districts"`
	Total         int                  `json:"total"`
	Cases         int                  `json:"cases"`
	Prior         *PriorPeriod         `json:"prior,omitempty"`
}

// PeriodReport compares pending work across consecutive months.
type PeriodReport struct {
	Query  PeriodQuery       `json:"query"`
	Months []MonthComparison `json:"months"`
}

// ComparePeriods counts pending cases (under investigation or charge prepared)
// whose incident date falls in a trailing window, for the reference month and
// the two months before it. Cases are broken down by the sub-units their
// breakdown lists under their own jurisdiction, one count per listed token.
// An unsupported window length is treated as DefaultWindow.
func ComparePeriods(cs []domain.CaseRecord, q PeriodQuery) PeriodReport {
	if !ValidWindow(q.Window) {
		q.Window = DefaultWindow
	}

	report := PeriodReport{Query: q, Months: make([]MonthComparison, 0, comparedMonths)}

	for offset := comparedMonths - 1; offset >= 0; offset-- {
		ref := time.Date(q.Year, time.Month(q.Month+1)-time.Month(offset), 1, 0, 0, 0, 0, time.UTC)
		month := int(ref.Month()) - 1
		window := NewWindow(ref.Year(), month, q.Window)

		mc := MonthComparison{
			Label:  fmt.Sprintf("%s %d", ref.Month(), ref.Year()),
			Year:   ref.Year(),
			Month:  month,
			Window: window,
		}
		mc.Jurisdictions, mc.Total, mc.Cases = tallyWindow(cs, window, q.Jurisdiction)

		if q.YearOverYear {
			prior := window.shiftYears(-1)
			_, _, priorCases := tallyWindow(cs, prior, q.Jurisdiction)
			mc.Prior = &PriorPeriod{
				Window:        prior,
				Cases:         priorCases,
				Difference:    mc.Cases - priorCases,
				PercentChange: percentChange(mc.Cases, priorCases),
			}
		}

		report.Months = append(report.Months, mc)
	}

	return report
}

// tallyWindow groups the pending cases in w by jurisdiction and sub-unit.
func tallyWindow(cs []domain.CaseRecord, w Window, jurisdiction string) ([]JurisdictionPeriod, int, int) {
	rows := []JurisdictionPeriod{}
	rowIndex := make(map[string]int)
	unitIndex := make(map[string]map[string]int)
	total, matched := 0, 0

	for i := range cs {
		c := &cs[i]
		if !c.Stage.IsOpen() || c.IncidentDate == nil || !w.Contains(*c.IncidentDate) {
			continue
		}
		if jurisdiction != "" && c.Jurisdiction != jurisdiction {
			continue
		}

		idx, ok := rowIndex[c.Jurisdiction]
		if !ok {
			idx = len(rows)
			rowIndex[c.Jurisdiction] = idx
			unitIndex[c.Jurisdiction] = make(map[string]int)
			rows = append(rows, JurisdictionPeriod{Jurisdiction: c.Jurisdiction, SubUnits: []SubUnitCount{}})
		}
		row := &rows[idx]
		units := unitIndex[c.Jurisdiction]

		row.Cases++
		matched++

		for _, token := range c.SubUnits() {
			u, seen := units[token]
			if !seen {
				u = len(row.SubUnits)
				units[token] = u
				row.SubUnits = append(row.SubUnits, SubUnitCount{SubUnit: token})
			}
			row.SubUnits[u].Count++
			row.Total++
			total++
		}
	}

	for i := range rows {
		units := rows[i].SubUnits
		sort.SliceStable(units, func(a, b int) bool { return units[a].Count > units[b].Count })
	}

	return rows, total, matched
}

func percentChange(current, prior int) float64 {
	if prior == 0 {
		if current == 0 {
			return 0
		}
		return percentScale
	}
	return float64(current-prior) / float64(prior) * percentScale
}
