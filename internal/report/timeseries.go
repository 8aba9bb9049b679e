package report

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/domain"
	"golang.org/x/text/cases"
)

// sectionDelimiter separates a section number from its description in labels.
const sectionDelimiter = "-"

// SeriesFilter narrows the cases counted by MonthlySeries. Empty fields match
// everything.
type SeriesFilter struct {
	// Section may be a bare number ("103") or a label ("103 - Murder").
	Section string       `json:"section,omitempty"`
	Stage   domain.Stage `json:"stage,omitempty"`
}

// SeriesPoint is one month bucket.
type SeriesPoint struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Series is a chronological count of cases per incident month. Labels and
// Values are parallel to Points.
type Series struct {
	Filter SeriesFilter  `json:"filter"`
	Points []SeriesPoint `json:"points"`
	Labels []string      `json:"labels"`
	Values []int         `json:"values"`
}

// SectionKey reduces a section value to the part before any "-", trimmed.
func SectionKey(s string) string {
	before, _, _ := strings.Cut(s, sectionDelimiter)
	return strings.TrimSpace(before)
}

// MonthLabel formats a bucket label as "<month>/<year>", month 1-12.
func MonthLabel(year int, month time.Month) string {
	return strconv.Itoa(int(month)) + "/" + strconv.Itoa(year)
}

// MonthlySeries counts matching cases per incident month, oldest first.
// Cases without an incident date are skipped.
func MonthlySeries(cs []domain.CaseRecord, filter SeriesFilter) Series {
	folder := cases.Fold()
	section := folder.String(SectionKey(filter.Section))

	type bucketKey struct {
		year  int
		month time.Month
	}
	buckets := make(map[bucketKey]int)

	for i := range cs {
		c := &cs[i]
		if c.IncidentDate == nil {
			continue
		}
		if section != "" && folder.String(SectionKey(c.PrimarySection)) != section {
			continue
		}
		if filter.Stage != "" && c.Stage != filter.Stage {
			continue
		}
		buckets[bucketKey{year: c.IncidentDate.Year(), month: c.IncidentDate.Month()}]++
	}

	keys := make([]bucketKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	series := Series{
		Filter: filter,
		Points: make([]SeriesPoint, 0, len(keys)),
		Labels: make([]string, 0, len(keys)),
		Values: make([]int, 0, len(keys)),
	}
	for _, k := range keys {
		p := SeriesPoint{Year: k.year, Month: int(k.month), Label: MonthLabel(k.year, k.month), Count: buckets[k]}
		series.Points = append(series.Points, p)
		series.Labels = append(series.Labels, p.Label)
		series.Values = append(series.Values, p.Count)
	}

	return series
}
