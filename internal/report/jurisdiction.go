// Package report holds the aggregations behind every dashboard view. Each
// function is a single pass over an in-memory snapshot: it never performs I/O,
// never mutates its input and never fails. Missing or malformed data yields
// zero counts rather than errors.
package report

import (
	"golang.org/x/text/cases"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/domain"
)

// JurisdictionCount is the number of cases recorded against one jurisdiction.
type JurisdictionCount struct {
	Jurisdiction string `json:"district"`
	Count        int    `json:"count"`
}

// JurisdictionReport lists case counts per reference jurisdiction.
type JurisdictionReport struct {
	Rows []JurisdictionCount `json:"rows"`
	// Unmatched counts cases whose jurisdiction is missing from the reference list.
	// Those cases appear in no row.
	Unmatched int `json:"unmatched"`
}

// ByJurisdiction counts cases per reference jurisdiction, matching names
// case-insensitively. Rows follow the order of jurisdictions.
func ByJurisdiction(cs []domain.CaseRecord, jurisdictions []string) JurisdictionReport {
	folder := cases.Fold()

	counts := make(map[string]int, len(jurisdictions))
	for i := range cs {
		counts[folder.String(cs[i].Jurisdiction)]++
	}

	result := JurisdictionReport{Rows: make([]JurisdictionCount, 0, len(jurisdictions))}
	matched := make(map[string]bool, len(jurisdictions))

	for _, name := range jurisdictions {
		key := folder.String(name)
		result.Rows = append(result.Rows, JurisdictionCount{Jurisdiction: name, Count: counts[key]})
		matched[key] = true
	}

	for key, n := range counts {
		if !matched[key] {
			result.Unmatched += n
		}
	}

	return result
}

// SubUnitCount is the number of cases held by one sub-unit.
type SubUnitCount struct {
	SubUnit string `json:"thana"`
	Count   int    `json:"count"`
}

// SubUnitReport lists per-sub-unit counts for one jurisdiction.
type SubUnitReport struct {
	Jurisdiction string         `json:"district"`
	SubUnits     []SubUnitCount `json:"thanas"`
	Total        int            `json:"total"`
}

// BySubUnit counts, for every sub-unit in the directory, the cases whose
// sub-jurisdiction matches it case-insensitively and whose stage equals stage.
// An empty stage matches every case.
func BySubUnit(cs []domain.CaseRecord, directory []domain.JurisdictionUnits, stage domain.Stage) []SubUnitReport {
	folder := cases.Fold()

	counts := make(map[string]int)
	for i := range cs {
		if stage != "" && cs[i].Stage != stage {
			continue
		}
		counts[folder.String(cs[i].SubJurisdiction)]++
	}

	reports := make([]SubUnitReport, 0, len(directory))
	for _, entry := range directory {
		r := SubUnitReport{
			Jurisdiction: entry.Jurisdiction,
			SubUnits:     make([]SubUnitCount, 0, len(entry.SubUnits)),
		}
		for _, unit := range entry.SubUnits {
			n := counts[folder.String(unit)]
			r.SubUnits = append(r.SubUnits, SubUnitCount{SubUnit: unit, Count: n})
			r.Total += n
		}
		reports = append(reports, r)
	}

	return reports
}
