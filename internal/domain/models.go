// Package domain contains the case and statute records shared by every report.
package domain

import (
	"strings"
	"time"
)

// subUnitSeparator splits the legacy sub-unit lists.
const subUnitSeparator = ","

// CaseRecord is one law-enforcement case.
type CaseRecord struct {
	ID                   int64            `db:"id"                      json:"id"`
	Jurisdiction         string           `db:"district"                json:"district"`
	SubJurisdiction      string           `db:"thana"                   json:"thana"`
	InvestigatingOfficer string           `db:"io"                      json:"io,omitempty"`
	Act                  string           `db:"act"                     json:"act"`
	Section              string           `db:"section"                 json:"section"`
	PrimarySection       string           `db:"primary_section"         json:"primary_section"`
	ChargeType           string           `db:"charge_type"             json:"charge_type,omitempty"`
	CaseNumber           string           `db:"crime_number"            json:"crime_number"`
	IncidentDate         *time.Time       `db:"incident_date"           json:"incident_date,omitempty"`
	FIRDate              *time.Time       `db:"fir_date"                json:"fir_date,omitempty"`
	ArrestDate           *time.Time       `db:"date_of_arrest"          json:"date_of_arrest,omitempty"`
	ChargeSheetReadyDate *time.Time       `db:"charge_sheet_ready_date" json:"charge_sheet_ready_date,omitempty"`
	ChargeSheetFiledDate *time.Time       `db:"charge_sheet_file_date"  json:"charge_sheet_file_date,omitempty"`
	TotalAccused         int              `db:"total_accused"           json:"total_accused"`
	TotalArrested        int              `db:"total_arrested"          json:"total_arrested"`
	TotalRemaining       int              `db:"total_left"              json:"total_left"`
	Stage                Stage            `db:"stage"                   json:"stage"`
	Marker               string           `db:"marker"                  json:"marker,omitempty"`
	Priority             Priority         `db:"-"                       json:"priority"`
	SubUnitBreakdown     SubUnitBreakdown `db:"-"                       json:"sub_unit_breakdown,omitempty"`
}

// SubUnits returns the sub-unit tokens recorded for the case's own jurisdiction.
func (c *CaseRecord) SubUnits() []string {
	return c.SubUnitBreakdown[c.Jurisdiction]
}

// IncidentIn reports whether the incident date falls in [from, to).
// A case without an incident date is in no range.
func (c *CaseRecord) IncidentIn(from, to time.Time) bool {
	if c.IncidentDate == nil {
		return false
	}
	t := *c.IncidentDate
	return !t.Before(from) && t.Before(to)
}

// SubUnitBreakdown maps a jurisdiction name to the sub-units listed for it.
type SubUnitBreakdown map[string][]string

// ParseSubUnits splits a legacy comma-separated sub-unit list, trimming each
// token. Empty tokens are dropped.
func ParseSubUnits(raw string) []string {
	parts := strings.Split(raw, subUnitSeparator)
	tokens := make([]string, 0, len(parts))

	for _, p := range parts {
		if token := strings.TrimSpace(p); token != "" {
			tokens = append(tokens, token)
		}
	}

	return tokens
}

// BreakdownFromRaw builds a breakdown from decoded JSON values. Only string
// values are kept; anything else contributes no sub-units.
func BreakdownFromRaw(raw map[string]any) SubUnitBreakdown {
	if len(raw) == 0 {
		return nil
	}

	breakdown := make(SubUnitBreakdown, len(raw))
	for jurisdiction, value := range raw {
		s, ok := value.(string)
		if !ok {
			continue
		}
		if tokens := ParseSubUnits(s); len(tokens) > 0 {
			breakdown[jurisdiction] = tokens
		}
	}

	return breakdown
}

// StatuteEntry is one chapter/section row of a penal-code reference table.
type StatuteEntry struct {
	ChapterName        string `db:"chapter_name"        json:"chapter_name"`
	ChapterDescription string `db:"chapter_description" json:"chapter_description"`
	SubChapter         string `db:"sub_chapter"         json:"sub_chapter"`
	SectionNumber      string `db:"section_number"      json:"section_number"`
	SectionContent     string `db:"section_content"     json:"section_content"`
}

// IsBlank reports whether the entry is the zero value returned by a lookup miss.
func (s StatuteEntry) IsBlank() bool {
	return s == StatuteEntry{}
}

// JurisdictionUnits lists the sub-units belonging to one jurisdiction.
type JurisdictionUnits struct {
	Jurisdiction string   `json:"district"`
	SubUnits     []string `json:"thanas"`
}
