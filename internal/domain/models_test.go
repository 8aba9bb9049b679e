package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubUnits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "single token", raw: "Kotwali", want: []string{"Kotwali"}},
		{name: "trims each token", raw: " Kotwali ,Civil Lines,  Cantt", want: []string{"Kotwali", "Civil Lines", "Cantt"}},
		{name: "repeated tokens are kept", raw: "Kotwali, Kotwali", want: []string{"Kotwali", "Kotwali"}},
		{name: "drops empty tokens", raw: "Kotwali,, ,Cantt,", want: []string{"Kotwali", "Cantt"}},
		{name: "empty string", raw: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, domain.ParseSubUnits(tt.raw))
		})
	}
}

func TestBreakdownFromRaw_IgnoresNonStrings(t *testing.T) {
	t.Parallel()

	breakdown := domain.BreakdownFromRaw(map[string]any{
		"Bhopal": "Kotwali, Habibganj",
		"Indore": 42.0,
		"Sagar":  nil,
		"Rewa":   " , ",
	})

	assert.Equal(t, []string{"Kotwali", "Habibganj"}, breakdown["Bhopal"])
	assert.NotContains(t, breakdown, "Indore")
	assert.NotContains(t, breakdown, "Sagar")
	assert.NotContains(t, breakdown, "Rewa")
}

func TestCaseRecord_SubUnits_UsesOwnJurisdiction(t *testing.T) {
	t.Parallel()

	c := domain.CaseRecord{
		Jurisdiction: "Bhopal",
		SubUnitBreakdown: domain.SubUnitBreakdown{
			"Bhopal": {"Kotwali"},
			"Indore": {"Rajwada"},
		},
	}

	assert.Equal(t, []string{"Kotwali"}, c.SubUnits())

	c.Jurisdiction = "Sagar"
	assert.Empty(t, c.SubUnits())
}

func TestCaseRecord_IncidentIn(t *testing.T) {
	t.Parallel()

	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	inside := time.Date(2024, time.January, 31, 23, 59, 0, 0, time.UTC)

	assert.True(t, (&domain.CaseRecord{IncidentDate: &from}).IncidentIn(from, to), "start is inclusive")
	assert.True(t, (&domain.CaseRecord{IncidentDate: &inside}).IncidentIn(from, to))
	assert.False(t, (&domain.CaseRecord{IncidentDate: &to}).IncidentIn(from, to), "end is exclusive")
	assert.False(t, (&domain.CaseRecord{}).IncidentIn(from, to), "missing date is never in range")
}

func TestPriority_Has(t *testing.T) {
	t.Parallel()

	both := domain.PriorityRed | domain.PriorityYellow

	assert.True(t, both.Has(domain.PriorityRed))
	assert.True(t, both.Has(domain.PriorityYellow))
	assert.False(t, domain.PriorityRed.Has(domain.PriorityYellow))
	assert.False(t, both.Has(domain.PriorityNone))
}

func TestPriority_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	data, marshalErr := json.Marshal(domain.PriorityRed | domain.PriorityYellow)
	require.NoError(t, marshalErr)
	assert.JSONEq(t, `["red","yellow"]`, string(data))

	var p domain.Priority
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, domain.PriorityRed|domain.PriorityYellow, p)

	require.Error(t, json.Unmarshal([]byte(`["green"]`), &p))
}

func TestStagesFromStrings(t *testing.T) {
	t.Parallel()

	got := domain.StagesFromStrings([]string{"विवेचना", "", "खात्मा", "विवेचना"})

	assert.Equal(t, []domain.Stage{domain.StageInvestigation, domain.StageClosure}, got)
}

func TestStage_IsOpen(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.StageInvestigation.IsOpen())
	assert.True(t, domain.StageChargeSheetPrepared.IsOpen())
	assert.False(t, domain.StageChargeSheetFiled.IsOpen())
	assert.False(t, domain.Stage("").IsOpen())
}

func TestStatuteEntry_IsBlank(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.StatuteEntry{}.IsBlank())
	assert.False(t, domain.StatuteEntry{SectionNumber: "103"}.IsBlank())
}
