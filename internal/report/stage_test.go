package report_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) *time.Time {
	t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestStageTable_UnknownStageKeepsRow(t *testing.T) {
	t.Parallel()

	investigation := domain.Stage("investigation")
	closed := domain.Stage("closed")

	cases := []domain.CaseRecord{
		{Jurisdiction: "A", Stage: investigation},
		{Jurisdiction: "A", Stage: investigation},
		{Jurisdiction: "B", Stage: "unknown-stage"},
	}

	got := report.StageTable(cases, []domain.Stage{investigation, closed}, report.GroupByJurisdiction)

	require.Len(t, got.Rows, 2)

	assert.Equal(t, "A", got.Rows[0].Label)
	assert.Equal(t, []int{2, 0}, got.Rows[0].Counts)
	assert.Equal(t, 2, got.Rows[0].Total)

	assert.Equal(t, "B", got.Rows[1].Label)
	assert.Equal(t, []int{0, 0}, got.Rows[1].Counts)
	assert.Equal(t, 0, got.Rows[1].Total)

	assert.Equal(t, report.TotalsLabel, got.Totals.Label)
	assert.Equal(t, []int{2, 0}, got.Totals.Counts)
	assert.Equal(t, 2, got.Totals.Total)
}

func TestStageTable_RedMarkerOnPreparedStage(t *testing.T) {
	t.Parallel()

	cases := []domain.CaseRecord{
		{Jurisdiction: "Bhopal", Stage: domain.StageChargeSheetPrepared, Marker: "red-flag", Priority: domain.PriorityRed},
	}

	got := report.StageTable(cases, domain.DefaultStages(), report.GroupByJurisdiction)
	row := got.Rows[0]

	assert.Equal(t, 1, row.PreparedRedLine)
	assert.Equal(t, 0, row.RedLine, "carve-out case is not a generic red case")
	assert.Equal(t, 0, row.Count(got.Stages, domain.StageChargeSheetPrepared), "carve-out case is not in the stage column")
	assert.Equal(t, 0, row.Total)
	assert.Equal(t, 1, got.Totals.PreparedRedLine)
}

func TestStageTable_PriorityCounters(t *testing.T) {
	t.Parallel()

	both := domain.PriorityRed | domain.PriorityYellow

	cases := []domain.CaseRecord{
		{Jurisdiction: "Bhopal", Stage: domain.StageInvestigation, Priority: domain.PriorityRed},
		{Jurisdiction: "Bhopal", Stage: domain.StageInvestigation, Priority: domain.PriorityYellow},
		{Jurisdiction: "Bhopal", Stage: domain.StageChargeSheetPrepared, Priority: domain.PriorityYellow},
		{Jurisdiction: "Bhopal", Stage: domain.StageChargeSheetPrepared, Priority: both},
		{Jurisdiction: "Bhopal", Stage: "", Priority: domain.PriorityRed},
	}

	got := report.StageTable(cases, domain.DefaultStages(), report.GroupByJurisdiction)
	row := got.Rows[0]

	assert.Equal(t, 2, row.Count(got.Stages, domain.StageInvestigation))
	assert.Equal(t, 1, row.Count(got.Stages, domain.StageChargeSheetPrepared))
	assert.Equal(t, 3, row.Total)
	assert.Equal(t, 3, row.YellowLine, "yellow counts regardless of stage")
	assert.Equal(t, 2, row.RedLine, "red outside the prepared stage, including an empty stage")
	assert.Equal(t, 1, row.PreparedRedLine)
}

func TestStageTable_FirstSeenRowOrderAndVocabularyColumns(t *testing.T) {
	t.Parallel()

	cases := []domain.CaseRecord{
		{Jurisdiction: "Sagar", Stage: domain.StageClosure},
		{Jurisdiction: "Bhopal", Stage: domain.StageInvestigation},
		{Jurisdiction: "Sagar", Stage: domain.StageInvestigation},
		{Jurisdiction: "Indore", Stage: domain.StageDismissed},
	}
	vocabulary := []domain.Stage{domain.StageInvestigation, domain.StageClosure}

	got := report.StageTable(cases, vocabulary, "")

	assert.Equal(t, report.GroupByJurisdiction, got.GroupBy)
	assert.Equal(t, vocabulary, got.Stages)

	labels := make([]string, 0, len(got.Rows))
	for _, r := range got.Rows {
		labels = append(labels, r.Label)
	}
	assert.Equal(t, []string{"Sagar", "Bhopal", "Indore"}, labels)
	assert.Equal(t, []int{1, 1}, got.Rows[0].Counts)
}

func TestStageTable_GroupBySubJurisdiction(t *testing.T) {
	t.Parallel()

	cases := []domain.CaseRecord{
		{Jurisdiction: "Bhopal", SubJurisdiction: "Kotwali", Stage: domain.StageInvestigation},
		{Jurisdiction: "Bhopal", SubJurisdiction: "Habibganj", Stage: domain.StageInvestigation},
		{Jurisdiction: "Bhopal", SubJurisdiction: "Kotwali", Stage: domain.StageChargeSheetFiled},
	}

	got := report.StageTable(cases, domain.DefaultStages(), report.ParseGroupBy("thana"))

	require.Len(t, got.Rows, 2)
	assert.Equal(t, "Kotwali", got.Rows[0].Label)
	assert.Equal(t, 2, got.Rows[0].Total)
	assert.Equal(t, "Habibganj", got.Rows[1].Label)
}

func TestStageTable_EmptyInput(t *testing.T) {
	t.Parallel()

	got := report.StageTable(nil, domain.DefaultStages(), report.GroupByJurisdiction)

	assert.Empty(t, got.Rows)
	assert.Equal(t, make([]int, len(domain.DefaultStages())), got.Totals.Counts)
	assert.Equal(t, 0, got.Totals.Total)
}

func TestStageTable_TotalsReconcile(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))
	jurisdictions := []string{"Bhopal", "Indore", "Sagar", "Rewa"}
	stages := append(domain.DefaultStages(), "", "typo")
	priorities := []domain.Priority{
		domain.PriorityNone, domain.PriorityRed, domain.PriorityYellow, domain.PriorityRed | domain.PriorityYellow,
	}
	vocabulary := domain.DefaultStages()

	for round := range 20 {
		cases := make([]domain.CaseRecord, 50+round)
		for i := range cases {
			cases[i] = domain.CaseRecord{
				Jurisdiction: jurisdictions[rng.IntN(len(jurisdictions))],
				Stage:        stages[rng.IntN(len(stages))],
				Priority:     priorities[rng.IntN(len(priorities))],
			}
		}

		got := report.StageTable(cases, vocabulary, report.GroupByJurisdiction)

		rowTotals := 0
		for col := range vocabulary {
			sum := 0
			for _, r := range got.Rows {
				sum += r.Counts[col]
			}
			assert.Equal(t, sum, got.Totals.Counts[col], "column %d", col)
		}
		for _, r := range got.Rows {
			rowTotals += r.Total
		}
		assert.Equal(t, rowTotals, got.Totals.Total)

		counted, carved := 0, 0
		for _, c := range cases {
			if c.Priority.Has(domain.PriorityRed) && c.Stage == domain.StageChargeSheetPrepared {
				carved++
				continue
			}
			for _, s := range vocabulary {
				if c.Stage == s {
					counted++
					break
				}
			}
		}
		assert.Equal(t, counted, got.Totals.Total, "grand total counts known-stage cases outside the carve-out")
		assert.Equal(t, carved, got.Totals.PreparedRedLine)
	}
}
