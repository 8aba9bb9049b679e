package domain

// Stage is the workflow status of a case. Values are stored verbatim in
// Devanagari, exactly as they appear in the stage reference column.
type Stage string

const (
	// StageClosure indicates a closure report has been filed.
	StageClosure Stage = "खात्मा"
	// StageDismissed indicates the case was dismissed.
	StageDismissed Stage = "खारजी"
	// StageChargeSheetPrepared indicates the charge sheet is ready but not filed.
	StageChargeSheetPrepared Stage = "चालान तैयार"
	// StageChargeSheetFiled indicates the charge sheet has been filed in court.
	StageChargeSheetFiled Stage = "चालान पेश"
	// StageInvestigation indicates the case is under investigation.
	StageInvestigation Stage = "विवेचना"
)

// defaultStageCount is the number of stages in DefaultStages.
const defaultStageCount = 5

// DefaultStages returns the built-in stage vocabulary in reference-table order.
// The live vocabulary is data-driven; this is used when none can be fetched.
func DefaultStages() []Stage {
	stages := make([]Stage, 0, defaultStageCount)
	stages = append(stages,
		StageClosure,
		StageDismissed,
		StageChargeSheetPrepared,
		StageChargeSheetFiled,
		StageInvestigation,
	)
	return stages
}

// IsOpen reports whether the stage counts as pending work: under investigation
// or charge sheet prepared.
func (s Stage) IsOpen() bool {
	return s == StageInvestigation || s == StageChargeSheetPrepared
}

// StagesFromStrings converts raw reference values into a vocabulary, dropping
// blanks and duplicates while keeping first-seen order.
func StagesFromStrings(values []string) []Stage {
	seen := make(map[Stage]bool, len(values))
	stages := make([]Stage, 0, len(values))

	for _, v := range values {
		s := Stage(v)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		stages = append(stages, s)
	}

	return stages
}
