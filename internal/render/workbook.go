package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/report"
)

// Sheet names in the exported workbook.
const (
	SheetStages  = "Stages"
	SheetPeriods = "Periods"
)

const defaultSheet = "Sheet1"

// StageWorkbook writes an XLSX workbook with the stage cross-tab on one sheet
// and the period comparison on another.
func StageWorkbook(w io.Writer, stages report.StageReport, periods report.PeriodReport) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if renameErr := f.SetSheetName(defaultSheet, SheetStages); renameErr != nil {
		return fmt.Errorf("rename sheet: %w", renameErr)
	}
	if _, sheetErr := f.NewSheet(SheetPeriods); sheetErr != nil {
		return fmt.Errorf("create sheet %s: %w", SheetPeriods, sheetErr)
	}

	bold, styleErr := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if styleErr != nil {
		return fmt.Errorf("create style: %w", styleErr)
	}

	if stagesErr := writeStageSheet(f, &stages, bold); stagesErr != nil {
		return stagesErr
	}
	if periodsErr := writePeriodSheet(f, &periods, bold); periodsErr != nil {
		return periodsErr
	}

	if _, writeErr := f.WriteTo(w); writeErr != nil {
		return fmt.Errorf("write workbook: %w", writeErr)
	}
	return nil
}

func writeStageSheet(f *excelize.File, r *report.StageReport, bold int) error {
	header := stageHeader(r)
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}

	rows := make([][]any, 0, len(r.Rows)+2)
	rows = append(rows, cells)
	for i := range r.Rows {
		rows = append(rows, stageCells(&r.Rows[i]))
	}
	rows = append(rows, stageCells(&r.Totals))

	if writeErr := writeRows(f, SheetStages, rows); writeErr != nil {
		return writeErr
	}

	// Header and totals rows.
	if styleErr := styleRow(f, SheetStages, 1, len(header), bold); styleErr != nil {
		return styleErr
	}
	return styleRow(f, SheetStages, len(rows), len(header), bold)
}

func writePeriodSheet(f *excelize.File, r *report.PeriodReport, bold int) error {
	header := []any{"Month", "District", "Thana", "Count", "District total", "District cases", "Prior year cases", "Change %"}
	rows := [][]any{header}

	for _, m := range r.Months {
		for _, j := range m.Jurisdictions {
			if len(j.SubUnits) == 0 {
				rows = append(rows, []any{m.Label, j.Jurisdiction, "", 0, j.Total, j.Cases})
				continue
			}
			for _, u := range j.SubUnits {
				rows = append(rows, []any{m.Label, j.Jurisdiction, u.SubUnit, u.Count, j.Total, j.Cases})
			}
		}

		summary := []any{m.Label, headerTotal, "", "", m.Total, m.Cases}
		if m.Prior != nil {
			summary = append(summary, m.Prior.Cases, m.Prior.PercentChange)
		}
		rows = append(rows, summary)
	}

	if writeErr := writeRows(f, SheetPeriods, rows); writeErr != nil {
		return writeErr
	}
	return styleRow(f, SheetPeriods, 1, len(header), bold)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, cellErr := excelize.CoordinatesToCellName(1, i+1)
		if cellErr != nil {
			return fmt.Errorf("cell name: %w", cellErr)
		}
		if setErr := f.SetSheetRow(sheet, cell, &row); setErr != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, setErr)
		}
	}
	return nil
}

func styleRow(f *excelize.File, sheet string, row, columns, style int) error {
	first, firstErr := excelize.CoordinatesToCellName(1, row)
	if firstErr != nil {
		return fmt.Errorf("cell name: %w", firstErr)
	}
	last, lastErr := excelize.CoordinatesToCellName(columns, row)
	if lastErr != nil {
		return fmt.Errorf("cell name: %w", lastErr)
	}
	if styleErr := f.SetCellStyle(sheet, first, last, style); styleErr != nil {
		return fmt.Errorf("style %s row %d: %w", sheet, row, styleErr)
	}
	return nil
}
