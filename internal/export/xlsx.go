package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/rezonia/ledgercheck/internal/model"
)

const (
	summarySheet = "Summary"
	resultsSheet = "Results"
)

// WriteXLSX writes the batch summary as a workbook with a Summary sheet of
// aggregate counts and a Results sheet with one row per engine run.
func WriteXLSX(w io.Writer, summary model.BatchSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	if err := writeSummarySheet(f, summary); err != nil {
		return err
	}

	if _, err := f.NewSheet(resultsSheet); err != nil {
		return err
	}
	if err := writeResultsSheet(f, summary); err != nil {
		return err
	}

	return f.Write(w)
}

func writeSummarySheet(f *excelize.File, summary model.BatchSummary) error {
	rows := [][]any{
		{"Processed", summary.Processed},
		{"Succeeded", summary.Succeeded},
		{"Failed", summary.Failed},
		{"Skipped", summary.Skipped},
		{"Verified", summary.Verified},
		{"Mismatched", summary.Mismatched},
		{"Unverifiable", summary.Unverifiable},
		{"Elapsed", model.ISODuration(summary.Elapsed)},
	}
	for i, row := range rows {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func writeResultsSheet(f *excelize.File, summary model.BatchSummary) error {
	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := setRow(f, resultsSheet, 1, header); err != nil {
		return err
	}

	row := 2
	for di := range summary.Documents {
		dr := &summary.Documents[di]
		if len(dr.EngineResults) == 0 {
			cells := []any{dr.DocumentID, "", false, "", "", "", "", "", "", "", "", dr.ErrMessage}
			if err := setRow(f, resultsSheet, row, cells); err != nil {
				return err
			}
			row++
			continue
		}
		for ei := range dr.EngineResults {
			cells := engineRow(dr, &dr.EngineResults[ei])
			values := make([]any, len(cells))
			for i, c := range cells {
				values[i] = c
			}
			if err := setRow(f, resultsSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
