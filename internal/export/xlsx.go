package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"gasdoc/internal/service"
)

const (
	summarySheet = "Summary"
	rowsSheet    = "Rows"
)

// WriteXLSX writes a workbook with a Summary sheet (one line per document, same columns
// as the CSV export) and a Rows sheet listing every extracted row field.
func WriteXLSX(out io.Writer, results []service.BatchResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(rowsSheet); err != nil {
		return fmt.Errorf("create rows sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	summary := [][]string{columns}
	for i := range results {
		summary = append(summary, summaryRow(&results[i]))
	}
	if err := writeSheet(f, summarySheet, summary, bold); err != nil {
		return err
	}

	rows := [][]string{rowColumns}
	for i := range results {
		rows = append(rows, flattenRows(&results[i])...)
	}
	if err := writeSheet(f, rowsSheet, rows, bold); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, lines [][]string, headerStyle int) error {
	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(line))
		for j, v := range line {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}
