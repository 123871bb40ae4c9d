package sheet

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/zalepa/permits/permit"
)

// Export sheet and file names.
const (
	SummarySheet = "Custom Summary"
	PlantSheet   = "Plantwise Summary"

	SummaryFile = "Custom_Permit_Summary.xlsx"
	PlantFile   = "Plantwise_Summary.xlsx"

	// ContentType is the MIME type of an .xlsx workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

const colWidth = 18

// Sheet is one named table in an exported workbook.
type Sheet struct {
	Name  string
	Table permit.Table
}

// Write encodes sheets as an .xlsx workbook, one worksheet per Sheet in order,
// with a bold header row.
func Write(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("write workbook: no sheets")
	}
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(DefaultSheet, s.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("new sheet %q: %w", s.Name, err)
		}
		if err := writeTable(f, s.Name, s.Table, bold); err != nil {
			return fmt.Errorf("sheet %q: %w", s.Name, err)
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, name string, t permit.Table, headerStyle int) error {
	for c, h := range t.Header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(name, cell, h); err != nil {
			return err
		}
	}
	for r, row := range t.Rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(name, cell, v); err != nil {
				return err
			}
		}
	}
	if len(t.Header) == 0 {
		return nil
	}
	last, _ := excelize.ColumnNumberToName(len(t.Header))
	if err := f.SetCellStyle(name, "A1", last+"1", headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(name, "A", last, colWidth)
}

// WriteFile writes sheets to an .xlsx file at path.
func WriteFile(path string, sheets ...Sheet) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(out, sheets...); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// SummaryWorkbook is the "Custom Summary" download.
func SummaryWorkbook(s permit.Summary) Sheet {
	return Sheet{Name: SummarySheet, Table: s.Table()}
}

// PlantWorkbook is the "Plantwise Summary" download.
func PlantWorkbook(ps permit.PlantSummary) Sheet {
	return Sheet{Name: PlantSheet, Table: ps.Table()}
}
