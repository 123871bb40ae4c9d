package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/zalepa/permits/permit"
)

// DefaultSheet is the sheet permit exports put their rows on.
const DefaultSheet = "Sheet1"

// ErrEmptySheet is returned when the input has no header row.
var ErrEmptySheet = errors.New("sheet has no header row")

// Options controls how an input workbook is read.
type Options struct {
	// Sheet to read; DefaultSheet when empty.
	Sheet string
	// DateColumns hold spreadsheet date serials that are converted to
	// time.Time. Defaults to the Created Date column.
	DateColumns []string
}

func (o Options) sheet() string {
	if o.Sheet == "" {
		return DefaultSheet
	}
	return o.Sheet
}

func (o Options) dateColumns() map[string]bool {
	cols := o.DateColumns
	if cols == nil {
		cols = []string{permit.ColCreatedDate}
	}
	m := make(map[string]bool, len(cols))
	for _, c := range cols {
		m[c] = true
	}
	return m
}

// ReadFile reads a permit sheet from an .xlsx workbook or a .csv file, chosen
// by extension.
func ReadFile(path string, opts Options) (permit.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return permit.Dataset{}, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ReadCSV(f)
	}
	return Read(f, opts)
}

// Read reads a permit sheet from an .xlsx workbook. The first row is the
// header; fully blank rows are skipped; empty cells become nil.
func Read(r io.Reader, opts Options) (permit.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return permit.Dataset{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name := opts.sheet()
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return permit.Dataset{}, fmt.Errorf("read sheet %q: %w", name, err)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	dateCols := opts.dateColumns()

	return buildDataset(rows, func(col, v string) any {
		if dateCols[col] {
			if serial, err := strconv.ParseFloat(v, 64); err == nil {
				if t, err := excelize.ExcelDateToTime(serial, date1904); err == nil {
					return t
				}
			}
		}
		return v
	})
}

// ReadCSV reads a permit sheet exported as CSV. Dates stay text and are parsed
// during normalization.
func ReadCSV(r io.Reader) (permit.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return permit.Dataset{}, fmt.Errorf("read csv: %w", err)
	}
	return buildDataset(rows, func(_, v string) any { return v })
}

func buildDataset(rows [][]string, convert func(col, v string) any) (permit.Dataset, error) {
	if len(rows) == 0 {
		return permit.Dataset{}, ErrEmptySheet
	}

	header := make([]string, len(rows[0]))
	var ds permit.Dataset
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if header[i] != "" {
			ds.Columns = append(ds.Columns, header[i])
		}
	}
	if len(ds.Columns) == 0 {
		return permit.Dataset{}, ErrEmptySheet
	}

	for _, cells := range rows[1:] {
		row := make(permit.Row, len(ds.Columns))
		blank := true
		for j, col := range header {
			if col == "" {
				continue
			}
			var v string
			if j < len(cells) {
				v = strings.TrimSpace(cells[j])
			}
			if v == "" {
				row[col] = nil
				continue
			}
			blank = false
			row[col] = convert(col, v)
		}
		if !blank {
			ds.Rows = append(ds.Rows, row)
		}
	}
	return ds, nil
}
