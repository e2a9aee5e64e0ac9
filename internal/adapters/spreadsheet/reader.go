// Package spreadsheet reads standings tables and writes the team workbook.
package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\uFEFF"

// Table is the first sheet of a file: a header row and the rows below it.
// Every row is padded to at least the header width.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]string
}

// ReadTable reads path according to its extension.
func ReadTable(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return readWorkbook(path)
	case ".csv":
		return readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func readWorkbook(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnreadable)
	}

	// Raw values keep "1" a "1" regardless of the number format on the cell.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	t := newTable(rows)
	t.Sheet = sheets[0]
	return t, nil
}

func readCSV(path string) (*Table, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer func() { _ = fh.Close() }()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
		}
		rows = append(rows, rec)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return newTable(rows), nil
}

// newTable treats the first row with any non-blank cell as the header.
func newTable(rows [][]string) *Table {
	t := &Table{}
	start := 0
	for start < len(rows) && blank(rows[start]) {
		start++
	}
	if start == len(rows) {
		return t
	}
	t.Header = rows[start]
	for _, row := range rows[start+1:] {
		if blank(row) {
			continue
		}
		if len(row) < len(t.Header) {
			padded := make([]string, len(t.Header))
			copy(padded, row)
			row = padded
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
