package spreadsheet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet     = "Sheet1"
	firstColumnWidth = 28
)

// Sheet is one worksheet to write: a header and typed rows.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Workbook is the full output document. Sheets are written in order and the
// first one is active when the file is opened.
type Workbook struct {
	Title  string
	RunID  string
	Sheets []Sheet
}

// Write saves wb to path as xlsx, creating the parent directory.
func Write(ctx context.Context, path string, wb Workbook) error {
	if len(wb.Sheets) == 0 {
		return fmt.Errorf("%w: no sheets", ErrWrite)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(wb.Sheets))
	for _, sh := range wb.Sheets {
		key := strings.ToLower(sh.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate sheet %q", ErrWrite, sh.Name)
		}
		seen[key] = struct{}{}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	for i, sh := range wb.Sheets {
		if i == 0 {
			err = f.SetSheetName(defaultSheet, sh.Name)
		} else {
			_, err = f.NewSheet(sh.Name)
		}
		if err != nil {
			return fmt.Errorf("%w: sheet %q: %w", ErrWrite, sh.Name, err)
		}
		if err := writeSheet(f, sh, bold); err != nil {
			return fmt.Errorf("%w: sheet %q: %w", ErrWrite, sh.Name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SetDocProps(&excelize.DocProperties{
		Creator:     "teamrank",
		Title:       wb.Title,
		Identifier:  wb.RunID,
		Description: "run " + wb.RunID,
	}); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sh Sheet, headerStyle int) error {
	header := make([]any, len(sh.Header))
	for i, h := range sh.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sh.Name, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(sh.Name, 1, 1, headerStyle); err != nil {
		return err
	}
	for i, row := range sh.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sh.Name, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sh.Name, "A", "A", firstColumnWidth)
}
