package spreadsheet

import "errors"

// Sentinel kinds for spreadsheet errors.
var (
	ErrUnreadable        = errors.New("unreadable spreadsheet")
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrWrite             = errors.New("write workbook failed")
)
