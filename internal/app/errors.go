package service

import (
	"errors"

	"github.com/okian/teamrank/internal/adapters/loader"
)

// Run outcomes that end a run early.
var (
	// ErrMissingInput: the input directory is absent or has no contest files.
	ErrMissingInput = loader.ErrMissingInput
	// ErrEmptyResult: no file yielded usable standings; nothing was written.
	ErrEmptyResult = errors.New("no usable standings")
	// ErrWriteOutput: the workbook could not be saved.
	ErrWriteOutput = errors.New("write output failed")
)
