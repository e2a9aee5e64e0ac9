package loader

import "errors"

// Sentinel kinds for loader errors.
var (
	ErrMissingInput   = errors.New("missing input")
	ErrUnreadableFile = errors.New("unreadable file")
)
