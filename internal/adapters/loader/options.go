package loader

import (
	"strings"

	"github.com/okian/teamrank/pkg/logger"
)

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithExtensions replaces the accepted file extensions. Matching is
// case-insensitive and the leading dot is optional.
func WithExtensions(exts []string) Option {
	return func(l *Loader) {
		if len(exts) == 0 {
			return
		}
		l.extensions = make(map[string]struct{}, len(exts))
		for _, e := range exts {
			e = strings.ToLower(strings.TrimSpace(e))
			if e == "" {
				continue
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			l.extensions[e] = struct{}{}
		}
	}
}

// WithWorkers sets how many files are read concurrently.
func WithWorkers(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithLogger sets a custom logger for the loader.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.logger = log
		}
	}
}
