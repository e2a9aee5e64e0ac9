// Package loader turns a directory of contest exports into contest records.
package loader

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/okian/teamrank/internal/adapters/spreadsheet"
	"github.com/okian/teamrank/internal/domain/columns"
	"github.com/okian/teamrank/internal/domain/model"
	"github.com/okian/teamrank/pkg/logger"
)

// FileResult is the outcome of loading one file. Err is nil, wraps
// ErrUnreadableFile, or wraps columns.ErrSchemaMismatch.
type FileResult struct {
	Path      string
	ContestID string
	Columns   []string
	Records   []model.ContestRecord
	Rejected  int
	Err       error
}

// Loader reads contest exports.
type Loader struct {
	resolver   *columns.Resolver
	extensions map[string]struct{}
	workers    int
	logger     logger.Logger
}

// New creates a loader that resolves columns with resolver.
func New(resolver *columns.Resolver, opts ...Option) *Loader {
	l := &Loader{
		resolver: resolver,
		workers:  1,
	}
	WithExtensions([]string{".xlsx", ".xlsm", ".csv"})(l)

	for _, opt := range opts {
		opt(l)
	}

	if l.logger == nil {
		l.logger = logger.Get().Named("loader")
	}
	return l
}

// Extensions returns the accepted extensions, sorted.
func (l *Loader) Extensions() []string {
	out := make([]string, 0, len(l.extensions))
	for e := range l.extensions {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}

// Discover lists contest files in dir in lexical order. Hidden files and
// spreadsheet lock files are ignored. A missing directory, or one without a
// single matching file, is ErrMissingInput.
func (l *Loader) Discover(ctx context.Context, dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingInput, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrMissingInput, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingInput, err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if _, ok := l.extensions[strings.ToLower(filepath.Ext(name))]; !ok {
			l.logger.Debug(ctx, "ignoring file", logger.String("file", name))
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no %s files in %s", ErrMissingInput, strings.Join(l.Extensions(), "/"), dir)
	}
	return paths, nil
}

// LoadAll loads every path and returns results in the same order. Files are
// read by up to workers goroutines; each writes only its own slot.
func (l *Loader) LoadAll(ctx context.Context, paths []string) []FileResult {
	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, p := range paths {
		g.Go(func() error {
			results[i] = l.LoadFile(gctx, p)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// LoadFile reads one export. Failures are reported in FileResult.Err.
func (l *Loader) LoadFile(ctx context.Context, path string) FileResult {
	res := FileResult{Path: path, ContestID: filepath.Base(path)}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	tbl, err := spreadsheet.ReadTable(path)
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrUnreadableFile, err)
		return res
	}
	res.Columns = tbl.Header

	mapping, err := l.resolver.Resolve(tbl.Header)
	if err != nil {
		res.Err = err
		return res
	}

	for _, row := range tbl.Rows {
		id := strings.TrimSpace(cell(row, mapping.Identifier))
		rank, ok := ParseRank(cell(row, mapping.Rank))
		if id == "" || !ok {
			res.Rejected++
			continue
		}
		res.Records = append(res.Records, model.ContestRecord{
			ContestID:     res.ContestID,
			ParticipantID: id,
			Rank:          rank,
		})
	}
	return res
}

// ParseRank accepts integer-like cells ("3", "3.0", " 7 ") and truncates
// fractions. Anything below 1 after truncation is rejected.
func ParseRank(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	v = math.Trunc(v)
	if v < 1 || v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// IsSchemaMismatch reports whether a FileResult error is a column problem.
func IsSchemaMismatch(err error) bool {
	return errors.Is(err, columns.ErrSchemaMismatch)
}
