package service

import (
	"github.com/okian/teamrank/internal/adapters/loader"
	"github.com/okian/teamrank/internal/domain/scoring"
	"github.com/okian/teamrank/pkg/logger"
)

// Layout names the sheets and fixed headers of the output workbook.
type Layout struct {
	ParticipantsSheet string
	TeamSheetPrefix   string
	IdentifierHeader  string
	TotalHeader       string
}

// DefaultLayout matches the workbook the original spreadsheet flow produced.
func DefaultLayout() Layout {
	return Layout{
		ParticipantsSheet: "Participants",
		TeamSheetPrefix:   "Team_",
		IdentifierHeader:  "Username",
		TotalHeader:       "FinalPoints",
	}
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithLoader sets the loader used to find and read contest files.
func WithLoader(l *loader.Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithFormula sets the rank-to-points formula.
func WithFormula(f scoring.Formula) Option {
	return func(s *Service) {
		s.formula = f
	}
}

// WithInputDir sets the directory holding contest exports.
func WithInputDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.inputDir = dir
		}
	}
}

// WithOutputFile sets the workbook path.
func WithOutputFile(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.outputFile = path
		}
	}
}

// WithLayout overrides sheet and header names; empty fields keep defaults.
func WithLayout(l Layout) Option {
	return func(s *Service) {
		if l.ParticipantsSheet != "" {
			s.layout.ParticipantsSheet = l.ParticipantsSheet
		}
		if l.TeamSheetPrefix != "" {
			s.layout.TeamSheetPrefix = l.TeamSheetPrefix
		}
		if l.IdentifierHeader != "" {
			s.layout.IdentifierHeader = l.IdentifierHeader
		}
		if l.TotalHeader != "" {
			s.layout.TotalHeader = l.TotalHeader
		}
	}
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.newRunID = func() string { return id }
		}
	}
}
