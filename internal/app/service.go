// Package service runs the load, score, partition and write pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/teamrank/internal/adapters/loader"
	"github.com/okian/teamrank/internal/adapters/spreadsheet"
	"github.com/okian/teamrank/internal/domain/columns"
	"github.com/okian/teamrank/internal/domain/dedupe"
	"github.com/okian/teamrank/internal/domain/model"
	"github.com/okian/teamrank/internal/domain/partition"
	"github.com/okian/teamrank/internal/domain/scoring"
	"github.com/okian/teamrank/pkg/logger"
	"github.com/okian/teamrank/pkg/metrics"
)

// File statuses reported per input file.
const (
	StatusLoaded         = "loaded"
	StatusUnreadable     = "unreadable"
	StatusSchemaMismatch = "schema_mismatch"
	StatusEmpty          = "empty"
)

// FileReport describes what happened to one input file.
type FileReport struct {
	File         string
	Status       string
	Columns      []string
	Records      int
	Rejected     int
	Duplicates   int
	Participants int
	Err          error
}

// Report summarises a run. Ranked and Teams are nil unless the run reached
// the partition stage.
type Report struct {
	RunID      string
	InputDir   string
	OutputFile string
	TeamSize   int
	Contests   []string
	Files      []FileReport
	Ranked     []model.ParticipantScore
	Teams      []model.Team
}

// Service implements the batch run.
type Service struct {
	inputDir   string
	outputFile string
	formula    scoring.Formula
	layout     Layout

	loader   *loader.Loader
	newRunID func() string
	now      func() time.Time

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		inputDir:   "Leaderboards",
		outputFile: "final_teams.xlsx",
		formula:    scoring.NewFormula(),
		layout:     DefaultLayout(),
		newRunID:   uuid.NewString,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.loader == nil {
		s.loader = loader.New(
			columns.NewResolver(columns.DefaultIdentifierAliases(), columns.DefaultRankAliases()),
			loader.WithLogger(s.logger.Named("loader")),
		)
	}
	return s
}

// Run executes one batch. teamSize <= 0 falls back to the default size with
// a warning. The returned report is non-nil even when err is not.
func (s *Service) Run(ctx context.Context, teamSize int) (rep *Report, err error) {
	start := s.now()
	rep = &Report{
		RunID:      s.newRunID(),
		InputDir:   s.inputDir,
		OutputFile: s.outputFile,
	}
	log := s.logger.With(logger.String("run_id", rep.RunID))

	defer func() {
		result := "ok"
		switch {
		case errors.Is(err, ErrEmptyResult):
			result = "empty"
		case err != nil:
			result = "failed"
		}
		end := s.now()
		metrics.RecordRun(result, end.Sub(start).Seconds(), end.Unix())
	}()

	if err := s.formula.Validate(); err != nil {
		return rep, err
	}
	if teamSize <= 0 {
		log.Warn(ctx, "team size must be positive; using default",
			logger.Int("requested", teamSize),
			logger.Int("default", partition.DefaultTeamSize),
		)
		teamSize = partition.DefaultTeamSize
	}
	rep.TeamSize = teamSize

	paths, err := s.loader.Discover(ctx, s.inputDir)
	if err != nil {
		log.Error(ctx, "no contest files to process", logger.String("dir", s.inputDir), logger.Error(err))
		return rep, err
	}
	log.Info(ctx, "found contest files", logger.String("dir", s.inputDir), logger.Int("files", len(paths)))

	results := s.loader.LoadAll(ctx, paths)
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	contests := make([]model.ContestScores, 0, len(results))
	for _, res := range results {
		fr, scores := s.score(ctx, log, res)
		rep.Files = append(rep.Files, fr)
		if fr.Status == StatusLoaded {
			contests = append(contests, scores)
		}
	}

	if len(contests) == 0 {
		log.Warn(ctx, "no points computed; nothing to save", logger.Int("files", len(results)))
		return rep, ErrEmptyResult
	}

	rep.Contests = scoring.ContestIDs(contests)
	rep.Ranked = partition.Sort(scoring.Aggregate(contests))
	rep.Teams, err = partition.Chunk(rep.Ranked, teamSize)
	if err != nil {
		return rep, err
	}

	metrics.UpdateContests(len(rep.Contests))
	metrics.UpdateParticipants(len(rep.Ranked))
	metrics.UpdateTeams(len(rep.Teams), teamSize)

	if err := spreadsheet.Write(ctx, s.outputFile, s.workbook(rep)); err != nil {
		log.Error(ctx, "failed to save workbook", logger.String("file", s.outputFile), logger.Error(err))
		return rep, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	log.Info(ctx, "saved teams",
		logger.String("file", s.outputFile),
		logger.Int("contests", len(rep.Contests)),
		logger.Int("participants", len(rep.Ranked)),
		logger.Int("teams", len(rep.Teams)),
		logger.Int("team_size", teamSize),
	)
	return rep, nil
}

// score turns one load result into contest scores and logs its fate.
func (s *Service) score(ctx context.Context, log logger.Logger, res loader.FileResult) (FileReport, model.ContestScores) {
	fr := FileReport{
		File:     res.ContestID,
		Columns:  res.Columns,
		Records:  len(res.Records),
		Rejected: res.Rejected,
		Err:      res.Err,
	}
	log.Info(ctx, "processing", logger.String("file", res.Path))

	switch {
	case loader.IsSchemaMismatch(res.Err):
		fr.Status = StatusSchemaMismatch
		metrics.RecordFile(metrics.FileSchemaMismatch)
		log.Warn(ctx, "skipping file without identifier or rank column",
			logger.String("file", res.Path),
			logger.Strings("columns", res.Columns),
			logger.Error(res.Err),
		)
		return fr, model.ContestScores{}
	case res.Err != nil:
		fr.Status = StatusUnreadable
		metrics.RecordFile(metrics.FileUnreadable)
		log.Warn(ctx, "skipping unreadable file", logger.String("file", res.Path), logger.Error(res.Err))
		return fr, model.ContestScores{}
	}

	scores := dedupe.BestScores(res.ContestID, res.Records, s.formula.Points)
	scores.Rejected = res.Rejected
	fr.Duplicates = scores.Duplicates
	fr.Participants = len(scores.Points)

	metrics.RecordRows(metrics.RowAccepted, len(res.Records)-scores.Duplicates)
	metrics.RecordRows(metrics.RowRejected, res.Rejected)
	metrics.RecordRows(metrics.RowDuplicate, scores.Duplicates)

	if len(scores.Points) == 0 {
		fr.Status = StatusEmpty
		metrics.RecordFile(metrics.FileEmpty)
		log.Warn(ctx, "no standings obtained", logger.String("file", res.Path), logger.Int("rejected_rows", res.Rejected))
		return fr, scores
	}

	fr.Status = StatusLoaded
	metrics.RecordFile(metrics.FileLoaded)
	for _, p := range scores.Points {
		metrics.RecordPoints(p)
	}

	fields := []logger.Field{
		logger.String("file", res.Path),
		logger.Int("participants", fr.Participants),
	}
	if res.Rejected > 0 {
		fields = append(fields, logger.Int("rejected_rows", res.Rejected))
	}
	if scores.Duplicates > 0 {
		fields = append(fields, logger.Int("duplicate_rows", scores.Duplicates))
	}
	log.Info(ctx, "loaded standings", fields...)
	return fr, scores
}

// workbook lays the ranked participants out as one overview sheet followed
// by one sheet per team, all with the same columns.
func (s *Service) workbook(rep *Report) spreadsheet.Workbook {
	header := make([]string, 0, len(rep.Contests)+2)
	header = append(header, s.layout.IdentifierHeader)
	header = append(header, rep.Contests...)
	header = append(header, s.layout.TotalHeader)

	rows := func(members []model.ParticipantScore) [][]any {
		out := make([][]any, len(members))
		for i, m := range members {
			row := make([]any, 0, len(header))
			row = append(row, m.ParticipantID)
			for _, c := range rep.Contests {
				row = append(row, m.Points[c])
			}
			row = append(row, m.Total)
			out[i] = row
		}
		return out
	}

	wb := spreadsheet.Workbook{
		Title:  "Team formation",
		RunID:  rep.RunID,
		Sheets: make([]spreadsheet.Sheet, 0, len(rep.Teams)+1),
	}
	wb.Sheets = append(wb.Sheets, spreadsheet.Sheet{
		Name:   s.layout.ParticipantsSheet,
		Header: header,
		Rows:   rows(rep.Ranked),
	})
	for _, t := range rep.Teams {
		wb.Sheets = append(wb.Sheets, spreadsheet.Sheet{
			Name:   fmt.Sprintf("%s%d", s.layout.TeamSheetPrefix, t.Index),
			Header: header,
			Rows:   rows(t.Members),
		})
	}
	return wb
}
