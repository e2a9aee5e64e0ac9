// Package scoring turns contest ranks into points and sums them per participant.
package scoring

import (
	"errors"
	"fmt"
	"slices"

	"github.com/okian/teamrank/internal/domain/model"
)

// Default formula constants: points = ceil(1600 / (rank + 7)).
const (
	DefaultNumerator = 1600
	DefaultOffset    = 7
)

// ErrInvalidFormula reports unusable formula constants.
var ErrInvalidFormula = errors.New("invalid scoring formula")

// Formula computes ceil(Numerator / (rank + Offset)).
type Formula struct {
	Numerator int
	Offset    int
}

// Option applies a configuration option to a Formula.
type Option func(*Formula)

// WithNumerator sets N.
func WithNumerator(n int) Option {
	return func(f *Formula) {
		f.Numerator = n
	}
}

// WithOffset sets K.
func WithOffset(k int) Option {
	return func(f *Formula) {
		f.Offset = k
	}
}

// NewFormula returns the default formula with options applied.
func NewFormula(opts ...Option) Formula {
	f := Formula{Numerator: DefaultNumerator, Offset: DefaultOffset}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// Validate requires N > 0 and K >= 0.
func (f Formula) Validate() error {
	if f.Numerator <= 0 {
		return fmt.Errorf("%w: numerator must be positive, got %d", ErrInvalidFormula, f.Numerator)
	}
	if f.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative, got %d", ErrInvalidFormula, f.Offset)
	}
	return nil
}

// Points returns the score for a rank. Ranks below 1 never reach the
// scorer; they yield 0 rather than a bogus maximum.
func (f Formula) Points(rank int) int {
	if rank < 1 {
		return 0
	}
	d := rank + f.Offset
	return (f.Numerator + d - 1) / d
}

// Aggregate builds one ParticipantScore per distinct participant across all
// contests. Every score carries an entry for every contest, 0 where absent.
// Output order is by participant id; ranking is the partitioner's job.
func Aggregate(contests []model.ContestScores) []model.ParticipantScore {
	ids := ContestIDs(contests)

	byID := make(map[string]*model.ParticipantScore)
	for _, c := range contests {
		for pid, pts := range c.Points {
			ps, ok := byID[pid]
			if !ok {
				ps = &model.ParticipantScore{
					ParticipantID: pid,
					Points:        make(map[string]int, len(ids)),
				}
				for _, id := range ids {
					ps.Points[id] = 0
				}
				byID[pid] = ps
			}
			ps.Points[c.ContestID] += pts
			ps.Total += pts
		}
	}

	out := make([]model.ParticipantScore, 0, len(byID))
	for _, ps := range byID {
		out = append(out, *ps)
	}
	slices.SortFunc(out, func(a, b model.ParticipantScore) int {
		switch {
		case a.ParticipantID < b.ParticipantID:
			return -1
		case a.ParticipantID > b.ParticipantID:
			return 1
		}
		return 0
	})
	return out
}

// ContestIDs returns the distinct contest ids in sorted order.
func ContestIDs(contests []model.ContestScores) []string {
	ids := make([]string, 0, len(contests))
	for _, c := range contests {
		ids = append(ids, c.ContestID)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}
