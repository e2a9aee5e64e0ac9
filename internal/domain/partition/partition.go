// Package partition ranks aggregated participants and cuts them into teams.
package partition

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/teamrank/internal/domain/model"
)

// DefaultTeamSize is used when the requested size is unusable.
const DefaultTeamSize = 3

// ErrInvalidTeamSize reports a team size that is not a positive integer.
var ErrInvalidTeamSize = errors.New("invalid team size")

// Sort returns a copy ordered by total descending, then participant id
// ascending so ties resolve the same way every run.
func Sort(participants []model.ParticipantScore) []model.ParticipantScore {
	out := slices.Clone(participants)
	slices.SortStableFunc(out, compare)
	return out
}

func compare(a, b model.ParticipantScore) int {
	if a.Total != b.Total {
		if a.Total > b.Total {
			return -1
		}
		return 1
	}
	return strings.Compare(a.ParticipantID, b.ParticipantID)
}

// Chunk slices the sorted participants into consecutive teams of size; the
// last team may be shorter. Members are copied, not shared with sorted.
func Chunk(sorted []model.ParticipantScore, size int) ([]model.Team, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTeamSize, size)
	}
	teams := make([]model.Team, 0, (len(sorted)+size-1)/size)
	for start := 0; start < len(sorted); start += size {
		end := min(start+size, len(sorted))
		teams = append(teams, model.Team{
			Index:   len(teams) + 1,
			Members: slices.Clone(sorted[start:end]),
		})
	}
	return teams, nil
}

// ResolveTeamSize parses a requested team size. Blank input selects fallback;
// anything that is not a positive integer selects fallback and returns
// ErrInvalidTeamSize so the caller can warn. A fallback that is not positive
// is itself replaced by DefaultTeamSize and reported the same way when it
// ends up being used.
func ResolveTeamSize(raw string, fallback int) (int, error) {
	var fallbackErr error
	if fallback <= 0 {
		fallbackErr = fmt.Errorf("%w: configured size %d is not positive", ErrInvalidTeamSize, fallback)
		fallback = DefaultTeamSize
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, fallbackErr
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, fmt.Errorf("%w: %q is not a number", ErrInvalidTeamSize, raw)
	}
	if n <= 0 {
		return fallback, fmt.Errorf("%w: %d is not positive", ErrInvalidTeamSize, n)
	}
	return n, nil
}
