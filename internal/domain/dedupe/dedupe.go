// Package dedupe collapses repeated participants within one contest.
package dedupe

import (
	"github.com/okian/teamrank/internal/domain/model"
)

// PointsFunc maps a rank to points.
type PointsFunc func(rank int) int

// BestScores folds the records of a single contest into one score per
// participant. A participant listed more than once keeps the best (highest)
// score; repeats are counted in Duplicates and never summed.
func BestScores(contestID string, records []model.ContestRecord, points PointsFunc) model.ContestScores {
	out := model.ContestScores{
		ContestID: contestID,
		Points:    make(map[string]int, len(records)),
	}
	for _, r := range records {
		p := points(r.Rank)
		if prev, seen := out.Points[r.ParticipantID]; seen {
			out.Duplicates++
			if p <= prev {
				continue
			}
		}
		out.Points[r.ParticipantID] = p
	}
	return out
}
