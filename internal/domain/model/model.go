// Package model contains domain models passed between layers.
package model

// ContestRecord is one accepted standings row of one contest file.
type ContestRecord struct {
	ContestID     string // contest file name
	ParticipantID string // trimmed identifier cell
	Rank          int    // finishing position, >= 1
}

// ContestScores holds the points awarded in a single contest after
// duplicate rows of that contest were collapsed.
type ContestScores struct {
	ContestID  string
	Points     map[string]int // participant id -> points
	Rejected   int            // rows dropped for a bad identifier or rank
	Duplicates int            // rows folded into an earlier entry of the same participant
}

// ParticipantScore is a participant's points per contest plus the total.
// Points holds an entry for every contest of the run; absent contests are 0.
type ParticipantScore struct {
	ParticipantID string
	Points        map[string]int
	Total         int
}

// Team is a contiguous slice of the ranked participants. Index starts at 1.
type Team struct {
	Index   int
	Members []ParticipantScore
}
