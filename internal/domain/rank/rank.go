// Package rank orders leaderboard rows and assigns dense ranks.
//
// Ordering: aggregate score DESC, then team name ASC (byte-wise,
// deterministic). Dense rank means equal scores share a rank and the
// next distinct score gets exactly rank+1, with no gaps.
package rank

import (
	"sort"

	"github.com/okian/podium/internal/domain/model"
)

// Row is one unranked leaderboard row.
type Row struct {
	TeamID          string
	TeamName        string
	SubmissionID    string
	AggregateScore  float64
	JudgesCompleted int
	JudgesTotal     int
}

// Assign sorts rows and assigns dense ranks, producing leaderboard entries.
// The input slice is not modified.
func Assign(rows []Row) []model.LeaderboardEntry {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)

	sort.Slice(sorted, func(i, j int) bool {
		// Higher score comes first (descending order)
		if sorted[i].AggregateScore != sorted[j].AggregateScore {
			return sorted[i].AggregateScore > sorted[j].AggregateScore
		}
		// Tie-breaker: team name in ascending order
		return sorted[i].TeamName < sorted[j].TeamName
	})

	entries := make([]model.LeaderboardEntry, len(sorted))
	currentRank := 0
	for i, r := range sorted {
		if i == 0 || r.AggregateScore != sorted[i-1].AggregateScore {
			currentRank++
		}
		entries[i] = model.LeaderboardEntry{
			Rank:            currentRank,
			TeamID:          r.TeamID,
			TeamName:        r.TeamName,
			SubmissionID:    r.SubmissionID,
			AggregateScore:  r.AggregateScore,
			JudgesCompleted: r.JudgesCompleted,
			JudgesTotal:     r.JudgesTotal,
		}
	}
	return entries
}
