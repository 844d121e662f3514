// Package model contains domain models passed between layers.
package model

import "time"

// Role identifies how a user participates in an event.
type Role string

// Known roles captured on reviews and returned by verification.
const (
	RoleParticipant Role = "participant"
	RoleJudge       Role = "judge"
	RoleOrganizer   Role = "organizer"
	RoleNone        Role = "none"
)

// FlagReason names the kind of suspicion attached to a review.
type FlagReason string

// Supported flag reasons.
const (
	FlagOutlierRating     FlagReason = "outlier_rating"
	FlagInvalidUser       FlagReason = "invalid_user"
	FlagSuspiciousPattern FlagReason = "suspicious_pattern"
)

// Criterion is one weighted evaluation dimension of an event's rubric.
// Keys are unique within a rubric and stable across rounds.
type Criterion struct {
	Key         string
	Label       string
	Description string
	Weight      int // positive; weight 0 excludes the criterion from aggregation
	Order       int
}

// ScoreItem is a single per-criterion rating inside a score submission.
type ScoreItem struct {
	CriterionKey string
	Value        float64
	Comment      string
}

// Score is one judge's rating of one submission on one criterion in one round.
// At most one Score exists per (submission, judge, criterion, round);
// resubmission replaces the judge's whole set for the round.
type Score struct {
	SubmissionID string
	JudgeID      string
	CriterionKey string
	Round        int
	Value        float64
	Comment      string
}

// Submission ties a team's entry to an event.
type Submission struct {
	ID       string
	EventID  string
	TeamID   string
	TeamName string
}

// LeaderboardEntry is a derived row of the per-round ranking.
//
// AggregateScore is the mean of per-judge weighted aggregates: each judge's
// submitted criterion set is first collapsed with rubric weights, then the
// judge aggregates are averaged. Rank is a dense rank ordered by aggregate
// score descending with byte-wise team-name ascending tie-break.
type LeaderboardEntry struct {
	Rank            int     `json:"rank"`
	TeamID          string  `json:"team_id"`
	TeamName        string  `json:"team_name"`
	SubmissionID    string  `json:"submission_id"`
	AggregateScore  float64 `json:"aggregate_score"`
	JudgesCompleted int     `json:"judges_completed"`
	JudgesTotal     int     `json:"judges_total"`
}

// Review is one verified actor's rating+text evaluation of an event.
// At most one Review exists per (event, user); resubmission updates in place.
type Review struct {
	ID        string
	EventID   string
	UserID    string
	Role      Role // role at review time, captured once
	Rating    int  // 1..5 inclusive
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReviewFlag is a derived annotation marking a review as suspicious.
// At most one flag exists per (review, reason); analysis runs upsert.
type ReviewFlag struct {
	ID        string
	ReviewID  string
	Reason    FlagReason
	Score     float64 // method-specific, e.g. |z| for outlier flags
	Metadata  map[string]any
	FlaggedAt time.Time
}

// FlaggedReview joins a flag with its review for organizer moderation.
type FlaggedReview struct {
	Flag   ReviewFlag
	Review Review
}

// RoundState records the one-way finalization of an (event, round).
type RoundState struct {
	EventID     string    `json:"event_id"`
	Round       int       `json:"round"`
	Finalized   bool      `json:"finalized"`
	FinalizedAt time.Time `json:"finalized_at"`
	FinalizedBy string    `json:"finalized_by"`
}

// Verification is the verification collaborator's answer for (event, user).
type Verification struct {
	Verified bool
	Role     Role
}
