// Package repository defines the persistence interfaces for scores,
// reviews, flags, rosters and round state, plus the provided
// implementations (in-memory primary store, bbolt round-state store).
package repository

import (
	"context"

	"github.com/okian/podium/internal/domain/model"
)

// RubricStore provides read access to an event's rubric.
type RubricStore interface {
	// Criteria returns the event's rubric.
	// Returns ErrNotFound if the event has no rubric.
	Criteria(ctx context.Context, eventID string) ([]model.Criterion, error)
}

// ScoreStore provides read/write access to judge score rows.
type ScoreStore interface {
	// ReplaceScores atomically replaces all prior rows for
	// (submission, judge, round) with the given set.
	ReplaceScores(ctx context.Context, submissionID, judgeID string, round int, scores []model.Score) error

	// ScoresForSubmission returns all score rows for a submission in a round.
	ScoresForSubmission(ctx context.Context, submissionID string, round int) ([]model.Score, error)
}

// RosterStore answers membership questions for events.
type RosterStore interface {
	// Submission returns a submission by id.
	// Returns ErrNotFound if unknown.
	Submission(ctx context.Context, submissionID string) (model.Submission, error)

	// SubmissionsForEvent returns every submission belonging to an event.
	SubmissionsForEvent(ctx context.Context, eventID string) ([]model.Submission, error)

	// JudgesForEvent returns the ids of all judges assigned to an event.
	JudgesForEvent(ctx context.Context, eventID string) ([]string, error)

	// IsJudgeAssigned reports whether judgeID is assigned to the event.
	IsJudgeAssigned(ctx context.Context, eventID, judgeID string) (bool, error)

	// IsOrganizer reports whether userID organizes the event.
	IsOrganizer(ctx context.Context, eventID, userID string) (bool, error)

	// Events returns the ids of all known events.
	Events(ctx context.Context) ([]string, error)
}

// ReviewStore provides upsert-by-(event,user) review persistence.
type ReviewStore interface {
	// UpsertReview creates the review or updates the existing row for
	// (review.EventID, review.UserID), returning the stored row.
	UpsertReview(ctx context.Context, review model.Review) (model.Review, error)

	// ReviewsForEvent returns every review for an event.
	ReviewsForEvent(ctx context.Context, eventID string) ([]model.Review, error)

	// DeleteReview removes a review by id (organizer moderation).
	// Returns ErrNotFound if unknown.
	DeleteReview(ctx context.Context, reviewID string) error
}

// FlagStore persists derived review flags.
type FlagStore interface {
	// ReplaceFlags drops all existing flags for the event's reviews and
	// stores the given set. Flag state is a pure function of the most
	// recent analysis run.
	ReplaceFlags(ctx context.Context, eventID string, flags []model.ReviewFlag) error

	// FlaggedReviews returns every flag for the event joined with its
	// review, most recent flag first.
	FlaggedReviews(ctx context.Context, eventID string) ([]model.FlaggedReview, error)
}

// Store is the full persistence surface the application wires against.
type Store interface {
	RubricStore
	ScoreStore
	RosterStore
	ReviewStore
	FlagStore

	// CountSubmissions and CountReviews feed the stats endpoint.
	CountSubmissions(ctx context.Context) int
	CountReviews(ctx context.Context) int
}

// RoundStateStore records one-way round finalizations.
type RoundStateStore interface {
	// RoundState returns the finalization record for (event, round).
	// An unfinalized round yields a zero-valued record, not an error.
	RoundState(ctx context.Context, eventID string, round int) (model.RoundState, error)

	// FinalizeRound records the one-way transition.
	// Returns ErrRoundFinalized if the round is already finalized.
	FinalizeRound(ctx context.Context, eventID string, round int, actorID string) (model.RoundState, error)

	// Close releases the underlying database.
	Close() error
}
