package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

// scoreKey identifies one judge's row set for a submission round.
type scoreKey struct {
	submissionID string
	round        int
}

// reviewKey enforces the one-review-per-(event,user) invariant.
type reviewKey struct {
	eventID string
	userID  string
}

// flagKey enforces the one-flag-per-(review,reason) invariant.
type flagKey struct {
	reviewID string
	reason   model.FlagReason
}

// MemStore is the in-memory Store implementation. All access is guarded
// by a single RWMutex; every method recomputes derived data fresh from
// the stored rows.
type MemStore struct {
	mu sync.RWMutex

	rubrics      map[string][]model.Criterion
	scores       map[scoreKey]map[string][]model.Score // judgeID -> rows
	submissions  map[string]model.Submission
	judges       map[string]map[string]struct{} // eventID -> judge ids
	organizers   map[string]map[string]struct{} // eventID -> organizer ids
	participants map[string]map[string]struct{} // eventID -> participant ids
	reviews      map[reviewKey]model.Review
	reviewsByID  map[string]model.Review
	flags        map[flagKey]model.ReviewFlag

	now func() time.Time
}

// NewMemStore constructs an empty in-memory store with configuration options.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		rubrics:      make(map[string][]model.Criterion),
		scores:       make(map[scoreKey]map[string][]model.Score),
		submissions:  make(map[string]model.Submission),
		judges:       make(map[string]map[string]struct{}),
		organizers:   make(map[string]map[string]struct{}),
		participants: make(map[string]map[string]struct{}),
		reviews:      make(map[reviewKey]model.Review),
		reviewsByID:  make(map[string]model.Review),
		flags:        make(map[flagKey]model.ReviewFlag),
		now:          time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Seeding methods used by event setup.

// PutRubric stores an event's rubric. Criteria are kept in display order.
func (s *MemStore) PutRubric(ctx context.Context, eventID string, criteria []model.Criterion) error {
	cs := make([]model.Criterion, len(criteria))
	copy(cs, criteria)
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].Order < cs[j].Order })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rubrics[eventID] = cs
	return nil
}

// PutSubmission registers a team's submission for an event.
func (s *MemStore) PutSubmission(ctx context.Context, sub model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[sub.ID] = sub
	return nil
}

// AssignJudge assigns a judge to an event.
func (s *MemStore) AssignJudge(ctx context.Context, eventID, judgeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.judges[eventID] == nil {
		s.judges[eventID] = make(map[string]struct{})
	}
	s.judges[eventID][judgeID] = struct{}{}
	return nil
}

// RevokeJudge removes a judge's assignment from an event.
func (s *MemStore) RevokeJudge(ctx context.Context, eventID, judgeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.judges[eventID], judgeID)
	return nil
}

// AddOrganizer marks a user as an organizer of an event.
func (s *MemStore) AddOrganizer(ctx context.Context, eventID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.organizers[eventID] == nil {
		s.organizers[eventID] = make(map[string]struct{})
	}
	s.organizers[eventID][userID] = struct{}{}
	return nil
}

// AddParticipant marks a user as a participant with a submission.
func (s *MemStore) AddParticipant(ctx context.Context, eventID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.participants[eventID] == nil {
		s.participants[eventID] = make(map[string]struct{})
	}
	s.participants[eventID][userID] = struct{}{}
	return nil
}

// RemoveParticipant revokes a user's participant standing.
func (s *MemStore) RemoveParticipant(ctx context.Context, eventID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.participants[eventID], userID)
	return nil
}

// RubricStore.

// Criteria returns the event's rubric in display order.
func (s *MemStore) Criteria(ctx context.Context, eventID string) ([]model.Criterion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cs, ok := s.rubrics[eventID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]model.Criterion, len(cs))
	copy(out, cs)
	return out, nil
}

// ScoreStore.

// ReplaceScores atomically replaces all rows for (submission, judge, round).
func (s *MemStore) ReplaceScores(ctx context.Context, submissionID, judgeID string, round int, scores []model.Score) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	rows := make([]model.Score, len(scores))
	copy(rows, scores)

	s.mu.Lock()
	defer s.mu.Unlock()

	key := scoreKey{submissionID: submissionID, round: round}
	if s.scores[key] == nil {
		s.scores[key] = make(map[string][]model.Score)
	}
	s.scores[key][judgeID] = rows
	return nil
}

// ScoresForSubmission returns all rows for a submission round, grouped
// output ordered by judge id then criterion key for determinism.
func (s *MemStore) ScoresForSubmission(ctx context.Context, submissionID string, round int) ([]model.Score, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	byJudge := s.scores[scoreKey{submissionID: submissionID, round: round}]
	judgeIDs := make([]string, 0, len(byJudge))
	for id := range byJudge {
		judgeIDs = append(judgeIDs, id)
	}
	sort.Strings(judgeIDs)

	var out []model.Score
	for _, id := range judgeIDs {
		rows := make([]model.Score, len(byJudge[id]))
		copy(rows, byJudge[id])
		sort.Slice(rows, func(i, j int) bool { return rows[i].CriterionKey < rows[j].CriterionKey })
		out = append(out, rows...)
	}
	return out, nil
}

// RosterStore.

// Submission returns a submission by id.
func (s *MemStore) Submission(ctx context.Context, submissionID string) (model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.submissions[submissionID]
	if !ok {
		return model.Submission{}, ErrNotFound
	}
	return sub, nil
}

// SubmissionsForEvent returns every submission for an event, ordered by id.
func (s *MemStore) SubmissionsForEvent(ctx context.Context, eventID string) ([]model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Submission
	for _, sub := range s.submissions {
		if sub.EventID == eventID {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// JudgesForEvent returns all judge ids assigned to an event, sorted.
func (s *MemStore) JudgesForEvent(ctx context.Context, eventID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.judges[eventID]))
	for id := range s.judges[eventID] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// IsJudgeAssigned reports whether judgeID is assigned to the event.
func (s *MemStore) IsJudgeAssigned(ctx context.Context, eventID, judgeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.judges[eventID][judgeID]
	return ok, nil
}

// IsOrganizer reports whether userID organizes the event.
func (s *MemStore) IsOrganizer(ctx context.Context, eventID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.organizers[eventID][userID]
	return ok, nil
}

// IsParticipant reports whether userID participates in the event.
func (s *MemStore) IsParticipant(ctx context.Context, eventID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.participants[eventID][userID]
	return ok, nil
}

// Events returns the ids of all events that have a rubric, sorted.
func (s *MemStore) Events(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.rubrics))
	for id := range s.rubrics {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// ReviewStore.

// UpsertReview creates or updates the row for (event, user).
func (s *MemStore) UpsertReview(ctx context.Context, review model.Review) (model.Review, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	key := reviewKey{eventID: review.EventID, userID: review.UserID}
	now := s.now()
	if existing, ok := s.reviews[key]; ok {
		existing.Rating = review.Rating
		existing.Body = review.Body
		existing.Role = review.Role
		existing.UpdatedAt = now
		s.reviews[key] = existing
		s.reviewsByID[existing.ID] = existing
		return existing, nil
	}

	review.ID = uuid.NewString()
	review.CreatedAt = now
	review.UpdatedAt = now
	s.reviews[key] = review
	s.reviewsByID[review.ID] = review
	return review, nil
}

// ReviewsForEvent returns every review for an event, oldest first.
func (s *MemStore) ReviewsForEvent(ctx context.Context, eventID string) ([]model.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Review
	for key, r := range s.reviews {
		if key.eventID == eventID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

// DeleteReview removes a review and its flags (organizer moderation).
func (s *MemStore) DeleteReview(ctx context.Context, reviewID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviewsByID[reviewID]
	if !ok {
		return ErrNotFound
	}
	delete(s.reviewsByID, reviewID)
	delete(s.reviews, reviewKey{eventID: r.EventID, userID: r.UserID})
	for k := range s.flags {
		if k.reviewID == reviewID {
			delete(s.flags, k)
		}
	}
	return nil
}

// FlagStore.

// ReplaceFlags drops all existing flags on the event's reviews and
// stores the given set.
func (s *MemStore) ReplaceFlags(ctx context.Context, eventID string, flags []model.ReviewFlag) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.flags {
		if r, ok := s.reviewsByID[k.reviewID]; ok && r.EventID == eventID {
			delete(s.flags, k)
		}
	}

	now := s.now()
	for _, f := range flags {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		if f.FlaggedAt.IsZero() {
			f.FlaggedAt = now
		}
		s.flags[flagKey{reviewID: f.ReviewID, reason: f.Reason}] = f
	}
	return nil
}

// FlaggedReviews joins flags with their reviews, most recent flag first.
func (s *MemStore) FlaggedReviews(ctx context.Context, eventID string) ([]model.FlaggedReview, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.FlaggedReview
	for _, f := range s.flags {
		r, ok := s.reviewsByID[f.ReviewID]
		if !ok || r.EventID != eventID {
			continue
		}
		out = append(out, model.FlaggedReview{Flag: f, Review: r})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Flag.FlaggedAt.Equal(out[j].Flag.FlaggedAt) {
			return out[i].Flag.FlaggedAt.After(out[j].Flag.FlaggedAt)
		}
		return out[i].Flag.ID < out[j].Flag.ID
	})
	return out, nil
}

// Counters for the stats endpoint.

// CountSubmissions returns the total number of submissions tracked.
func (s *MemStore) CountSubmissions(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.submissions)
}

// CountReviews returns the total number of reviews tracked.
func (s *MemStore) CountReviews(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reviews)
}
