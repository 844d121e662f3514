// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/okian/podium/internal/adapters/mq/broadcast"
	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/integrity"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/rank"
	"github.com/okian/podium/internal/domain/rubric"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultStateDBPath = "data/podium-state.db"
	defaultBufferSize  = 256
)

// ScoreReceipt is the result of a successful score submission.
type ScoreReceipt struct {
	SubmissionID string  `json:"submission_id"`
	Round        int     `json:"round"`
	Aggregate    float64 `json:"aggregate_score"`
	Saved        int     `json:"saved"`
}

// LeaderboardView is a computed per-round leaderboard snapshot.
type LeaderboardView struct {
	EventID     string                   `json:"event_id"`
	Round       int                      `json:"round"`
	Entries     []model.LeaderboardEntry `json:"entries"`
	TeamCount   int                      `json:"team_count"`
	Finalized   bool                     `json:"finalized"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// AnalysisReport summarizes one flagging analysis run.
type AnalysisReport struct {
	EventID          string `json:"event_id"`
	ReviewCount      int    `json:"review_count"`
	OutlierFlags     int    `json:"outlier_flags"`
	InvalidUserFlags int    `json:"invalid_user_flags"`
}

// Service implements the API dependencies for the judging system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       repository.Store
	rounds      repository.RoundStateStore
	engine      *rubric.Engine
	analyzer    *integrity.Analyzer
	verifier    integrity.Verifier
	broadcaster broadcast.Broadcaster

	// Configuration
	maxScore      float64
	minReviews    int
	zThreshold    float64
	stateDBPath   string
	broadcastSize int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRoundStateStore sets the round finalization store.
func WithRoundStateStore(rounds repository.RoundStateStore) Option {
	return func(s *Service) {
		if rounds != nil {
			s.rounds = rounds
		}
	}
}

// WithVerifier sets the review verification collaborator.
func WithVerifier(v integrity.Verifier) Option {
	return func(s *Service) {
		if v != nil {
			s.verifier = v
		}
	}
}

// WithBroadcaster sets the leaderboard broadcaster.
func WithBroadcaster(b broadcast.Broadcaster) Option {
	return func(s *Service) {
		if b != nil {
			s.broadcaster = b
		}
	}
}

// WithMaxScore sets the per-criterion score bound.
func WithMaxScore(maxScore float64) Option {
	return func(s *Service) {
		if maxScore > 0 {
			s.maxScore = maxScore
		}
	}
}

// WithMinReviews sets the minimum review count for outlier analysis.
func WithMinReviews(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minReviews = n
		}
	}
}

// WithZThreshold sets the outlier robust z-score threshold.
func WithZThreshold(z float64) Option {
	return func(s *Service) {
		if z > 0 {
			s.zThreshold = z
		}
	}
}

// WithStateDBPath sets the round-state database path.
func WithStateDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.stateDBPath = path
		}
	}
}

// WithBroadcastBufferSize sets the per-subscriber broadcast buffer size.
func WithBroadcastBufferSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.broadcastSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		maxScore:      10,
		minReviews:    3,
		zThreshold:    3.0,
		stateDBPath:   defaultStateDBPath,
		broadcastSize: defaultBufferSize,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components that were not injected.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting judging service...")

	if s.store == nil {
		s.store = repository.NewMemStore()
		s.logger.Info(ctx, "using in-memory store")
	}
	if s.rounds == nil {
		rounds, err := repository.NewBoltRoundStateStore(s.stateDBPath)
		if err != nil {
			return fmt.Errorf("open round state store: %w", err)
		}
		s.rounds = rounds
	}
	if s.broadcaster == nil {
		s.broadcaster = broadcast.NewInMemoryBroadcaster(
			broadcast.WithBufferSize(s.broadcastSize),
		)
	}
	if s.verifier == nil {
		if roster, ok := s.store.(Roster); ok {
			s.verifier = NewRosterVerifier(roster)
		} else {
			return fmt.Errorf("no verifier configured and store does not expose a roster")
		}
	}

	s.engine = rubric.NewEngine(rubric.WithMaxScore(s.maxScore))
	s.analyzer = integrity.NewAnalyzer(
		integrity.WithMinReviews(s.minReviews),
		integrity.WithZThreshold(s.zThreshold),
	)

	s.started = true
	s.logger.Info(ctx, "judging service started",
		logger.Float64("maxScore", s.maxScore),
		logger.Int("minReviews", s.minReviews),
		logger.Float64("zThreshold", s.zThreshold),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping judging service...")

	if s.broadcaster != nil {
		_ = s.broadcaster.Close()
	}
	if s.rounds != nil {
		_ = s.rounds.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "judging service stopped")
}

// SubmitScores validates and stores a judge's score set for a submission.
//
// Checks run in order: submission exists, judge is assigned to the event,
// items match the rubric and bounds, the round is not finalized. Only then
// is the judge's prior row set replaced. Returns the judge's weighted
// aggregate rounded to two decimals.
func (s *Service) SubmitScores(ctx context.Context, submissionID, judgeID string, round int, items []model.ScoreItem) (ScoreReceipt, error) {
	start := time.Now()

	sub, err := s.store.Submission(ctx, submissionID)
	if err != nil {
		metrics.RecordScoreSubmitError()
		return ScoreReceipt{}, fmt.Errorf("lookup submission %s: %w", submissionID, err)
	}

	assigned, err := s.store.IsJudgeAssigned(ctx, sub.EventID, judgeID)
	if err != nil {
		metrics.RecordScoreSubmitError()
		return ScoreReceipt{}, err
	}
	if !assigned {
		metrics.RecordScoreSubmitError()
		metrics.RecordErrorByComponent("scoring", "access_denied")
		return ScoreReceipt{}, fmt.Errorf("judge %s is not assigned to event %s: %w", judgeID, sub.EventID, ErrAccessDenied)
	}

	criteria, err := s.store.Criteria(ctx, sub.EventID)
	if err != nil {
		metrics.RecordScoreSubmitError()
		return ScoreReceipt{}, err
	}
	if err := s.engine.Validate(items, criteria); err != nil {
		metrics.RecordScoreSubmitError()
		metrics.RecordErrorByComponent("scoring", "validation")
		return ScoreReceipt{}, err
	}

	state, err := s.rounds.RoundState(ctx, sub.EventID, round)
	if err != nil {
		metrics.RecordScoreSubmitError()
		return ScoreReceipt{}, err
	}
	if state.Finalized {
		metrics.RecordScoreSubmitError()
		metrics.RecordErrorByComponent("scoring", "round_finalized")
		return ScoreReceipt{}, fmt.Errorf("round %d of event %s: %w", round, sub.EventID, repository.ErrRoundFinalized)
	}

	rows := make([]model.Score, len(items))
	for i, it := range items {
		rows[i] = model.Score{
			SubmissionID: submissionID,
			JudgeID:      judgeID,
			CriterionKey: it.CriterionKey,
			Round:        round,
			Value:        it.Value,
			Comment:      it.Comment,
		}
	}
	if err := s.store.ReplaceScores(ctx, submissionID, judgeID, round, rows); err != nil {
		metrics.RecordScoreSubmitError()
		return ScoreReceipt{}, fmt.Errorf("store scores: %w", err)
	}

	aggregate := rubric.Round2(s.engine.Aggregate(items, criteria))
	metrics.RecordScoreSubmission()
	metrics.RecordAggregateLatency(float64(time.Since(start).Milliseconds()))

	// Best effort; a full subscriber never blocks the submission.
	s.broadcaster.Publish(ctx, broadcast.Event{
		Kind:    broadcast.KindLeaderboardUpdated,
		EventID: sub.EventID,
		Round:   round,
		Payload: broadcast.Payload{
			TeamID:         sub.TeamID,
			TeamName:       sub.TeamName,
			SubmissionID:   submissionID,
			AggregateScore: aggregate,
		},
	})
	metrics.RecordLeaderboardBroadcast()

	s.logger.Debug(ctx, "scores submitted",
		logger.String("submissionID", submissionID),
		logger.String("judgeID", judgeID),
		logger.Int("round", round),
		logger.Float64("aggregate", aggregate),
	)

	return ScoreReceipt{
		SubmissionID: submissionID,
		Round:        round,
		Aggregate:    aggregate,
		Saved:        len(rows),
	}, nil
}

// Leaderboard computes the dense-ranked standings for one round of an event.
//
// Every submission of the event appears, including unscored ones at
// aggregate 0. A team's aggregate is the mean of its per-judge weighted
// aggregates.
func (s *Service) Leaderboard(ctx context.Context, eventID string, round int) (LeaderboardView, error) {
	start := time.Now()

	// The rubric lookup doubles as the event existence check.
	criteria, err := s.store.Criteria(ctx, eventID)
	if err != nil {
		return LeaderboardView{}, err
	}

	subs, err := s.store.SubmissionsForEvent(ctx, eventID)
	if err != nil {
		return LeaderboardView{}, err
	}
	judges, err := s.store.JudgesForEvent(ctx, eventID)
	if err != nil {
		return LeaderboardView{}, err
	}

	rows := make([]rank.Row, 0, len(subs))
	for _, sub := range subs {
		scores, err := s.store.ScoresForSubmission(ctx, sub.ID, round)
		if err != nil {
			return LeaderboardView{}, err
		}

		byJudge := make(map[string][]model.Score)
		for _, sc := range scores {
			byJudge[sc.JudgeID] = append(byJudge[sc.JudgeID], sc)
		}

		var sum float64
		for _, judgeScores := range byJudge {
			sum += s.engine.AggregateScores(judgeScores, criteria)
		}
		aggregate := 0.0
		if len(byJudge) > 0 {
			aggregate = rubric.Round2(sum / float64(len(byJudge)))
		}

		rows = append(rows, rank.Row{
			TeamID:          sub.TeamID,
			TeamName:        sub.TeamName,
			SubmissionID:    sub.ID,
			AggregateScore:  aggregate,
			JudgesCompleted: len(byJudge),
			JudgesTotal:     len(judges),
		})
	}

	state, err := s.rounds.RoundState(ctx, eventID, round)
	if err != nil {
		return LeaderboardView{}, err
	}

	metrics.RecordLeaderboardQuery()
	metrics.RecordLeaderboardQueryLatency(float64(time.Since(start).Milliseconds()))

	return LeaderboardView{
		EventID:     eventID,
		Round:       round,
		Entries:     rank.Assign(rows),
		TeamCount:   len(rows),
		Finalized:   state.Finalized,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// FinalizeRound records the one-way finalization of (event, round).
// Only organizers of the event may finalize.
func (s *Service) FinalizeRound(ctx context.Context, eventID string, round int, actorID string) (model.RoundState, error) {
	ok, err := s.store.IsOrganizer(ctx, eventID, actorID)
	if err != nil {
		return model.RoundState{}, err
	}
	if !ok {
		metrics.RecordErrorByComponent("finalize", "access_denied")
		return model.RoundState{}, fmt.Errorf("user %s does not organize event %s: %w", actorID, eventID, ErrAccessDenied)
	}

	state, err := s.rounds.FinalizeRound(ctx, eventID, round, actorID)
	if err != nil {
		return model.RoundState{}, err
	}

	metrics.RecordRoundFinalized()
	s.broadcaster.Publish(ctx, broadcast.Event{
		Kind:    broadcast.KindRoundFinalized,
		EventID: eventID,
		Round:   round,
	})

	s.logger.Info(ctx, "round finalized",
		logger.String("eventID", eventID),
		logger.Int("round", round),
		logger.String("actorID", actorID),
	)
	return state, nil
}

// SubmitReview upserts a verified actor's review of an event and triggers
// the flagging analysis. Analysis failure is logged, never surfaced to
// the reviewer.
func (s *Service) SubmitReview(ctx context.Context, eventID, userID string, rating int, body string) (model.Review, error) {
	if rating < 1 || rating > 5 {
		return model.Review{}, fmt.Errorf("rating %d: %w", rating, ErrInvalidRating)
	}

	v, err := s.verifier.Verify(ctx, eventID, userID)
	if err != nil {
		return model.Review{}, fmt.Errorf("verify user %s: %w", userID, err)
	}
	if !v.Verified {
		metrics.RecordErrorByComponent("review", "access_denied")
		return model.Review{}, fmt.Errorf("user %s is not a verified actor for event %s: %w", userID, eventID, ErrAccessDenied)
	}

	review, err := s.store.UpsertReview(ctx, model.Review{
		EventID: eventID,
		UserID:  userID,
		Role:    v.Role,
		Rating:  rating,
		Body:    body,
	})
	if err != nil {
		return model.Review{}, fmt.Errorf("store review: %w", err)
	}
	metrics.RecordReviewUpsert()

	if _, err := s.RunFlaggingAnalysis(ctx, eventID); err != nil {
		s.logger.Warn(ctx, "flagging analysis failed after review submit",
			logger.String("eventID", eventID),
			logger.Error(err),
		)
	}

	return review, nil
}

// DeleteReview removes a review on behalf of an organizer and recomputes
// the event's flags. Analysis failure after the delete is logged, never
// surfaced to the caller.
func (s *Service) DeleteReview(ctx context.Context, eventID, reviewID, actorID string) error {
	ok, err := s.store.IsOrganizer(ctx, eventID, actorID)
	if err != nil {
		return err
	}
	if !ok {
		metrics.RecordErrorByComponent("review", "access_denied")
		return fmt.Errorf("user %s does not organize event %s: %w", actorID, eventID, ErrAccessDenied)
	}

	if err := s.store.DeleteReview(ctx, reviewID); err != nil {
		return fmt.Errorf("delete review %s: %w", reviewID, err)
	}

	s.logger.Info(ctx, "review deleted",
		logger.String("eventID", eventID),
		logger.String("reviewID", reviewID),
		logger.String("actorID", actorID),
	)

	if _, err := s.RunFlaggingAnalysis(ctx, eventID); err != nil {
		s.logger.Warn(ctx, "flagging analysis failed after review delete",
			logger.String("eventID", eventID),
			logger.Error(err),
		)
	}
	return nil
}

// RunFlaggingAnalysis recomputes the flag set for an event's reviews.
//
// The outlier check and the invalid-user check are isolated: a verifier
// outage skips invalid-user flags for the run but outlier flags still
// land. The run replaces the event's prior flags wholesale, so flag state
// is always the verdict of the most recent analysis.
func (s *Service) RunFlaggingAnalysis(ctx context.Context, eventID string) (AnalysisReport, error) {
	start := time.Now()

	reviews, err := s.store.ReviewsForEvent(ctx, eventID)
	if err != nil {
		metrics.RecordFlagAnalysisError()
		return AnalysisReport{}, fmt.Errorf("load reviews: %w", err)
	}

	var flags []model.ReviewFlag

	outliers := s.analyzer.DetectOutliers(reviews)
	for _, o := range outliers {
		flags = append(flags, model.ReviewFlag{
			ReviewID: o.Review.ID,
			Reason:   model.FlagOutlierRating,
			Score:    math.Abs(o.Z),
			Metadata: map[string]any{
				"z":      o.Z,
				"median": o.Median,
				"mad":    o.MAD,
				"rating": o.Review.Rating,
			},
		})
	}

	invalidCount := 0
	invalid, err := s.analyzer.DetectInvalidUsers(ctx, eventID, reviews, s.verifier)
	if err != nil {
		metrics.RecordFlagAnalysisError()
		metrics.RecordErrorByComponent("integrity", "verifier")
		s.logger.Warn(ctx, "invalid-user check skipped",
			logger.String("eventID", eventID),
			logger.Error(err),
		)
	} else {
		invalidCount = len(invalid)
		for _, iu := range invalid {
			flags = append(flags, model.ReviewFlag{
				ReviewID: iu.Review.ID,
				Reason:   model.FlagInvalidUser,
				Metadata: map[string]any{
					"role": string(iu.Role),
				},
			})
		}
	}

	if err := s.store.ReplaceFlags(ctx, eventID, flags); err != nil {
		metrics.RecordFlagAnalysisError()
		return AnalysisReport{}, fmt.Errorf("store flags: %w", err)
	}

	for _, f := range flags {
		metrics.RecordReviewFlag(string(f.Reason))
	}
	metrics.RecordFlagAnalysisRun()
	metrics.RecordFlagAnalysisLatency(float64(time.Since(start).Milliseconds()))

	return AnalysisReport{
		EventID:          eventID,
		ReviewCount:      len(reviews),
		OutlierFlags:     len(outliers),
		InvalidUserFlags: invalidCount,
	}, nil
}

// FlaggedReviews returns an event's flags joined with review detail,
// most recent flag first.
func (s *Service) FlaggedReviews(ctx context.Context, eventID string) ([]model.FlaggedReview, error) {
	return s.store.FlaggedReviews(ctx, eventID)
}

// Events returns the ids of all known events.
func (s *Service) Events(ctx context.Context) ([]string, error) {
	return s.store.Events(ctx)
}

// Subscribe registers a leaderboard event subscriber.
func (s *Service) Subscribe(ctx context.Context, eventID string) (<-chan broadcast.Event, func()) {
	return s.broadcaster.Subscribe(ctx, eventID)
}

// IsHealthy reports whether the service is started and its round-state
// store is reachable.
func (s *Service) IsHealthy(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}
	if _, err := s.rounds.RoundState(ctx, "healthcheck", 0); err != nil {
		return errors.Join(repository.ErrClosed, err)
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":    s.started,
		"maxScore":   s.maxScore,
		"minReviews": s.minReviews,
		"zThreshold": s.zThreshold,
	}

	if s.started {
		submissions := s.store.CountSubmissions(ctx)
		reviews := s.store.CountReviews(ctx)
		subscribers := s.broadcaster.Subscribers(ctx)

		stats["totalSubmissions"] = submissions
		stats["totalReviews"] = reviews
		stats["subscribers"] = subscribers

		metrics.UpdateTotalSubmissions(submissions)
		metrics.UpdateTotalReviews(reviews)
	}

	return stats
}
