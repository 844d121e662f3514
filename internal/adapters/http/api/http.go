// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/model"
)

// Read/write shapes reused from the application layer.
type (
	ScoreReceipt    = service.ScoreReceipt
	LeaderboardView = service.LeaderboardView
	AnalysisReport  = service.AnalysisReport
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SubmitScores(ctx context.Context, submissionID, judgeID string, round int, items []model.ScoreItem) (ScoreReceipt, error)
	Leaderboard(ctx context.Context, eventID string, round int) (LeaderboardView, error)
	FinalizeRound(ctx context.Context, eventID string, round int, actorID string) (model.RoundState, error)
	SubmitReview(ctx context.Context, eventID, userID string, rating int, body string) (model.Review, error)
	DeleteReview(ctx context.Context, eventID, reviewID, actorID string) error
	RunFlaggingAnalysis(ctx context.Context, eventID string) (AnalysisReport, error)
	FlaggedReviews(ctx context.Context, eventID string) ([]model.FlaggedReview, error)
	IsHealthy(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	scoresHandler      *ScoresHandler
	leaderboardHandler *LeaderboardHandler
	finalizeHandler    *FinalizeHandler
	reviewsHandler     *ReviewsHandler
	flagsHandler       *FlagsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLeaderboardLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(deps),
		statsHandler:       NewStatsHandler(statsProvider),
		scoresHandler:      NewScoresHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		finalizeHandler:    NewFinalizeHandler(deps),
		reviewsHandler:     NewReviewsHandler(deps),
		flagsHandler:       NewFlagsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/submissions/", MetricsMiddleware(s.scoresHandler.HandlePostScores, "scores"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/rounds/finalize", MetricsMiddleware(s.finalizeHandler.HandleFinalizeRound, "finalize"))
	mux.HandleFunc("/reviews", MetricsMiddleware(s.reviewsHandler.HandlePostReview, "reviews"))
	mux.HandleFunc("/reviews/", MetricsMiddleware(s.reviewsHandler.HandleDeleteReview, "review_delete"))
	mux.HandleFunc("/reviews/flagged", MetricsMiddleware(s.flagsHandler.HandleGetFlagged, "flagged"))
	mux.HandleFunc("/reviews/analyze", MetricsMiddleware(s.flagsHandler.HandleAnalyze, "analyze"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
