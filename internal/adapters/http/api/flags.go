// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

// FlagDependencies defines the interface for flag queries and analysis runs.
type FlagDependencies interface {
	RunFlaggingAnalysis(ctx context.Context, eventID string) (AnalysisReport, error)
	FlaggedReviews(ctx context.Context, eventID string) ([]model.FlaggedReview, error)
}

// FlagsHandler handles flagged-review queries and manual analysis runs.
type FlagsHandler struct {
	deps FlagDependencies
}

// NewFlagsHandler creates a new flags handler.
func NewFlagsHandler(deps FlagDependencies) *FlagsHandler {
	return &FlagsHandler{deps: deps}
}

// flaggedReviewResponse is the wire shape of a flag joined with its review.
type flaggedReviewResponse struct {
	FlagID    string         `json:"flag_id"`
	Reason    string         `json:"reason"`
	Score     float64        `json:"score,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	FlaggedAt time.Time      `json:"flagged_at"`
	Review    reviewResponse `json:"review"`
}

// analyzeRequest mirrors the body of POST /reviews/analyze.
type analyzeRequest struct {
	EventID string `json:"event_id"`
}

// HandleGetFlagged handles GET /reviews/flagged?event=E requests.
func (h *FlagsHandler) HandleGetFlagged(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	eventID := r.URL.Query().Get("event")
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing event", ErrBadRequest))
		return
	}

	flagged, err := h.deps.FlaggedReviews(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]flaggedReviewResponse, len(flagged))
	for i, f := range flagged {
		out[i] = flaggedReviewResponse{
			FlagID:    f.Flag.ID,
			Reason:    string(f.Flag.Reason),
			Score:     f.Flag.Score,
			Metadata:  f.Flag.Metadata,
			FlaggedAt: f.Flag.FlaggedAt,
			Review:    toReviewResponse(f.Review),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleAnalyze handles POST /reviews/analyze requests.
func (h *FlagsHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid body", ErrBadRequest))
		return
	}
	if strings.TrimSpace(req.EventID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %s", ErrBadRequest, errors.New("missing event_id")))
		return
	}

	report, err := h.deps.RunFlaggingAnalysis(r.Context(), req.EventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
