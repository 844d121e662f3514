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

// ReviewDependencies defines the interface for review submission and
// organizer moderation.
type ReviewDependencies interface {
	SubmitReview(ctx context.Context, eventID, userID string, rating int, body string) (model.Review, error)
	DeleteReview(ctx context.Context, eventID, reviewID, actorID string) error
}

// ReviewsHandler handles event review submissions.
type ReviewsHandler struct {
	deps ReviewDependencies
}

// NewReviewsHandler creates a new reviews handler.
func NewReviewsHandler(deps ReviewDependencies) *ReviewsHandler {
	return &ReviewsHandler{deps: deps}
}

// reviewRequest mirrors the body of POST /reviews.
type reviewRequest struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
	Rating  int    `json:"rating"`
	Body    string `json:"body,omitempty"`
}

func (rr reviewRequest) validate() error {
	switch {
	case strings.TrimSpace(rr.EventID) == "":
		return errors.New("missing event_id")
	case strings.TrimSpace(rr.UserID) == "":
		return errors.New("missing user_id")
	}
	return nil
}

// reviewResponse is the wire shape of a stored review.
type reviewResponse struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Rating    int       `json:"rating"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toReviewResponse(r model.Review) reviewResponse {
	return reviewResponse{
		ID:        r.ID,
		EventID:   r.EventID,
		UserID:    r.UserID,
		Role:      string(r.Role),
		Rating:    r.Rating,
		Body:      r.Body,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// HandlePostReview handles POST /reviews requests.
func (h *ReviewsHandler) HandlePostReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid body", ErrBadRequest))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %s", ErrBadRequest, err))
		return
	}

	review, err := h.deps.SubmitReview(r.Context(), req.EventID, req.UserID, req.Rating, req.Body)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewResponse(review))
}

// HandleDeleteReview handles DELETE /reviews/{id} requests. The acting
// organizer and the event are named in query parameters.
func (h *ReviewsHandler) HandleDeleteReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}

	reviewID := strings.TrimPrefix(r.URL.Path, "/reviews/")
	if reviewID == "" || strings.Contains(reviewID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing review id", ErrBadRequest))
		return
	}

	eventID := r.URL.Query().Get("event")
	actorID := r.URL.Query().Get("actor")
	switch {
	case strings.TrimSpace(eventID) == "":
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing event", ErrBadRequest))
		return
	case strings.TrimSpace(actorID) == "":
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing actor", ErrBadRequest))
		return
	}

	if err := h.deps.DeleteReview(r.Context(), eventID, reviewID, actorID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
