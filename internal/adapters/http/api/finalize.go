// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/podium/internal/domain/model"
)

// FinalizeDependencies defines the interface for round finalization.
type FinalizeDependencies interface {
	FinalizeRound(ctx context.Context, eventID string, round int, actorID string) (model.RoundState, error)
}

// FinalizeHandler handles round finalization requests.
type FinalizeHandler struct {
	deps FinalizeDependencies
}

// NewFinalizeHandler creates a new finalize handler.
func NewFinalizeHandler(deps FinalizeDependencies) *FinalizeHandler {
	return &FinalizeHandler{deps: deps}
}

// finalizeRequest mirrors the body of POST /rounds/finalize.
type finalizeRequest struct {
	EventID string `json:"event_id"`
	Round   int    `json:"round"`
	ActorID string `json:"actor_id"`
}

func (f finalizeRequest) validate() error {
	switch {
	case strings.TrimSpace(f.EventID) == "":
		return errors.New("missing event_id")
	case f.Round < 1:
		return errors.New("round must be at least 1")
	case strings.TrimSpace(f.ActorID) == "":
		return errors.New("missing actor_id")
	}
	return nil
}

// HandleFinalizeRound handles POST /rounds/finalize requests.
func (h *FinalizeHandler) HandleFinalizeRound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid body", ErrBadRequest))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %s", ErrBadRequest, err))
		return
	}

	state, err := h.deps.FinalizeRound(r.Context(), req.EventID, req.Round, req.ActorID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
