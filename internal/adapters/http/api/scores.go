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

// ScoreDependencies defines the interface for score submission.
type ScoreDependencies interface {
	SubmitScores(ctx context.Context, submissionID, judgeID string, round int, items []model.ScoreItem) (ScoreReceipt, error)
}

// ScoresHandler handles judge score submissions.
type ScoresHandler struct {
	deps ScoreDependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps ScoreDependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// scoreItemRequest mirrors one per-criterion rating in the request body.
type scoreItemRequest struct {
	CriterionKey string  `json:"criterion_key"`
	Value        float64 `json:"value"`
	Comment      string  `json:"comment,omitempty"`
}

// scoreRequest mirrors the body of POST /submissions/{id}/scores.
type scoreRequest struct {
	JudgeID string             `json:"judge_id"`
	Round   int                `json:"round"`
	Items   []scoreItemRequest `json:"items"`
}

func (s scoreRequest) validate() error {
	switch {
	case strings.TrimSpace(s.JudgeID) == "":
		return errors.New("missing judge_id")
	case s.Round < 1:
		return errors.New("round must be at least 1")
	case len(s.Items) == 0:
		return errors.New("missing items")
	}
	return nil
}

// submissionIDFromPath extracts {id} from /submissions/{id}/scores.
func submissionIDFromPath(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, "/submissions/")
	if !ok {
		return "", errors.New("invalid path")
	}
	id, ok := strings.CutSuffix(rest, "/scores")
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", errors.New("expected /submissions/{id}/scores")
	}
	return id, nil
}

// HandlePostScores handles POST /submissions/{id}/scores requests.
func (h *ScoresHandler) HandlePostScores(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	submissionID, err := submissionIDFromPath(r.URL.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %s", ErrBadRequest, err))
		return
	}

	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid body", ErrBadRequest))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %s", ErrBadRequest, err))
		return
	}

	items := make([]model.ScoreItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = model.ScoreItem{
			CriterionKey: it.CriterionKey,
			Value:        it.Value,
			Comment:      it.Comment,
		}
	}

	receipt, err := h.deps.SubmitScores(r.Context(), submissionID, req.JudgeID, req.Round, items)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}
