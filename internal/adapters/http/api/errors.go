package api

import (
	"errors"
	"net/http"

	"github.com/okian/podium/internal/adapters/repository"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/rubric"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// statusFor maps service and domain sentinels to HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusForbidden, "access_denied"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrRoundFinalized):
		return http.StatusConflict, "round_finalized"
	case errors.Is(err, rubric.ErrEmptyItems),
		errors.Is(err, rubric.ErrInvalidCriteria),
		errors.Is(err, rubric.ErrInvalidScore),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeServiceError translates err via statusFor and writes the response.
func writeServiceError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}
