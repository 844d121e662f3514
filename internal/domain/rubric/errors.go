package rubric

import "errors"

// Sentinel kinds for rubric validation errors.
var (
	ErrEmptyItems      = errors.New("no score items submitted")
	ErrInvalidCriteria = errors.New("invalid criteria")
	ErrInvalidScore    = errors.New("score out of bounds")
)
