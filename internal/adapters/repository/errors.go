package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound       = errors.New("not found")
	ErrRoundFinalized = errors.New("round already finalized")
	ErrClosed         = errors.New("store closed")
)
