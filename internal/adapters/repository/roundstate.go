package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/okian/podium/internal/domain/model"
)

// roundStateBucket is the bbolt bucket holding finalization records.
const roundStateBucket = "round_state"

// BoltRoundStateStore persists round finalizations in a bbolt file so a
// finalized round survives process restarts.
type BoltRoundStateStore struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewBoltRoundStateStore opens (or creates) the bbolt database at dbPath.
func NewBoltRoundStateStore(dbPath string) (*BoltRoundStateStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	db, err := bbolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open state db at %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(roundStateBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltRoundStateStore{db: db, now: time.Now}, nil
}

func roundStateKey(eventID string, round int) []byte {
	return []byte(fmt.Sprintf("%s/%d", eventID, round))
}

// RoundState returns the record for (event, round). An unfinalized round
// yields a zero-valued record.
func (s *BoltRoundStateStore) RoundState(ctx context.Context, eventID string, round int) (model.RoundState, error) {
	state := model.RoundState{EventID: eventID, Round: round}

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(roundStateBucket))
		if bucket == nil {
			return nil
		}
		data := bucket.Get(roundStateKey(eventID, round))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &state)
	})
	if err != nil {
		return model.RoundState{}, fmt.Errorf("failed to read round state: %w", err)
	}
	return state, nil
}

// FinalizeRound records the one-way transition for (event, round).
// Returns ErrRoundFinalized if the round is already finalized; the check
// and the write happen in one bbolt transaction.
func (s *BoltRoundStateStore) FinalizeRound(ctx context.Context, eventID string, round int, actorID string) (model.RoundState, error) {
	state := model.RoundState{
		EventID:     eventID,
		Round:       round,
		Finalized:   true,
		FinalizedAt: s.now(),
		FinalizedBy: actorID,
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(roundStateBucket))
		if bucket == nil {
			return fmt.Errorf("bucket %s does not exist", roundStateBucket)
		}

		key := roundStateKey(eventID, round)
		if data := bucket.Get(key); data != nil {
			var existing model.RoundState
			if err := json.Unmarshal(data, &existing); err == nil && existing.Finalized {
				return ErrRoundFinalized
			}
		}

		data, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("failed to marshal round state: %w", err)
		}
		return bucket.Put(key, data)
	})
	if err != nil {
		return model.RoundState{}, err
	}
	return state, nil
}

// Close closes the bbolt database.
func (s *BoltRoundStateStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
