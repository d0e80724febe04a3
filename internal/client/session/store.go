// Package session holds the client's single authoritative record of who is
// logged in, backed by a durable slot so the identity survives restarts.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/atinyakov/MediaKeeper/internal/logger"
	"github.com/atinyakov/MediaKeeper/internal/models"
	"go.uber.org/zap"
)

// storageCorruptionError marks slot contents that cannot be restored.
// It is logged by Restore and never returned to callers.
type storageCorruptionError struct {
	err error
}

func (e *storageCorruptionError) Error() string {
	return fmt.Sprintf("corrupt session data: %v", e.err)
}

func (e *storageCorruptionError) Unwrap() error { return e.err }

// Store is the current session. Reads are lock-free; every update swaps the
// whole identity value so concurrent readers never observe a partial one.
type Store struct {
	slot    Slot
	current atomic.Pointer[models.Identity]
	log     *zap.Logger
}

// NewStore returns an empty session persisted through slot. Call Restore
// once at startup to pick up a previously saved identity.
func NewStore(slot Slot, log *zap.Logger) *Store {
	return &Store{slot: slot, log: logger.OrNop(log)}
}

// Restore loads the saved identity from the slot. An empty slot, an
// unreadable slot or invalid contents all yield (nil, false).
func (s *Store) Restore() (*models.Identity, bool) {
	data, err := s.slot.Read()
	if errors.Is(err, ErrEmptySlot) {
		return nil, false
	}
	if err != nil {
		s.log.Warn("session slot unreadable", zap.Error(err))
		return nil, false
	}

	id, err := decodeIdentity(data)
	if err != nil {
		s.log.Warn("discarding saved session", zap.Error(err))
		if cerr := s.slot.Clear(); cerr != nil {
			s.log.Debug("failed to clear corrupt session slot", zap.Error(cerr))
		}
		return nil, false
	}

	s.current.Store(&id)
	s.log.Debug("session restored", zap.Int64("user_id", id.ID))
	return s.Current(), true
}

func decodeIdentity(data []byte) (models.Identity, error) {
	var id models.Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return models.Identity{}, &storageCorruptionError{err: err}
	}
	if !id.Valid() {
		return models.Identity{}, &storageCorruptionError{err: fmt.Errorf("invalid identity %+v", id)}
	}
	return id, nil
}

// Set replaces the current identity and persists it. The in-memory session
// is updated even if persisting fails; the error is returned to the caller.
func (s *Store) Set(id models.Identity) error {
	if !id.Valid() {
		return fmt.Errorf("refusing to store invalid identity %+v", id)
	}
	s.current.Store(&id)

	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := s.slot.Write(data); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Clear drops the current identity and erases the durable copy.
func (s *Store) Clear() error {
	s.current.Store(nil)
	if err := s.slot.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Current returns a copy of the current identity, or nil.
func (s *Store) Current() *models.Identity {
	p := s.current.Load()
	if p == nil {
		return nil
	}
	id := *p
	return &id
}

// IsAuthenticated reports whether an identity is present.
func (s *Store) IsAuthenticated() bool {
	return s.current.Load() != nil
}

// CurrentUserID returns the logged-in user's id.
func (s *Store) CurrentUserID() (int64, bool) {
	p := s.current.Load()
	if p == nil {
		return 0, false
	}
	return p.ID, true
}
