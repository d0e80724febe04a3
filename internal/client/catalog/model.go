// Package catalog holds the working set of media entries for the active
// session and serves filtered, read-only views of it.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/atinyakov/MediaKeeper/internal/logger"
	"github.com/atinyakov/MediaKeeper/internal/models"
	"go.uber.org/zap"
)

// Fetcher retrieves a user's entries from the remote catalog.
type Fetcher interface {
	Fetch(ctx context.Context, userID int64) ([]models.MediaEntry, error)
}

// Model is the client-side catalog. Views never alias internal state.
type Model struct {
	fetcher Fetcher
	log     *zap.Logger

	mu      sync.Mutex
	entries []models.MediaEntry
	userID  int64
	// gen increases with every Load and Reset; a load only applies its
	// result if gen is unchanged when it completes.
	gen    uint64
	cancel context.CancelFunc
}

// NewModel returns an empty catalog fed by fetcher.
func NewModel(fetcher Fetcher, log *zap.Logger) *Model {
	return &Model{fetcher: fetcher, log: logger.OrNop(log)}
}

// Load replaces the catalog with the entries fetched for userID. It is
// all-or-nothing: on error the previous catalog is kept. Starting a new
// Load cancels the one in flight, whose result is then discarded with
// ErrSuperseded.
func (m *Model) Load(ctx context.Context, userID int64) ([]models.MediaEntry, error) {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	m.gen++
	gen := m.gen
	loadCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()
	defer cancel()

	log := m.log.With(zap.Int64("user_id", userID), zap.Uint64("load", gen))
	log.Debug("loading catalog")

	fetched, err := m.fetcher.Fetch(loadCtx, userID)
	if err == nil {
		err = validateAll(fetched)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		log.Debug("discarding superseded catalog load")
		return nil, ErrSuperseded
	}
	m.cancel = nil

	if err != nil {
		log.Warn("catalog load failed", zap.Error(err))
		return nil, &FetchError{UserID: userID, Err: err}
	}

	m.entries = cloneAll(fetched)
	m.userID = userID
	log.Debug("catalog loaded", zap.Int("entries", len(m.entries)))
	return cloneAll(m.entries), nil
}

func validateAll(entries []models.MediaEntry) error {
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

// All returns a snapshot of the catalog in insertion order.
func (m *Model) All() []models.MediaEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAll(m.entries)
}

// FilteredBy returns the entries matching f in catalog order. The catalog
// itself is never modified.
func (m *Model) FilteredBy(f models.Filter) []models.MediaEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.MediaEntry, 0, len(m.entries))
	for _, e := range m.entries {
		if f.Matches(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// Get returns the entry with the given id.
func (m *Model) Get(id int64) (models.MediaEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.indexOf(id); i >= 0 {
		return m.entries[i].Clone(), true
	}
	return models.MediaEntry{}, false
}

// Upsert validates entry and inserts it, or replaces the entry with the same
// id in place. Entries without an id are always appended.
func (m *Model) Upsert(entry models.MediaEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	entry = entry.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID != nil {
		if i := m.indexOf(*entry.ID); i >= 0 {
			m.entries[i] = entry
			return nil
		}
	}
	m.entries = append(m.entries, entry)
	return nil
}

// Remove deletes the entry with the given id. Unknown ids are ignored.
func (m *Model) Remove(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.indexOf(id); i >= 0 {
		m.entries = append(m.entries[:i:i], m.entries[i+1:]...)
	}
}

// Reset empties the catalog and abandons any load in flight.
func (m *Model) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.gen++
	m.entries = nil
	m.userID = 0
}

// UserID returns the user the catalog was last loaded for.
func (m *Model) UserID() (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userID, m.userID != 0
}

// Len returns the number of entries.
func (m *Model) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Counts returns the number of entries per media type.
func (m *Model) Counts() map[models.MediaType]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := map[models.MediaType]int{models.Movie: 0, models.Series: 0}
	for _, e := range m.entries {
		counts[e.Type]++
	}
	return counts
}

func (m *Model) indexOf(id int64) int {
	for i, e := range m.entries {
		if e.HasID(id) {
			return i
		}
	}
	return -1
}

func cloneAll(entries []models.MediaEntry) []models.MediaEntry {
	out := make([]models.MediaEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}
