package repository

import (
	"context"
	"sync"

	"github.com/atinyakov/MediaKeeper/internal/models"
)

// MemoryRepository keeps accounts and media in process memory. It serves
// both the auth and the media interfaces and is used when no DSN is set.
type MemoryRepository struct {
	mu         sync.RWMutex
	users      map[string]models.User
	media      map[int64][]models.MediaEntry
	lastUserID int64
	lastID     int64
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[string]models.User),
		media: make(map[int64][]models.MediaEntry),
	}
}

func (m *MemoryRepository) CreateUser(_ context.Context, username string, hash []byte) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[username]; ok {
		return models.User{}, ErrUserExists
	}
	m.lastUserID++
	u := models.User{ID: m.lastUserID, Username: username, PasswordHash: append([]byte(nil), hash...)}
	m.users[username] = u
	return u, nil
}

func (m *MemoryRepository) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[username]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (m *MemoryRepository) UserExists(_ context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepository) ListMedia(_ context.Context, userID int64) ([]models.MediaEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]models.MediaEntry, 0, len(m.media[userID]))
	for _, e := range m.media[userID] {
		entries = append(entries, e.Clone())
	}
	return entries, nil
}

func (m *MemoryRepository) GetMedia(_ context.Context, userID, id int64) (models.MediaEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := indexOf(m.media[userID], id); i >= 0 {
		return m.media[userID][i].Clone(), nil
	}
	return models.MediaEntry{}, ErrNotFound
}

func (m *MemoryRepository) CreateMedia(_ context.Context, userID int64, e models.MediaEntry) (models.MediaEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastID++
	e = e.Clone()
	e.ID = models.Ptr(m.lastID)
	m.media[userID] = append(m.media[userID], e)
	return e.Clone(), nil
}

func (m *MemoryRepository) UpdateMedia(_ context.Context, userID int64, e models.MediaEntry) (models.MediaEntry, error) {
	if e.ID == nil {
		return models.MediaEntry{}, ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := indexOf(m.media[userID], *e.ID)
	if i < 0 {
		return models.MediaEntry{}, ErrNotFound
	}
	m.media[userID][i] = e.Clone()
	return e, nil
}

// DeleteMedia removes the entry immediately; there is nothing to purge later.
func (m *MemoryRepository) DeleteMedia(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.media[userID]
	i := indexOf(entries, id)
	if i < 0 {
		return ErrNotFound
	}
	m.media[userID] = append(entries[:i:i], entries[i+1:]...)
	return nil
}

func indexOf(entries []models.MediaEntry, id int64) int {
	for i, e := range entries {
		if e.HasID(id) {
			return i
		}
	}
	return -1
}
