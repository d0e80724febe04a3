package service

import (
	"context"
	"time"

	"github.com/atinyakov/MediaKeeper/internal/models"
	"github.com/atinyakov/MediaKeeper/internal/repository"
)

// MediaRepository defines the persistence operations needed by the MediaService.
type MediaRepository interface {
	ListMedia(ctx context.Context, userID int64) ([]models.MediaEntry, error)
	GetMedia(ctx context.Context, userID, id int64) (models.MediaEntry, error)
	CreateMedia(ctx context.Context, userID int64, e models.MediaEntry) (models.MediaEntry, error)
	UpdateMedia(ctx context.Context, userID int64, e models.MediaEntry) (models.MediaEntry, error)
	DeleteMedia(ctx context.Context, userID, id int64) error
}

// MediaService validates entries and maintains their timestamps.
type MediaService struct {
	repo MediaRepository
	now  func() time.Time
}

// NewMediaService constructs a MediaService with the provided MediaRepository.
func NewMediaService(repo MediaRepository) *MediaService {
	return &MediaService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// List returns every entry of the user.
func (s *MediaService) List(ctx context.Context, userID int64) ([]models.MediaEntry, error) {
	return s.repo.ListMedia(ctx, userID)
}

// Create stores a new entry. Any client-supplied id or timestamp is ignored.
func (s *MediaService) Create(ctx context.Context, userID int64, e models.MediaEntry) (models.MediaEntry, error) {
	if err := e.Validate(); err != nil {
		return models.MediaEntry{}, err
	}
	now := s.now()
	e.ID = nil
	e.CreatedAt = &now
	e.UpdatedAt = &now
	e.RatingDate = nil
	if e.Rating != nil {
		e.RatingDate = &now
	}
	return s.repo.CreateMedia(ctx, userID, e)
}

// Update replaces an existing entry. CreatedAt is preserved and RatingDate
// moves only when the rating changes.
func (s *MediaService) Update(ctx context.Context, userID int64, e models.MediaEntry) (models.MediaEntry, error) {
	if e.ID == nil {
		return models.MediaEntry{}, repository.ErrNotFound
	}
	if err := e.Validate(); err != nil {
		return models.MediaEntry{}, err
	}
	current, err := s.repo.GetMedia(ctx, userID, *e.ID)
	if err != nil {
		return models.MediaEntry{}, err
	}

	now := s.now()
	e.CreatedAt = current.CreatedAt
	e.UpdatedAt = &now
	switch {
	case e.Rating == nil:
		e.RatingDate = nil
	case current.Rating == nil || *current.Rating != *e.Rating:
		e.RatingDate = &now
	default:
		e.RatingDate = current.RatingDate
	}
	return s.repo.UpdateMedia(ctx, userID, e)
}

// Delete removes an entry of the user.
func (s *MediaService) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.DeleteMedia(ctx, userID, id)
}
