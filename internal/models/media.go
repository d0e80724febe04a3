package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MediaType is the closed set of trackable media kinds.
type MediaType string

const (
	// Movie is a single feature film.
	Movie MediaType = "MOVIE"
	// Series is an episodic show.
	Series MediaType = "SERIES"
)

// Rating bounds.
const (
	MinRating = 0.0
	MaxRating = 10.0
)

// Valid reports whether t is one of the known media types.
func (t MediaType) Valid() bool {
	return t == Movie || t == Series
}

// ParseMediaType accepts "MOVIE" and "SERIES" in any letter case.
func ParseMediaType(s string) (MediaType, error) {
	t := MediaType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown media type %q", s)}
	}
	return t, nil
}

// UnmarshalJSON rejects values outside the enumeration.
func (t *MediaType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if !MediaType(s).Valid() {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown media type %q", s)}
	}
	*t = MediaType(s)
	return nil
}

// MediaEntry is one tracked movie or series.
type MediaEntry struct {
	// ID is nil until the entry has been persisted remotely.
	ID *int64 `json:"id"`
	// Title is the display title; never empty.
	Title string `json:"title"`
	// Genre is free text.
	Genre string `json:"genre"`
	// Type discriminates movies from series.
	Type MediaType `json:"type"`
	// Watched marks the entry as seen.
	Watched bool `json:"watched"`
	// Rating is only meaningful once watched.
	Rating *float64 `json:"rating"`
	// Comment is an optional user note.
	Comment *string `json:"comment"`

	CreatedAt  *time.Time `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt"`
	RatingDate *time.Time `json:"ratingDate"`

	// ExternalRef is the movie database id (TMDB).
	ExternalRef *int64 `json:"tmdbId,omitempty"`
	// TrailerRef points at a trailer video.
	TrailerRef *string `json:"trailerUrl,omitempty"`
}

// Validate checks the entry invariants before it is accepted into a catalog.
func (e MediaEntry) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if !e.Type.Valid() {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown media type %q", e.Type)}
	}
	if e.Rating != nil {
		if !e.Watched {
			return &ValidationError{Field: "rating", Reason: "must be absent while not watched"}
		}
		if *e.Rating < MinRating || *e.Rating > MaxRating {
			return &ValidationError{Field: "rating", Reason: fmt.Sprintf("must be between %g and %g", MinRating, MaxRating)}
		}
	}
	return nil
}

// HasID reports whether the entry was persisted and carries id.
func (e MediaEntry) HasID(id int64) bool {
	return e.ID != nil && *e.ID == id
}

// Clone returns a deep copy so callers cannot alias catalog state.
func (e MediaEntry) Clone() MediaEntry {
	c := e
	c.ID = clonePtr(e.ID)
	c.Rating = clonePtr(e.Rating)
	c.Comment = clonePtr(e.Comment)
	c.CreatedAt = clonePtr(e.CreatedAt)
	c.UpdatedAt = clonePtr(e.UpdatedAt)
	c.RatingDate = clonePtr(e.RatingDate)
	c.ExternalRef = clonePtr(e.ExternalRef)
	c.TrailerRef = clonePtr(e.TrailerRef)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v. Handy for optional fields.
func Ptr[T any](v T) *T {
	return &v
}

// ValidationError reports an entry that violates a data-model invariant.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
