package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaEntry_Validate(t *testing.T) {
	tests := []struct {
		name      string
		entry     MediaEntry
		wantField string
	}{
		{
			name:  "unwatched without rating",
			entry: MediaEntry{Title: "Dune", Type: Movie},
		},
		{
			name:  "watched with rating",
			entry: MediaEntry{Title: "Dark", Type: Series, Watched: true, Rating: Ptr(7.0)},
		},
		{
			name:      "rating while not watched",
			entry:     MediaEntry{Title: "Dune", Type: Movie, Rating: Ptr(7.0)},
			wantField: "rating",
		},
		{
			name:      "rating out of range",
			entry:     MediaEntry{Title: "Dune", Type: Movie, Watched: true, Rating: Ptr(11.0)},
			wantField: "rating",
		},
		{
			name:      "blank title",
			entry:     MediaEntry{Title: "   ", Type: Movie},
			wantField: "title",
		},
		{
			name:      "unknown type",
			entry:     MediaEntry{Title: "Dune", Type: "BOOK"},
			wantField: "type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestMediaEntry_JSONWireShape(t *testing.T) {
	raw := `{"id":2,"title":"Dark","genre":"Mystery","type":"SERIES","watched":true,"rating":9,
		"comment":null,"createdAt":"2024-01-02T03:04:05Z","updatedAt":null,"ratingDate":null,
		"tmdbId":70523,"trailerUrl":"https://example.com/t"}`

	var e MediaEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	require.NotNil(t, e.ID)
	assert.Equal(t, int64(2), *e.ID)
	assert.Equal(t, Series, e.Type)
	require.NotNil(t, e.Rating)
	assert.Equal(t, 9.0, *e.Rating)
	assert.Nil(t, e.Comment)
	require.NotNil(t, e.CreatedAt)
	require.NotNil(t, e.ExternalRef)
	assert.Equal(t, int64(70523), *e.ExternalRef)
	require.NotNil(t, e.TrailerRef)
}

func TestMediaType_UnmarshalRejectsUnknown(t *testing.T) {
	var e MediaEntry
	err := json.Unmarshal([]byte(`{"title":"x","type":"PODCAST"}`), &e)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
}

func TestParseMediaType(t *testing.T) {
	got, err := ParseMediaType("movie")
	require.NoError(t, err)
	assert.Equal(t, Movie, got)

	_, err = ParseMediaType("book")
	assert.Error(t, err)
}

func TestMediaEntry_CloneDoesNotAlias(t *testing.T) {
	orig := MediaEntry{ID: Ptr(int64(1)), Title: "Dune", Type: Movie, Watched: true, Rating: Ptr(8.0)}
	c := orig.Clone()
	*c.Rating = 2
	*c.ID = 99

	assert.Equal(t, 8.0, *orig.Rating)
	assert.Equal(t, int64(1), *orig.ID)
}

func TestIdentity_Valid(t *testing.T) {
	assert.True(t, Identity{ID: 1, Username: "alice"}.Valid())
	assert.False(t, Identity{ID: 0, Username: "alice"}.Valid())
	assert.False(t, Identity{ID: 1}.Valid())
}
